package storage

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
)

// Store wraps the SQLite database holding servers, plans, profiles,
// purchases and payments.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewStore opens the database and migrates the schema
func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Server{},
		&models.Plan{},
		&models.Profile{},
		&models.ProfileInbound{},
		&models.Purchase{},
		&models.Payment{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// DB exposes the underlying handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// IsNotFound reports whether err is a gorm record-not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
