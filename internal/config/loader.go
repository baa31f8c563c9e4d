package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/aliafrazeh/alamor-vpn-bot/internal/errors"
)

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	// Set default values
	v.SetDefault("log_level", "info")

	// Define environment variables
	v.BindEnv("TG_TOKEN")
	v.BindEnv("TG_ADMIN_IDS")
	v.BindEnv("DB_PATH")
	v.BindEnv("SUB_LISTEN")
	v.BindEnv("SUB_PUBLIC_BASE")
	v.BindEnv("SUB_SYNC_SPEC")

	cfg := &Config{
		LogLevel: v.GetString("log_level"),
		Telegram: TelegramConfig{
			Token: v.GetString("TG_TOKEN"),
		},
	}

	// Parse admin IDs
	adminIDsStr := v.GetString("TG_ADMIN_IDS")
	if adminIDsStr != "" {
		adminIDsSlice := strings.Split(adminIDsStr, ",")
		adminIDs := make([]int64, 0, len(adminIDsSlice))
		for _, idStr := range adminIDsSlice {
			var id int64
			if _, err := fmt.Sscanf(strings.TrimSpace(idStr), "%d", &id); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
		cfg.Telegram.AdminIDs = adminIDs
	}

	dbPath := v.GetString("DB_PATH")
	if dbPath == "" {
		dbPath = "alamor.db"
	}
	cfg.Database = DatabaseConfig{Path: dbPath}

	listen := v.GetString("SUB_LISTEN")
	if listen == "" {
		listen = ":2096"
	}
	syncSpec := v.GetString("SUB_SYNC_SPEC")
	if syncSpec == "" {
		syncSpec = "@every 30m"
	}
	cfg.Sub = SubConfig{
		Listen:     strings.TrimSpace(listen),
		PublicBase: strings.TrimRight(strings.TrimSpace(v.GetString("SUB_PUBLIC_BASE")), "/"),
		SyncSpec:   strings.TrimSpace(syncSpec),
	}

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return &apperrors.ConfigError{Section: "telegram", Message: "TG_TOKEN is required"}
	}

	if len(cfg.Telegram.AdminIDs) == 0 {
		return &apperrors.ConfigError{Section: "telegram", Message: "TG_ADMIN_IDS is required"}
	}

	if cfg.Database.Path == "" {
		return &apperrors.ConfigError{Section: "database", Message: "path is required"}
	}

	return nil
}
