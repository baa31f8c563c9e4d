package storage

import (
	"time"

	"gorm.io/gorm"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
)

// GetOrCreateUser loads a user record, creating it on first contact
func (s *Store) GetOrCreateUser(telegramID int64, username string) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, telegramID).Error
	if err == nil {
		if username != "" && user.Username != username {
			user.Username = username
			if err := s.db.Save(&user).Error; err != nil {
				return nil, err
			}
		}
		return &user, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	user = models.User{ID: telegramID, Username: username, CreatedAt: time.Now()}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AdjustBalance adds delta (which may be negative) to a user's wallet
func (s *Store) AdjustBalance(telegramID int64, delta int64) error {
	return s.db.Model(&models.User{}).Where("id = ?", telegramID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error
}

// CreatePayment records a submitted receipt awaiting review
func (s *Store) CreatePayment(payment *models.Payment) error {
	return s.db.Create(payment).Error
}

// ListPendingPayments returns receipts awaiting admin review, oldest first
func (s *Store) ListPendingPayments() ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.Where("status = ?", models.PaymentPending).Order("id").Find(&payments).Error
	return payments, err
}

// GetPayment returns one payment by id, or nil when absent
func (s *Store) GetPayment(id uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.First(&payment, id).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// SetPaymentStatus finalizes a receipt review
func (s *Store) SetPaymentStatus(id uint, status string) error {
	now := time.Now()
	return s.db.Model(&models.Payment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "reviewed_at": &now}).Error
}
