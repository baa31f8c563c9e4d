package storage

import (
	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
)

// CreatePurchase persists a newly provisioned purchase
func (s *Store) CreatePurchase(purchase *models.Purchase) error {
	return s.db.Create(purchase).Error
}

// GetPurchaseBySubID looks up a purchase by its opaque subscription
// identifier; only active purchases resolve. Returns nil when absent.
func (s *Store) GetPurchaseBySubID(subID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.Where("sub_id = ? AND active = ?", subID, true).First(&purchase).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

// ListUserPurchases returns a user's purchases, newest first
func (s *Store) ListUserPurchases(userID int64) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.Where("user_id = ?", userID).Order("id DESC").Find(&purchases).Error
	return purchases, err
}

// GetPurchase returns one purchase by id, or nil when absent
func (s *Store) GetPurchase(id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.First(&purchase, id).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

// DeactivatePurchase marks a purchase inactive; its feed then resolves to
// not-found
func (s *Store) DeactivatePurchase(id uint) error {
	return s.db.Model(&models.Purchase{}).Where("id = ?", id).Update("active", false).Error
}
