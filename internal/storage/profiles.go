package storage

import (
	"gorm.io/gorm"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
)

// ListActiveProfiles returns every active profile
func (s *Store) ListActiveProfiles() ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.db.Where("active = ?", true).Order("id").Find(&profiles).Error
	return profiles, err
}

// GetProfile returns one profile by id, or nil when absent
func (s *Store) GetProfile(id uint) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.First(&profile, id).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// SaveProfile creates or updates a profile record
func (s *Store) SaveProfile(profile *models.Profile) error {
	return s.db.Save(profile).Error
}

// GetProfileInbounds returns the synced inbound templates of a profile
func (s *Store) GetProfileInbounds(profileID uint) ([]models.ProfileInbound, error) {
	var inbounds []models.ProfileInbound
	err := s.db.Where("profile_id = ?", profileID).Order("id").Find(&inbounds).Error
	return inbounds, err
}

// ReplaceProfileInbounds atomically replaces a profile's synced templates
// with a freshly fetched snapshot
func (s *Store) ReplaceProfileInbounds(profileID uint, inbounds []models.ProfileInbound) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profileID).Delete(&models.ProfileInbound{}).Error; err != nil {
			return err
		}
		if len(inbounds) == 0 {
			return nil
		}
		return tx.Create(&inbounds).Error
	})
}
