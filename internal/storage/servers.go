package storage

import (
	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
)

// ListActiveServers returns every active server
func (s *Store) ListActiveServers() ([]models.Server, error) {
	var servers []models.Server
	err := s.db.Where("active = ?", true).Order("id").Find(&servers).Error
	return servers, err
}

// GetServer returns one server by id, or nil when absent
func (s *Store) GetServer(id uint) (*models.Server, error) {
	var server models.Server
	err := s.db.First(&server, id).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &server, nil
}

// SaveServer creates or updates a server record
func (s *Store) SaveServer(server *models.Server) error {
	return s.db.Save(server).Error
}

// ListActivePlans returns active plans for one server
func (s *Store) ListActivePlans(serverID uint) ([]models.Plan, error) {
	var plans []models.Plan
	err := s.db.Where("server_id = ? AND active = ?", serverID, true).Order("id").Find(&plans).Error
	return plans, err
}

// ListAllActivePlans returns active plans across all servers
func (s *Store) ListAllActivePlans() ([]models.Plan, error) {
	var plans []models.Plan
	err := s.db.Where("active = ?", true).Order("id").Find(&plans).Error
	return plans, err
}

// GetPlan returns one plan by id, or nil when absent
func (s *Store) GetPlan(id uint) (*models.Plan, error) {
	var plan models.Plan
	err := s.db.First(&plan, id).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// SavePlan creates or updates a plan record
func (s *Store) SavePlan(plan *models.Plan) error {
	return s.db.Save(plan).Error
}
