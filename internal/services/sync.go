package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/storage"
)

// SyncService refreshes the locally cached profile inbound templates from
// the live panels. Running it out-of-band keeps the subscription feed free
// of panel round trips while still picking up rotated settings.
type SyncService struct {
	store   *storage.Store
	factory PanelClientFactory
	logger  *logrus.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(store *storage.Store, factory PanelClientFactory, logger *logrus.Logger) *SyncService {
	return &SyncService{store: store, factory: factory, logger: logger}
}

// SyncAll refreshes every active profile's templates
func (s *SyncService) SyncAll(ctx context.Context) {
	profiles, err := s.store.ListActiveProfiles()
	if err != nil {
		s.logger.Errorf("Profile sync aborted, cannot list profiles: %v", err)
		return
	}

	for _, profile := range profiles {
		if err := s.SyncProfile(ctx, profile); err != nil {
			s.logger.Warnf("Profile %s sync failed: %v", profile.Name, err)
		}
	}
}

// SyncProfile refreshes one profile's inbound snapshots. The membership
// list (which inbounds belong to the profile) is admin-configured and kept
// as-is; only the snapshot fields are refreshed. An unreachable server
// leaves its templates at the previous snapshot.
func (s *SyncService) SyncProfile(ctx context.Context, profile models.Profile) error {
	templates, err := s.store.GetProfileInbounds(profile.ID)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		return nil
	}

	// One catalog fetch per distinct server
	catalogs := make(map[uint]map[int]models.Inbound)
	for _, template := range templates {
		if _, done := catalogs[template.ServerID]; done {
			continue
		}

		server, err := s.store.GetServer(template.ServerID)
		if err != nil {
			return err
		}
		if server == nil || !server.Active {
			catalogs[template.ServerID] = nil
			continue
		}

		client := s.factory(*server)
		if err := client.Authenticate(ctx); err != nil {
			s.logger.Warnf("Sync: authentication to %s failed, keeping stale templates: %v", server.Name, err)
			catalogs[template.ServerID] = nil
			continue
		}
		inbounds, err := client.ListInbounds(ctx)
		if err != nil {
			s.logger.Warnf("Sync: catalog fetch from %s failed, keeping stale templates: %v", server.Name, err)
			catalogs[template.ServerID] = nil
			continue
		}

		catalog := make(map[int]models.Inbound, len(inbounds))
		for _, inbound := range inbounds {
			catalog[inbound.ID] = inbound
		}
		catalogs[template.ServerID] = catalog
	}

	now := time.Now()
	updated := make([]models.ProfileInbound, 0, len(templates))
	for _, template := range templates {
		catalog := catalogs[template.ServerID]
		if catalog == nil {
			updated = append(updated, template)
			continue
		}
		inbound, ok := catalog[template.InboundID]
		if !ok {
			s.logger.Warnf("Sync: inbound %d vanished from server %d, keeping stale template", template.InboundID, template.ServerID)
			updated = append(updated, template)
			continue
		}

		template.Protocol = inbound.Protocol
		template.Port = inbound.Port
		template.StreamSettings = inbound.StreamSettings
		template.SyncedAt = now
		updated = append(updated, template)
	}

	if err := s.store.ReplaceProfileInbounds(profile.ID, updated); err != nil {
		return err
	}

	s.logger.Infof("Synced %d templates for profile %s", len(updated), profile.Name)
	return nil
}
