package services

import (
	"encoding/base64"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/aliafrazeh/alamor-vpn-bot/internal/errors"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/links"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/storage"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/streams"
)

// SubscriptionService renders the subscription feed payload for a purchase
type SubscriptionService struct {
	store     *storage.Store
	extractor *streams.Extractor
	logger    *logrus.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(store *storage.Store, logger *logrus.Logger) *SubscriptionService {
	return &SubscriptionService{
		store:     store,
		extractor: streams.NewExtractor(logger),
		logger:    logger,
	}
}

// RenderFeed produces the feed body for a subscription identifier: the
// purchase's connection URIs newline-joined and base64-encoded.
//
// Profile-bound purchases are re-rendered from the profile's synced inbound
// templates on every call, so rotated settings (e.g. reality short ids)
// reach clients without re-provisioning. Server-bound purchases replay the
// configuration list persisted at provisioning time.
func (s *SubscriptionService) RenderFeed(subID string) ([]byte, error) {
	purchase, err := s.store.GetPurchaseBySubID(subID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperrors.ErrPurchaseNotFound
	}

	var configs []string
	if purchase.ProfileID != nil {
		configs, err = s.renderProfileConfigs(purchase)
		if err != nil {
			return nil, err
		}
	} else {
		configs = purchase.Configs
	}

	if len(configs) == 0 {
		return nil, apperrors.ErrNoConfigurations
	}

	payload := strings.Join(configs, "\n")
	return []byte(base64.StdEncoding.EncodeToString([]byte(payload))), nil
}

// renderProfileConfigs re-renders a profile purchase's URIs from the synced
// inbound templates using the stored identity token and per-purchase label
func (s *SubscriptionService) renderProfileConfigs(purchase *models.Purchase) ([]string, error) {
	templates, err := s.store.GetProfileInbounds(*purchase.ProfileID)
	if err != nil {
		return nil, err
	}

	token := purchase.Token()
	servers := make(map[uint]*models.Server)

	var configs []string
	for _, template := range templates {
		server, ok := servers[template.ServerID]
		if !ok {
			server, err = s.store.GetServer(template.ServerID)
			if err != nil {
				return nil, err
			}
			servers[template.ServerID] = server
		}
		if server == nil {
			s.logger.Warnf("Server %d for profile template %d no longer exists", template.ServerID, template.ID)
			continue
		}

		params := s.extractor.Parse(template.StreamSettings)
		host := links.HostFromSubBase(server.SubBase)

		flow := ""
		if template.Protocol == "vless" && params.Security == "reality" && params.Network == "tcp" {
			flow = defaultFlow
		}

		var config string
		switch template.Protocol {
		case "vless":
			config = links.BuildVless(token, purchase.BaseLabel, params, template.Port, host, flow)
		case "vmess":
			config = links.BuildVmess(token, purchase.BaseLabel, params, template.Port, host)
		case "trojan":
			config = links.BuildTrojan(token, purchase.BaseLabel, params, template.Port, host, flow)
		}

		if config == "" {
			s.logger.Warnf("Could not render config for profile template %d", template.ID)
			continue
		}
		configs = append(configs, config)
	}

	return configs, nil
}
