package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/aliafrazeh/alamor-vpn-bot/internal/errors"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/helpers"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/links"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/storage"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/streams"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/validation"
	"github.com/aliafrazeh/alamor-vpn-bot/pkg/panelclient"
)

// defaultFlow is applied to VLESS clients on reality/tcp inbounds, matching
// the panels' own default for vision flow control
const defaultFlow = "xtls-rprx-vision"

// PanelClientFactory builds a panel client for a server; swapped out in tests
type PanelClientFactory func(server models.Server) panelclient.PanelClient

// ProvisionTarget is one (server, inbound) pair a purchase must provision into
type ProvisionTarget struct {
	Server    models.Server
	InboundID int
}

// Identity is the client identity shared by every inbound of one purchase
type Identity struct {
	Tokens    []string
	BaseLabel string
}

// Provisioner registers client identities on remote panel inbounds and
// renders the resulting connection URIs
type Provisioner struct {
	store     *storage.Store
	extractor *streams.Extractor
	factory   PanelClientFactory
	logger    *logrus.Logger
}

// NewProvisioner creates a new provisioner using the real panel client factory
func NewProvisioner(store *storage.Store, logger *logrus.Logger) *Provisioner {
	return &Provisioner{
		store:     store,
		extractor: streams.NewExtractor(logger),
		factory: func(server models.Server) panelclient.PanelClient {
			return panelclient.New(server, logger)
		},
		logger: logger,
	}
}

// NewProvisionerWithFactory creates a provisioner with a custom factory
func NewProvisionerWithFactory(store *storage.Store, factory PanelClientFactory, logger *logrus.Logger) *Provisioner {
	return &Provisioner{
		store:     store,
		extractor: streams.NewExtractor(logger),
		factory:   factory,
		logger:    logger,
	}
}

// ResolveServerTargets lists a server's enabled inbounds as provisioning targets
func (p *Provisioner) ResolveServerTargets(ctx context.Context, server models.Server) ([]ProvisionTarget, error) {
	client := p.factory(server)
	if err := client.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authenticate to %s: %w", server.Name, err)
	}
	inbounds, err := client.ListInbounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list inbounds on %s: %w", server.Name, err)
	}

	var targets []ProvisionTarget
	for _, inbound := range inbounds {
		if !inbound.Enable {
			continue
		}
		targets = append(targets, ProvisionTarget{Server: server, InboundID: inbound.ID})
	}
	return targets, nil
}

// ResolveProfileTargets builds the target set from a profile's synced
// cross-server inbound membership list
func (p *Provisioner) ResolveProfileTargets(profileID uint) ([]ProvisionTarget, error) {
	profileInbounds, err := p.store.GetProfileInbounds(profileID)
	if err != nil {
		return nil, fmt.Errorf("load profile %d inbounds: %w", profileID, err)
	}

	servers := make(map[uint]*models.Server)
	var targets []ProvisionTarget
	for _, pi := range profileInbounds {
		server, ok := servers[pi.ServerID]
		if !ok {
			server, err = p.store.GetServer(pi.ServerID)
			if err != nil {
				return nil, err
			}
			servers[pi.ServerID] = server
		}
		if server == nil || !server.Active {
			continue
		}
		targets = append(targets, ProvisionTarget{Server: *server, InboundID: pi.InboundID})
	}
	return targets, nil
}

// Provision generates one client identity, registers it on every target
// inbound and renders the connection URIs. Server or inbound failures only
// drop that subset; the call fails as a whole only when no target produced
// a URI.
func (p *Provisioner) Provision(ctx context.Context, requesterID int64, targets []ProvisionTarget, volumeGB, durationDays int, customLabel string) ([]string, *Identity, error) {
	if customLabel != "" {
		if err := validation.ValidateLabel(customLabel); err != nil {
			return nil, nil, err
		}
	}

	token := uuid.NewString()
	baseLabel := helpers.NewBaseLabel(requesterID, customLabel)

	expiry := helpers.ExpiryMillis(time.Now(), durationDays)
	quota := helpers.QuotaBytes(volumeGB)

	// Partition targets by owning server, preserving first-seen server order
	var serverOrder []uint
	byServer := make(map[uint][]ProvisionTarget)
	serverByID := make(map[uint]models.Server)
	for _, target := range targets {
		id := target.Server.ID
		if _, ok := byServer[id]; !ok {
			serverOrder = append(serverOrder, id)
			serverByID[id] = target.Server
		}
		byServer[id] = append(byServer[id], target)
	}

	var configs []string
	for _, serverID := range serverOrder {
		server := serverByID[serverID]
		client := p.factory(server)

		if err := client.Authenticate(ctx); err != nil {
			p.logger.Warnf("Skipping server %s: authentication failed: %v", server.Name, err)
			continue
		}

		catalog, err := client.ListInbounds(ctx)
		if err != nil {
			p.logger.Warnf("Skipping server %s: inbound catalog fetch failed: %v", server.Name, err)
			continue
		}
		catalogByID := make(map[int]models.Inbound, len(catalog))
		for _, inbound := range catalog {
			catalogByID[inbound.ID] = inbound
		}

		for _, target := range byServer[serverID] {
			inbound, ok := catalogByID[target.InboundID]
			if !ok {
				p.logger.Warnf("Inbound %d not found on server %s, skipping", target.InboundID, server.Name)
				continue
			}

			label := helpers.InboundLabel(baseLabel, target.InboundID)
			params := p.extractor.Parse(inbound.StreamSettings)

			entry := models.Client{
				Enable:     true,
				Email:      label,
				TotalGB:    quota,
				ExpiryTime: expiry,
				TgID:       fmt.Sprintf("%d", requesterID),
			}
			switch inbound.Protocol {
			case "trojan":
				entry.Password = token
			default:
				entry.ID = token
			}
			if inbound.Protocol == "vless" && params.Security == "reality" && params.Network == "tcp" {
				entry.Flow = defaultFlow
			}

			if err := client.AddClient(ctx, target.InboundID, entry); err != nil {
				p.logger.Warnf("Failed to add client to inbound %d on %s: %v", target.InboundID, server.Name, err)
				continue
			}

			host := links.HostFromSubBase(server.SubBase)
			var config string
			switch inbound.Protocol {
			case "vless":
				config = links.BuildVless(token, label, params, inbound.Port, host, entry.Flow)
			case "vmess":
				config = links.BuildVmess(token, label, params, inbound.Port, host)
			case "trojan":
				config = links.BuildTrojan(token, label, params, inbound.Port, host, entry.Flow)
			default:
				p.logger.Warnf("Unsupported protocol %q on inbound %d, skipping", inbound.Protocol, target.InboundID)
				continue
			}

			if config == "" {
				p.logger.Warnf("Could not render config for inbound %d on %s", target.InboundID, server.Name)
				continue
			}
			configs = append(configs, config)
		}
	}

	if len(configs) == 0 {
		return nil, nil, &apperrors.ProvisionError{Targets: len(targets)}
	}

	return configs, &Identity{Tokens: []string{token}, BaseLabel: baseLabel}, nil
}
