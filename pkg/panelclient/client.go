// Package panelclient talks to remote x-ui-family panel servers. Vendor
// variants share one logical contract and differ only in base path and the
// HTTP method used for listing inbounds.
package panelclient

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
)

// PanelClient is the capability contract against a remote panel
type PanelClient interface {
	// Authenticate logs in and caches the session cookie
	Authenticate(ctx context.Context) error

	// ListInbounds fetches the panel's full inbound catalog
	ListInbounds(ctx context.Context) ([]models.Inbound, error)

	// GetInbound fetches a single inbound by its panel-local identifier
	GetInbound(ctx context.Context, id int) (*models.Inbound, error)

	// AddClient registers a client identity on an inbound
	AddClient(ctx context.Context, inboundID int, client models.Client) error

	// PanelType returns the vendor tag this client implements
	PanelType() string
}

// New creates a panel client for the server's stored panel-type tag.
// Unknown tags fall back to the Sanaei variant.
func New(server models.Server, logger *logrus.Logger) PanelClient {
	switch server.PanelType {
	case models.PanelTypeAlireza:
		return NewAlirezaClient(server, logger)
	default:
		return NewSanaeiClient(server, logger)
	}
}
