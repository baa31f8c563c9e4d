package panelclient

import (
	"github.com/sirupsen/logrus"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
)

// AlirezaClient implements the PanelClient contract for Alireza-style x-ui
// panels: inbound routes live under /xui/API/inbounds and listing is a POST.
type AlirezaClient struct {
	*baseClient
}

// NewAlirezaClient creates a panel client for an Alireza x-ui server
func NewAlirezaClient(server models.Server, logger *logrus.Logger) *AlirezaClient {
	return &AlirezaClient{
		baseClient: newBaseClient(server, logger, "/xui/API/inbounds", "", true),
	}
}

// PanelType returns the vendor tag
func (c *AlirezaClient) PanelType() string {
	return models.PanelTypeAlireza
}
