package panelclient

import (
	"github.com/sirupsen/logrus"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
)

// SanaeiClient implements the PanelClient contract for Sanaei-style 3x-ui
// panels: inbound routes live under /panel/api/inbounds and listing is a GET.
type SanaeiClient struct {
	*baseClient
}

// NewSanaeiClient creates a panel client for a Sanaei 3x-ui server
func NewSanaeiClient(server models.Server, logger *logrus.Logger) *SanaeiClient {
	return &SanaeiClient{
		baseClient: newBaseClient(server, logger, "/panel/api/inbounds", "/list", false),
	}
}

// PanelType returns the vendor tag
func (c *SanaeiClient) PanelType() string {
	return models.PanelTypeSanaei
}
