package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/aliafrazeh/alamor-vpn-bot/internal/errors"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/services"
)

// Server serves the subscription feed endpoint that proxy client apps poll
type Server struct {
	httpServer *http.Server
	subService *services.SubscriptionService
	logger     *logrus.Logger
}

// NewServer creates the feed server
func NewServer(listen string, subService *services.SubscriptionService, logger *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		httpServer: &http.Server{Addr: listen, Handler: engine},
		subService: subService,
		logger:     logger,
	}

	engine.GET("/sub/:subId", s.handleSub)

	return s
}

// Handler exposes the HTTP handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Stop is called
func (s *Server) Start() error {
	s.logger.Infof("Subscription feed listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the feed server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleSub renders one feed request. Failures are terminal HTTP responses,
// never panics surfaced to the transport layer.
func (s *Server) handleSub(c *gin.Context) {
	subID := c.Param("subId")

	payload, err := s.subService.RenderFeed(subID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPurchaseNotFound):
			c.String(http.StatusNotFound, "subscription not found")
		case errors.Is(err, apperrors.ErrNoConfigurations):
			c.String(http.StatusNotFound, "no configurations")
		default:
			s.logger.Errorf("Feed rendering failed for %s: %v", subID, err)
			c.String(http.StatusInternalServerError, "internal error")
		}
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", payload)
}
