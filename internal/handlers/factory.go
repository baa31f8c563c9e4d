package handlers

import (
	"context"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/config"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/permissions"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/services"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/storage"
)

// MessageHandler defines the interface for handling Telegram messages
type MessageHandler interface {
	Handle(ctx context.Context, c telebot.Context) error
	CanHandle(accessType permissions.AccessType) bool
}

// HandlerFactory creates message handlers
type HandlerFactory struct {
	store        *storage.Store
	stateService *services.UserStateService
	orderService *services.OrderService
	syncService  *services.SyncService
	qrService    *services.QRService
	config       *config.Config
	logger       *logrus.Logger
}

// NewHandlerFactory creates a new handler factory
func NewHandlerFactory(
	store *storage.Store,
	stateService *services.UserStateService,
	orderService *services.OrderService,
	syncService *services.SyncService,
	qrService *services.QRService,
	config *config.Config,
	logger *logrus.Logger,
) *HandlerFactory {
	return &HandlerFactory{
		store:        store,
		stateService: stateService,
		orderService: orderService,
		syncService:  syncService,
		qrService:    qrService,
		config:       config,
		logger:       logger,
	}
}

// CreateHandler creates a message handler for the given access type
func (f *HandlerFactory) CreateHandler(accessType permissions.AccessType) MessageHandler {
	base := NewBaseHandler(f.store, f.stateService, f.orderService, f.qrService, f.config, f.logger)
	switch accessType {
	case permissions.Admin:
		return NewAdminHandler(base, f.syncService)
	default:
		return NewCustomerHandler(base)
	}
}
