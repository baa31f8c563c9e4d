package handlers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/commands"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/config"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/services"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/storage"
)

// BaseHandler provides common functionality for message handlers
type BaseHandler struct {
	store        *storage.Store
	stateService *services.UserStateService
	orderService *services.OrderService
	qrService    *services.QRService
	config       *config.Config
	logger       *logrus.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(
	store *storage.Store,
	stateService *services.UserStateService,
	orderService *services.OrderService,
	qrService *services.QRService,
	config *config.Config,
	logger *logrus.Logger,
) *BaseHandler {
	return &BaseHandler{
		store:        store,
		stateService: stateService,
		orderService: orderService,
		qrService:    qrService,
		config:       config,
		logger:       logger,
	}
}

func (h *BaseHandler) sendTextMessage(c telebot.Context, text string) error {
	return c.Send(text)
}

func (h *BaseHandler) sendWithKeyboard(c telebot.Context, text string, keyboard *telebot.ReplyMarkup) error {
	return c.Send(text, keyboard)
}

func (h *BaseHandler) sendQRCode(c telebot.Context, content string, caption string) error {
	png, err := h.qrService.GenerateQR(content)
	if err != nil {
		return err
	}
	photo := &telebot.Photo{File: telebot.FromReader(bytes.NewReader(png)), Caption: caption}
	return c.Send(photo)
}

func (h *BaseHandler) notifyUser(c telebot.Context, userID int64, text string) {
	if _, err := c.Bot().Send(&telebot.User{ID: userID}, text); err != nil {
		h.logger.Warnf("Failed to notify user %d: %v", userID, err)
	}
}

func (h *BaseHandler) notifyAdmins(c telebot.Context, text string) {
	for _, adminID := range h.config.Telegram.AdminIDs {
		h.notifyUser(c, adminID, text)
	}
}

func (h *BaseHandler) customerKeyboard() *telebot.ReplyMarkup {
	keyboard := &telebot.ReplyMarkup{ResizeKeyboard: true}
	keyboard.Reply(
		keyboard.Row(keyboard.Text(commands.BuyPlan), keyboard.Text(commands.BuyProfile)),
		keyboard.Row(keyboard.Text(commands.MyServices), keyboard.Text(commands.Wallet)),
		keyboard.Row(keyboard.Text(commands.GetSubLink), keyboard.Text(commands.GetQRCode)),
	)
	return keyboard
}

func (h *BaseHandler) adminKeyboard() *telebot.ReplyMarkup {
	keyboard := &telebot.ReplyMarkup{ResizeKeyboard: true}
	keyboard.Reply(
		keyboard.Row(keyboard.Text(commands.PendingReceipts), keyboard.Text(commands.SyncProfiles)),
		keyboard.Row(keyboard.Text(commands.ListServers), keyboard.Text(commands.ListPlans)),
		keyboard.Row(keyboard.Text(commands.ReturnToMainMenu)),
	)
	return keyboard
}

func (h *BaseHandler) cancelKeyboard() *telebot.ReplyMarkup {
	keyboard := &telebot.ReplyMarkup{ResizeKeyboard: true}
	keyboard.Reply(keyboard.Row(keyboard.Text(commands.Cancel)))
	return keyboard
}

func (h *BaseHandler) confirmKeyboard() *telebot.ReplyMarkup {
	keyboard := &telebot.ReplyMarkup{ResizeKeyboard: true}
	keyboard.Reply(keyboard.Row(keyboard.Text(commands.Confirm), keyboard.Text(commands.Cancel)))
	return keyboard
}

func (h *BaseHandler) clearState(userID int64) {
	h.stateService.ClearState(userID)
}

// parseSelection extracts a numeric selection from message text like "3" or "3. Plan name"
func parseSelection(text string) (uint, bool) {
	trimmed := strings.TrimSpace(text)
	if idx := strings.IndexAny(trimmed, ". "); idx > 0 {
		trimmed = trimmed[:idx]
	}
	id, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func formatPlanLine(plan models.Plan, server *models.Server) string {
	serverName := "?"
	if server != nil {
		serverName = server.Name
	}
	return fmt.Sprintf("%d. %s (%s) - %d GB / %d days - %d", plan.ID, plan.Name, serverName, plan.VolumeGB, plan.DurationDays, plan.Price)
}

func formatProfileLine(profile models.Profile) string {
	return fmt.Sprintf("%d. %s - %d per GB / %d days", profile.ID, profile.Name, profile.PricePerGB, profile.DurationDays)
}
