package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/commands"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/permissions"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/services"
)

// AdminHandler handles messages from administrators
type AdminHandler struct {
	*BaseHandler
	syncService *services.SyncService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(base *BaseHandler, syncService *services.SyncService) *AdminHandler {
	return &AdminHandler{BaseHandler: base, syncService: syncService}
}

// CanHandle returns true for admin access
func (h *AdminHandler) CanHandle(accessType permissions.AccessType) bool {
	return accessType == permissions.Admin
}

// Handle processes an admin message
func (h *AdminHandler) Handle(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	switch text {
	case commands.Start, commands.ReturnToMainMenu, commands.Cancel:
		h.clearState(userID)
		return h.sendWithKeyboard(c, "Admin menu:", h.adminKeyboard())
	case commands.PendingReceipts:
		return h.showPendingReceipts(c)
	case commands.ListServers:
		return h.showServers(c)
	case commands.ListPlans:
		return h.showPlans(c)
	case commands.SyncProfiles:
		h.syncService.SyncAll(ctx)
		return h.sendTextMessage(c, "Profile sync finished.")
	}

	if strings.HasPrefix(text, commands.ApproveReceipt+" ") {
		return h.reviewReceipt(ctx, c, strings.TrimPrefix(text, commands.ApproveReceipt+" "), true)
	}
	if strings.HasPrefix(text, commands.RejectReceipt+" ") {
		return h.reviewReceipt(ctx, c, strings.TrimPrefix(text, commands.RejectReceipt+" "), false)
	}

	return h.sendWithKeyboard(c, "Please choose an option from the menu.", h.adminKeyboard())
}

func (h *AdminHandler) showPendingReceipts(c telebot.Context) error {
	payments, err := h.store.ListPendingPayments()
	if err != nil {
		h.logger.Errorf("Failed to list pending payments: %v", err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	if len(payments) == 0 {
		return h.sendTextMessage(c, "No pending receipts.")
	}

	for _, payment := range payments {
		caption := fmt.Sprintf("Receipt #%d\nUser: %d\nAmount: %d\n%s\n\n%s %d  /  %s %d",
			payment.ID, payment.UserID, payment.Amount, describeOrder(payment),
			commands.ApproveReceipt, payment.ID, commands.RejectReceipt, payment.ID)
		photo := &telebot.Photo{File: telebot.File{FileID: payment.ReceiptFileID}, Caption: caption}
		if err := c.Send(photo); err != nil {
			h.logger.Warnf("Failed to send receipt photo %d: %v", payment.ID, err)
			if err := h.sendTextMessage(c, caption); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *AdminHandler) reviewReceipt(ctx context.Context, c telebot.Context, idText string, approve bool) error {
	id, err := strconv.ParseUint(strings.TrimSpace(idText), 10, 32)
	if err != nil {
		return h.sendTextMessage(c, "Please send the receipt number, e.g. \""+commands.ApproveReceipt+" 3\".")
	}
	payment, err := h.store.GetPayment(uint(id))
	if err != nil {
		h.logger.Errorf("Failed to load payment %d: %v", id, err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	if payment == nil {
		return h.sendTextMessage(c, "Receipt not found.")
	}
	if payment.Status != models.PaymentPending {
		return h.sendTextMessage(c, "That receipt was already reviewed.")
	}

	if !approve {
		if err := h.store.SetPaymentStatus(payment.ID, models.PaymentRejected); err != nil {
			h.logger.Errorf("Failed to reject payment %d: %v", payment.ID, err)
			return h.sendTextMessage(c, "Something went wrong, please try again later.")
		}
		h.notifyUser(c, payment.UserID, "Your payment receipt was rejected. Contact support if you believe this is a mistake.")
		return h.sendTextMessage(c, fmt.Sprintf("Receipt #%d rejected.", payment.ID))
	}

	purchase, err := h.activatePayment(ctx, payment)
	if err != nil {
		h.logger.Errorf("Provisioning failed for payment %d: %v", payment.ID, err)
		return h.sendTextMessage(c, "Provisioning failed, the receipt is still pending. Check the servers and try again.")
	}
	if err := h.store.SetPaymentStatus(payment.ID, models.PaymentApproved); err != nil {
		h.logger.Errorf("Failed to approve payment %d: %v", payment.ID, err)
	}

	url := h.orderService.SubscriptionURL(purchase)
	h.notifyUser(c, payment.UserID, "Your payment was approved!\n\nSubscription link:\n"+url)
	return h.sendTextMessage(c, fmt.Sprintf("Receipt #%d approved and service provisioned.", payment.ID))
}

func (h *AdminHandler) activatePayment(ctx context.Context, payment *models.Payment) (*models.Purchase, error) {
	switch {
	case payment.PlanID != nil:
		plan, err := h.store.GetPlan(*payment.PlanID)
		if err != nil {
			return nil, err
		}
		if plan == nil {
			return nil, fmt.Errorf("plan %d no longer exists", *payment.PlanID)
		}
		return h.orderService.ActivatePlanPurchase(ctx, payment.UserID, *plan)
	case payment.ProfileID != nil:
		profile, err := h.store.GetProfile(*payment.ProfileID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, fmt.Errorf("profile %d no longer exists", *payment.ProfileID)
		}
		return h.orderService.ActivateProfilePurchase(ctx, payment.UserID, *profile, payment.VolumeGB)
	}
	return nil, fmt.Errorf("payment %d references neither plan nor profile", payment.ID)
}

func (h *AdminHandler) showServers(c telebot.Context) error {
	servers, err := h.store.ListActiveServers()
	if err != nil {
		h.logger.Errorf("Failed to list servers: %v", err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	if len(servers) == 0 {
		return h.sendTextMessage(c, "No active servers.")
	}

	var sb strings.Builder
	sb.WriteString("Active servers:\n\n")
	for _, server := range servers {
		sb.WriteString(fmt.Sprintf("%d. %s (%s) - %s\n", server.ID, server.Name, server.PanelType, server.SubBase))
	}
	return h.sendTextMessage(c, sb.String())
}

func (h *AdminHandler) showPlans(c telebot.Context) error {
	plans, err := h.store.ListAllActivePlans()
	if err != nil {
		h.logger.Errorf("Failed to list plans: %v", err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	if len(plans) == 0 {
		return h.sendTextMessage(c, "No active plans.")
	}

	var sb strings.Builder
	sb.WriteString("Active plans:\n\n")
	for _, plan := range plans {
		server, _ := h.store.GetServer(plan.ServerID)
		sb.WriteString(formatPlanLine(plan, server))
		sb.WriteString("\n")
	}
	return h.sendTextMessage(c, sb.String())
}

func describeOrder(payment models.Payment) string {
	switch {
	case payment.PlanID != nil:
		return fmt.Sprintf("Plan: %d", *payment.PlanID)
	case payment.ProfileID != nil:
		return fmt.Sprintf("Profile: %d (%d GB)", *payment.ProfileID, payment.VolumeGB)
	}
	return "Order: unknown"
}
