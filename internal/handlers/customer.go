package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/commands"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/helpers"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/permissions"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/validation"
)

// CustomerHandler handles messages from customers
type CustomerHandler struct {
	*BaseHandler
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(base *BaseHandler) *CustomerHandler {
	return &CustomerHandler{BaseHandler: base}
}

// CanHandle returns true for customer access
func (h *CustomerHandler) CanHandle(accessType permissions.AccessType) bool {
	return accessType == permissions.Customer
}

// Handle processes a customer message
func (h *CustomerHandler) Handle(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	if _, err := h.store.GetOrCreateUser(userID, c.Sender().Username); err != nil {
		h.logger.Errorf("Failed to load user %d: %v", userID, err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}

	switch text {
	case commands.Start, commands.ReturnToMainMenu:
		h.clearState(userID)
		return h.sendWithKeyboard(c, "Welcome! Choose an option:", h.customerKeyboard())
	case commands.Cancel:
		h.clearState(userID)
		return h.sendWithKeyboard(c, "Cancelled.", h.customerKeyboard())
	}

	state, err := h.stateService.GetState(userID)
	if err != nil {
		h.logger.Errorf("Failed to get state for user %d: %v", userID, err)
		state = &models.UserState{State: models.Default}
	}

	switch state.State {
	case models.AwaitingPlanSelection:
		return h.handlePlanSelection(c, userID, text)
	case models.AwaitingProfileSelection:
		return h.handleProfileSelection(c, userID, text)
	case models.AwaitingProfileVolume:
		return h.handleProfileVolume(c, userID, state, text)
	case models.AwaitingPurchaseConfirmation:
		return h.handlePurchaseConfirmation(ctx, c, userID, state, text)
	case models.AwaitingReceiptPhoto:
		return h.handleReceiptPhoto(c, userID, state)
	case models.AwaitingServiceSelection:
		return h.handleServiceSelection(c, userID, state, text)
	}

	switch text {
	case commands.BuyPlan:
		return h.startPlanPurchase(c, userID)
	case commands.BuyProfile:
		return h.startProfilePurchase(c, userID)
	case commands.MyServices:
		return h.showServices(c, userID)
	case commands.Wallet:
		return h.showWallet(c, userID)
	case commands.GetSubLink:
		return h.startServiceSelection(c, userID, "link")
	case commands.GetQRCode:
		return h.startServiceSelection(c, userID, "qr")
	}

	return h.sendWithKeyboard(c, "Please choose an option from the menu.", h.customerKeyboard())
}

func (h *CustomerHandler) startPlanPurchase(c telebot.Context, userID int64) error {
	plans, err := h.store.ListAllActivePlans()
	if err != nil {
		h.logger.Errorf("Failed to list plans: %v", err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	if len(plans) == 0 {
		return h.sendTextMessage(c, "No plans available right now.")
	}

	var sb strings.Builder
	sb.WriteString("Available plans:\n\n")
	for _, plan := range plans {
		server, _ := h.store.GetServer(plan.ServerID)
		sb.WriteString(formatPlanLine(plan, server))
		sb.WriteString("\n")
	}
	sb.WriteString("\nSend the plan number to continue.")

	h.stateService.WithConversationState(userID, models.AwaitingPlanSelection)
	return h.sendWithKeyboard(c, sb.String(), h.cancelKeyboard())
}

func (h *CustomerHandler) handlePlanSelection(c telebot.Context, userID int64, text string) error {
	planID, ok := parseSelection(text)
	if !ok {
		return h.sendTextMessage(c, "Please send a plan number.")
	}
	plan, err := h.store.GetPlan(planID)
	if err != nil {
		h.logger.Errorf("Failed to load plan %d: %v", planID, err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	if plan == nil || !plan.Active {
		return h.sendTextMessage(c, "That plan is not available.")
	}

	payload := fmt.Sprintf("plan:%d", plan.ID)
	return h.proceedToPayment(c, userID, payload, plan.Price)
}

func (h *CustomerHandler) startProfilePurchase(c telebot.Context, userID int64) error {
	profiles, err := h.store.ListActiveProfiles()
	if err != nil {
		h.logger.Errorf("Failed to list profiles: %v", err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	if len(profiles) == 0 {
		return h.sendTextMessage(c, "No profiles available right now.")
	}

	var sb strings.Builder
	sb.WriteString("Available profiles:\n\n")
	for _, profile := range profiles {
		sb.WriteString(formatProfileLine(profile))
		sb.WriteString("\n")
	}
	sb.WriteString("\nSend the profile number to continue.")

	h.stateService.WithConversationState(userID, models.AwaitingProfileSelection)
	return h.sendWithKeyboard(c, sb.String(), h.cancelKeyboard())
}

func (h *CustomerHandler) handleProfileSelection(c telebot.Context, userID int64, text string) error {
	profileID, ok := parseSelection(text)
	if !ok {
		return h.sendTextMessage(c, "Please send a profile number.")
	}
	profile, err := h.store.GetProfile(profileID)
	if err != nil {
		h.logger.Errorf("Failed to load profile %d: %v", profileID, err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	if profile == nil || !profile.Active {
		return h.sendTextMessage(c, "That profile is not available.")
	}

	h.stateService.SetState(userID, models.UserState{
		State:   models.AwaitingProfileVolume,
		Payload: stringPtr(fmt.Sprintf("profile:%d", profile.ID)),
	})
	return h.sendTextMessage(c, fmt.Sprintf("How many gigabytes do you need? (price: %d per GB)", profile.PricePerGB))
}

func (h *CustomerHandler) handleProfileVolume(c telebot.Context, userID int64, state *models.UserState, text string) error {
	volumeGB, err := validation.ValidateVolume(text)
	if err != nil {
		return h.sendTextMessage(c, err.Error())
	}
	if state.Payload == nil {
		h.clearState(userID)
		return h.sendWithKeyboard(c, "Session expired, please start over.", h.customerKeyboard())
	}

	profileID, ok := parsePayloadID(*state.Payload, "profile")
	if !ok {
		h.clearState(userID)
		return h.sendWithKeyboard(c, "Session expired, please start over.", h.customerKeyboard())
	}
	profile, err := h.store.GetProfile(profileID)
	if err != nil || profile == nil {
		h.clearState(userID)
		return h.sendWithKeyboard(c, "That profile is not available.", h.customerKeyboard())
	}

	payload := fmt.Sprintf("profile:%d:%d", profile.ID, volumeGB)
	return h.proceedToPayment(c, userID, payload, profile.PricePerGB*int64(volumeGB))
}

// proceedToPayment routes to a wallet confirmation when the balance covers the
// price, otherwise asks for a card-to-card receipt photo
func (h *CustomerHandler) proceedToPayment(c telebot.Context, userID int64, payload string, price int64) error {
	user, err := h.store.GetOrCreateUser(userID, c.Sender().Username)
	if err != nil {
		h.logger.Errorf("Failed to load user %d: %v", userID, err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}

	if user.Balance >= price {
		h.stateService.SetState(userID, models.UserState{
			State:   models.AwaitingPurchaseConfirmation,
			Payload: stringPtr(payload),
		})
		msg := fmt.Sprintf("Price: %d\nWallet balance: %d\n\nConfirm payment from your wallet?", price, user.Balance)
		return h.sendWithKeyboard(c, msg, h.confirmKeyboard())
	}

	h.stateService.SetState(userID, models.UserState{
		State:   models.AwaitingReceiptPhoto,
		Payload: stringPtr(payload),
	})
	msg := fmt.Sprintf("Price: %d\nWallet balance: %d\n\nPlease transfer the amount and send a photo of the receipt.", price, user.Balance)
	return h.sendWithKeyboard(c, msg, h.cancelKeyboard())
}

func (h *CustomerHandler) handlePurchaseConfirmation(ctx context.Context, c telebot.Context, userID int64, state *models.UserState, text string) error {
	if text != commands.Confirm {
		return h.sendTextMessage(c, "Please confirm or cancel.")
	}
	if state.Payload == nil {
		h.clearState(userID)
		return h.sendWithKeyboard(c, "Session expired, please start over.", h.customerKeyboard())
	}
	payload := *state.Payload
	h.clearState(userID)

	price, activate, err := h.resolveOrder(ctx, userID, payload)
	if err != nil {
		h.logger.Errorf("Failed to resolve order %q for user %d: %v", payload, userID, err)
		return h.sendWithKeyboard(c, "That item is no longer available.", h.customerKeyboard())
	}

	if err := h.store.AdjustBalance(userID, -price); err != nil {
		h.logger.Errorf("Failed to charge user %d: %v", userID, err)
		return h.sendWithKeyboard(c, "Something went wrong, please try again later.", h.customerKeyboard())
	}

	purchase, err := activate()
	if err != nil {
		// Put the money back, the user got nothing
		if refundErr := h.store.AdjustBalance(userID, price); refundErr != nil {
			h.logger.Errorf("Failed to refund user %d after provisioning failure: %v", userID, refundErr)
		}
		h.logger.Errorf("Provisioning failed for user %d: %v", userID, err)
		return h.sendWithKeyboard(c, "Provisioning failed, your wallet was not charged. Please try again later.", h.customerKeyboard())
	}

	return h.deliverPurchase(c, purchase)
}

func (h *CustomerHandler) handleReceiptPhoto(c telebot.Context, userID int64, state *models.UserState) error {
	photo := c.Message().Photo
	if photo == nil {
		return h.sendTextMessage(c, "Please send a photo of the receipt.")
	}
	if state.Payload == nil {
		h.clearState(userID)
		return h.sendWithKeyboard(c, "Session expired, please start over.", h.customerKeyboard())
	}

	payment, err := h.buildPayment(userID, *state.Payload, photo.FileID)
	if err != nil {
		h.clearState(userID)
		h.logger.Errorf("Failed to build payment for user %d: %v", userID, err)
		return h.sendWithKeyboard(c, "That item is no longer available.", h.customerKeyboard())
	}
	if err := h.store.CreatePayment(payment); err != nil {
		h.logger.Errorf("Failed to record payment for user %d: %v", userID, err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}

	h.clearState(userID)
	h.notifyAdmins(c, fmt.Sprintf("New receipt #%d from user %d, amount %d. Use %s to review.",
		payment.ID, userID, payment.Amount, commands.PendingReceipts))
	return h.sendWithKeyboard(c, "Receipt received. You will be notified once it is reviewed.", h.customerKeyboard())
}

func (h *CustomerHandler) showServices(c telebot.Context, userID int64) error {
	purchases, err := h.store.ListUserPurchases(userID)
	if err != nil {
		h.logger.Errorf("Failed to list purchases for user %d: %v", userID, err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	if len(purchases) == 0 {
		return h.sendTextMessage(c, "You have no services yet.")
	}

	var sb strings.Builder
	sb.WriteString("Your services:\n\n")
	for _, p := range purchases {
		status := "active"
		if !p.Active {
			status = "inactive"
		}
		sb.WriteString(fmt.Sprintf("%d. %s - %s - quota %s - expires %s\n",
			p.ID, p.BaseLabel, status, helpers.FormatTrafficGB(p.TotalBytes), helpers.FormatExpiry(p.ExpiryTime)))
	}
	return h.sendTextMessage(c, sb.String())
}

func (h *CustomerHandler) showWallet(c telebot.Context, userID int64) error {
	user, err := h.store.GetOrCreateUser(userID, c.Sender().Username)
	if err != nil {
		h.logger.Errorf("Failed to load user %d: %v", userID, err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	return h.sendTextMessage(c, fmt.Sprintf("Wallet balance: %d", user.Balance))
}

func (h *CustomerHandler) startServiceSelection(c telebot.Context, userID int64, mode string) error {
	purchases, err := h.store.ListUserPurchases(userID)
	if err != nil {
		h.logger.Errorf("Failed to list purchases for user %d: %v", userID, err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	if len(purchases) == 0 {
		return h.sendTextMessage(c, "You have no services yet.")
	}

	var sb strings.Builder
	sb.WriteString("Your services:\n\n")
	for _, p := range purchases {
		sb.WriteString(fmt.Sprintf("%d. %s - expires %s\n", p.ID, p.BaseLabel, helpers.FormatExpiry(p.ExpiryTime)))
	}
	sb.WriteString("\nSend the service number.")

	h.stateService.SetState(userID, models.UserState{
		State:   models.AwaitingServiceSelection,
		Payload: stringPtr(mode),
	})
	return h.sendWithKeyboard(c, sb.String(), h.cancelKeyboard())
}

func (h *CustomerHandler) handleServiceSelection(c telebot.Context, userID int64, state *models.UserState, text string) error {
	purchaseID, ok := parseSelection(text)
	if !ok {
		return h.sendTextMessage(c, "Please send a service number.")
	}
	purchase, err := h.store.GetPurchase(purchaseID)
	if err != nil {
		h.logger.Errorf("Failed to load purchase %d: %v", purchaseID, err)
		return h.sendTextMessage(c, "Something went wrong, please try again later.")
	}
	if purchase == nil || purchase.UserID != userID {
		return h.sendTextMessage(c, "That service was not found.")
	}

	mode := "link"
	if state.Payload != nil {
		mode = *state.Payload
	}
	h.clearState(userID)

	url := h.orderService.SubscriptionURL(purchase)
	if mode == "qr" {
		if err := h.sendQRCode(c, url, purchase.BaseLabel); err != nil {
			h.logger.Errorf("Failed to send QR code: %v", err)
			return h.sendTextMessage(c, url)
		}
		return h.sendWithKeyboard(c, "Scan the QR code to import your subscription.", h.customerKeyboard())
	}
	return h.sendWithKeyboard(c, "Your subscription link:\n"+url, h.customerKeyboard())
}

func (h *CustomerHandler) deliverPurchase(c telebot.Context, purchase *models.Purchase) error {
	url := h.orderService.SubscriptionURL(purchase)
	msg := fmt.Sprintf("Your service is ready!\n\nSubscription link:\n%s\n\nQuota: %s\nExpires: %s",
		url, helpers.FormatTrafficGB(purchase.TotalBytes), helpers.FormatExpiry(purchase.ExpiryTime))
	return h.sendWithKeyboard(c, msg, h.customerKeyboard())
}

// resolveOrder maps an order payload to its price and an activation closure
func (h *CustomerHandler) resolveOrder(ctx context.Context, userID int64, payload string) (int64, func() (*models.Purchase, error), error) {
	parts := strings.Split(payload, ":")
	switch {
	case len(parts) == 2 && parts[0] == "plan":
		id, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return 0, nil, err
		}
		plan, err := h.store.GetPlan(uint(id))
		if err != nil {
			return 0, nil, err
		}
		if plan == nil || !plan.Active {
			return 0, nil, fmt.Errorf("plan %d unavailable", id)
		}
		return plan.Price, func() (*models.Purchase, error) {
			return h.orderService.ActivatePlanPurchase(ctx, userID, *plan)
		}, nil

	case len(parts) == 3 && parts[0] == "profile":
		id, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return 0, nil, err
		}
		volumeGB, err := strconv.Atoi(parts[2])
		if err != nil {
			return 0, nil, err
		}
		profile, err := h.store.GetProfile(uint(id))
		if err != nil {
			return 0, nil, err
		}
		if profile == nil || !profile.Active {
			return 0, nil, fmt.Errorf("profile %d unavailable", id)
		}
		return profile.PricePerGB * int64(volumeGB), func() (*models.Purchase, error) {
			return h.orderService.ActivateProfilePurchase(ctx, userID, *profile, volumeGB)
		}, nil
	}
	return 0, nil, fmt.Errorf("malformed order payload %q", payload)
}

func (h *CustomerHandler) buildPayment(userID int64, payload string, receiptFileID string) (*models.Payment, error) {
	parts := strings.Split(payload, ":")
	switch {
	case len(parts) == 2 && parts[0] == "plan":
		id, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, err
		}
		plan, err := h.store.GetPlan(uint(id))
		if err != nil {
			return nil, err
		}
		if plan == nil || !plan.Active {
			return nil, fmt.Errorf("plan %d unavailable", id)
		}
		planID := uint(id)
		return &models.Payment{
			UserID:        userID,
			Amount:        plan.Price,
			PlanID:        &planID,
			ReceiptFileID: receiptFileID,
			Status:        models.PaymentPending,
		}, nil

	case len(parts) == 3 && parts[0] == "profile":
		id, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, err
		}
		volumeGB, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, err
		}
		profile, err := h.store.GetProfile(uint(id))
		if err != nil {
			return nil, err
		}
		if profile == nil || !profile.Active {
			return nil, fmt.Errorf("profile %d unavailable", id)
		}
		profileID := uint(id)
		return &models.Payment{
			UserID:        userID,
			Amount:        profile.PricePerGB * int64(volumeGB),
			ProfileID:     &profileID,
			VolumeGB:      volumeGB,
			ReceiptFileID: receiptFileID,
			Status:        models.PaymentPending,
		}, nil
	}
	return nil, fmt.Errorf("malformed order payload %q", payload)
}

func parsePayloadID(payload, prefix string) (uint, bool) {
	parts := strings.Split(payload, ":")
	if len(parts) < 2 || parts[0] != prefix {
		return 0, false
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func stringPtr(s string) *string {
	return &s
}
