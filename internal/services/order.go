package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/aliafrazeh/alamor-vpn-bot/internal/errors"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/helpers"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/storage"
)

// OrderService turns paid orders into provisioned purchases
type OrderService struct {
	store       *storage.Store
	provisioner *Provisioner
	publicBase  string
	logger      *logrus.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *storage.Store, provisioner *Provisioner, publicBase string, logger *logrus.Logger) *OrderService {
	return &OrderService{
		store:       store,
		provisioner: provisioner,
		publicBase:  publicBase,
		logger:      logger,
	}
}

// ActivatePlanPurchase provisions a server-bound plan for a user and
// persists the purchase. A purchase record is written only when at least one
// configuration was rendered; total provisioning failure leaves no trace.
func (o *OrderService) ActivatePlanPurchase(ctx context.Context, userID int64, plan models.Plan) (*models.Purchase, error) {
	server, err := o.store.GetServer(plan.ServerID)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, &apperrors.ServerNotFoundError{ServerID: plan.ServerID}
	}

	targets, err := o.provisioner.ResolveServerTargets(ctx, *server)
	if err != nil {
		return nil, fmt.Errorf("resolve targets: %w", err)
	}

	configs, identity, err := o.provisioner.Provision(ctx, userID, targets, plan.VolumeGB, plan.DurationDays, "")
	if err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		UserID:     userID,
		ServerID:   &plan.ServerID,
		PlanID:     &plan.ID,
		SubID:      models.GenerateSubID(),
		Tokens:     identity.Tokens,
		BaseLabel:  identity.BaseLabel,
		Configs:    configs,
		TotalBytes: helpers.QuotaBytes(plan.VolumeGB),
		ExpiryTime: helpers.ExpiryMillis(time.Now(), plan.DurationDays),
		Active:     true,
		CreatedAt:  time.Now(),
	}
	if err := o.store.CreatePurchase(purchase); err != nil {
		return nil, fmt.Errorf("persist purchase: %w", err)
	}

	o.logger.Infof("Activated plan %d for user %d with %d configs", plan.ID, userID, len(configs))
	return purchase, nil
}

// ActivateProfilePurchase provisions a cross-server profile for a user at
// the requested traffic volume and persists the purchase
func (o *OrderService) ActivateProfilePurchase(ctx context.Context, userID int64, profile models.Profile, volumeGB int) (*models.Purchase, error) {
	targets, err := o.provisioner.ResolveProfileTargets(profile.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve targets: %w", err)
	}

	configs, identity, err := o.provisioner.Provision(ctx, userID, targets, volumeGB, profile.DurationDays, "")
	if err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		UserID:     userID,
		ProfileID:  &profile.ID,
		SubID:      models.GenerateSubID(),
		Tokens:     identity.Tokens,
		BaseLabel:  identity.BaseLabel,
		Configs:    configs,
		TotalBytes: helpers.QuotaBytes(volumeGB),
		ExpiryTime: helpers.ExpiryMillis(time.Now(), profile.DurationDays),
		Active:     true,
		CreatedAt:  time.Now(),
	}
	if err := o.store.CreatePurchase(purchase); err != nil {
		return nil, fmt.Errorf("persist purchase: %w", err)
	}

	o.logger.Infof("Activated profile %d (%d GB) for user %d with %d configs", profile.ID, volumeGB, userID, len(configs))
	return purchase, nil
}

// SubscriptionURL returns the feed URL handed to the purchase owner
func (o *OrderService) SubscriptionURL(purchase *models.Purchase) string {
	return fmt.Sprintf("%s/sub/%s", o.publicBase, purchase.SubID)
}
