package services

import (
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/aliafrazeh/alamor-vpn-bot/internal/errors"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/storage"
)

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"), testLogger())
	if err != nil {
		t.Fatalf("open store failed: %v", err)
	}
	return store
}

func decodeFeed(t *testing.T, payload []byte) []string {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(string(payload))
	if err != nil {
		t.Fatalf("feed payload is not valid base64: %v", err)
	}
	return strings.Split(string(data), "\n")
}

func TestRenderFeedServerBound(t *testing.T) {
	store := testStore(t)
	svc := NewSubscriptionService(store, testLogger())

	serverID := uint(1)
	purchase := &models.Purchase{
		UserID:    42,
		ServerID:  &serverID,
		SubID:     "feedtest00000001",
		Tokens:    models.StringList{"token-1"},
		BaseLabel: "u42-ab12",
		Configs: models.StringList{
			"vless://token-1@alpha.example.com:443?encryption=none&security=none&type=tcp#u42-ab12-1",
			"trojan://token-1@alpha.example.com:8443?security=none&type=tcp#u42-ab12-2",
		},
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := store.CreatePurchase(purchase); err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}

	payload, err := svc.RenderFeed("feedtest00000001")
	if err != nil {
		t.Fatalf("render feed failed: %v", err)
	}
	lines := decodeFeed(t, payload)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != purchase.Configs[0] || lines[1] != purchase.Configs[1] {
		t.Fatalf("feed does not replay stored configs verbatim:\n%v", lines)
	}
}

func TestRenderFeedUnknownSubID(t *testing.T) {
	svc := NewSubscriptionService(testStore(t), testLogger())

	if _, err := svc.RenderFeed("does-not-exist"); !errors.Is(err, apperrors.ErrPurchaseNotFound) {
		t.Fatalf("expected ErrPurchaseNotFound, got %v", err)
	}
}

func TestRenderFeedInactivePurchase(t *testing.T) {
	store := testStore(t)
	svc := NewSubscriptionService(store, testLogger())

	serverID := uint(1)
	purchase := &models.Purchase{
		UserID:   42,
		ServerID: &serverID,
		SubID:    "feedtest00000002",
		Configs:  models.StringList{"vless://x@h:443?type=tcp#l"},
		Active:   true,
	}
	if err := store.CreatePurchase(purchase); err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}
	if err := store.DeactivatePurchase(purchase.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	if _, err := svc.RenderFeed("feedtest00000002"); !errors.Is(err, apperrors.ErrPurchaseNotFound) {
		t.Fatalf("expected ErrPurchaseNotFound for inactive purchase, got %v", err)
	}
}

func TestRenderFeedProfileRerendersTemplates(t *testing.T) {
	store := testStore(t)
	svc := NewSubscriptionService(store, testLogger())

	server := testServer(0, "alpha")
	if err := store.SaveServer(&server); err != nil {
		t.Fatalf("save server failed: %v", err)
	}
	profile := models.Profile{Name: "global", PricePerGB: 1000, DurationDays: 30, Active: true}
	if err := store.SaveProfile(&profile); err != nil {
		t.Fatalf("save profile failed: %v", err)
	}

	realitySettings := func(shortID string) string {
		return `{"network":"tcp","security":"reality",` +
			`"realitySettings":{"serverNames":["a.com"],"shortIds":["` + shortID + `"],"settings":{"publicKey":"pbk"}}}`
	}
	templates := []models.ProfileInbound{{
		ProfileID:      profile.ID,
		ServerID:       server.ID,
		InboundID:      5,
		Protocol:       "vless",
		Port:           443,
		StreamSettings: realitySettings("old1"),
		SyncedAt:       time.Now(),
	}}
	if err := store.ReplaceProfileInbounds(profile.ID, templates); err != nil {
		t.Fatalf("seed templates failed: %v", err)
	}

	purchase := &models.Purchase{
		UserID:    42,
		ProfileID: &profile.ID,
		SubID:     "feedtest00000003",
		Tokens:    models.StringList{"token-1"},
		BaseLabel: "u42-ab12",
		Active:    true,
	}
	if err := store.CreatePurchase(purchase); err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}

	payload, err := svc.RenderFeed("feedtest00000003")
	if err != nil {
		t.Fatalf("render feed failed: %v", err)
	}
	first := decodeFeed(t, payload)
	if len(first) != 1 || !strings.Contains(first[0], "sid=old1") {
		t.Fatalf("feed not rendered from template: %v", first)
	}
	if !strings.Contains(first[0], "token-1@alpha.example.com:443") {
		t.Fatalf("feed must use the stored token and the server's public host: %v", first)
	}

	// A sync rotates the short id; the next render must pick it up without
	// re-provisioning
	templates[0].StreamSettings = realitySettings("new2")
	if err := store.ReplaceProfileInbounds(profile.ID, templates); err != nil {
		t.Fatalf("refresh templates failed: %v", err)
	}

	payload, err = svc.RenderFeed("feedtest00000003")
	if err != nil {
		t.Fatalf("render feed after sync failed: %v", err)
	}
	second := decodeFeed(t, payload)
	if len(second) != 1 || !strings.Contains(second[0], "sid=new2") {
		t.Fatalf("feed did not pick up rotated settings: %v", second)
	}
}

func TestRenderFeedEmptyConfigs(t *testing.T) {
	store := testStore(t)
	svc := NewSubscriptionService(store, testLogger())

	serverID := uint(1)
	purchase := &models.Purchase{
		UserID:   42,
		ServerID: &serverID,
		SubID:    "feedtest00000004",
		Active:   true,
	}
	if err := store.CreatePurchase(purchase); err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}

	if _, err := svc.RenderFeed("feedtest00000004"); !errors.Is(err, apperrors.ErrNoConfigurations) {
		t.Fatalf("expected ErrNoConfigurations, got %v", err)
	}
}
