package web

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/services"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/storage"
)

func testFeedServer(t *testing.T) (*Server, *storage.Store) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("open store failed: %v", err)
	}
	subService := services.NewSubscriptionService(store, logger)
	return NewServer(":0", subService, logger), store
}

func TestHandleSubNotFound(t *testing.T) {
	server, _ := testFeedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/sub/unknown", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleSubRendersFeed(t *testing.T) {
	server, store := testFeedServer(t)

	serverID := uint(1)
	purchase := &models.Purchase{
		UserID:   42,
		ServerID: &serverID,
		SubID:    "webtest000000001",
		Configs:  models.StringList{"vless://token@h.example.com:443?encryption=none&security=none&type=tcp#l"},
		Active:   true,
	}
	if err := store.CreatePurchase(purchase); err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/sub/webtest000000001", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}

	decoded, err := base64.StdEncoding.DecodeString(rec.Body.String())
	if err != nil {
		t.Fatalf("body is not valid base64: %v", err)
	}
	if string(decoded) != purchase.Configs[0] {
		t.Fatalf("unexpected feed body: %s", decoded)
	}
}
