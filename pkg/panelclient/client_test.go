package panelclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakePanel emulates the x-ui API envelope over httptest
type fakePanel struct {
	t            *testing.T
	listPath     string
	listMethod   string
	inbounds     []models.Inbound
	loginCount   atomic.Int32
	expireOnce   atomic.Bool
	lastAddBody  map[string]interface{}
	addClientHit atomic.Int32
}

func (f *fakePanel) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		f.loginCount.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "x-ui", Value: "session-cookie"})
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	mux.HandleFunc(f.listPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != f.listMethod {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if f.expireOnce.CompareAndSwap(true, false) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "obj": f.inbounds})
	})
	return mux
}

func (f *fakePanel) addClientHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.addClientHit.Add(1)
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &f.lastAddBody)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}
}

func TestSanaeiListInbounds(t *testing.T) {
	panel := &fakePanel{
		t:          t,
		listPath:   "/panel/api/inbounds/list",
		listMethod: http.MethodGet,
		inbounds:   []models.Inbound{{ID: 3, Port: 443, Protocol: "vless", Enable: true}},
	}
	srv := httptest.NewServer(panel.handler())
	defer srv.Close()

	client := NewSanaeiClient(models.Server{Name: "test", APIURL: srv.URL}, testLogger())
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	inbounds, err := client.ListInbounds(context.Background())
	if err != nil {
		t.Fatalf("list inbounds failed: %v", err)
	}
	if len(inbounds) != 1 || inbounds[0].ID != 3 || inbounds[0].Protocol != "vless" {
		t.Fatalf("unexpected inbounds: %+v", inbounds)
	}
}

func TestAlirezaListUsesPost(t *testing.T) {
	panel := &fakePanel{
		t:          t,
		listPath:   "/xui/API/inbounds",
		listMethod: http.MethodPost,
		inbounds:   []models.Inbound{{ID: 1, Protocol: "trojan", Enable: true}},
	}
	srv := httptest.NewServer(panel.handler())
	defer srv.Close()

	client := NewAlirezaClient(models.Server{Name: "test", APIURL: srv.URL}, testLogger())
	inbounds, err := client.ListInbounds(context.Background())
	if err != nil {
		t.Fatalf("list inbounds failed: %v", err)
	}
	if len(inbounds) != 1 || inbounds[0].Protocol != "trojan" {
		t.Fatalf("unexpected inbounds: %+v", inbounds)
	}
}

func TestReloginOnExpiredSession(t *testing.T) {
	panel := &fakePanel{
		t:          t,
		listPath:   "/panel/api/inbounds/list",
		listMethod: http.MethodGet,
		inbounds:   []models.Inbound{{ID: 1, Enable: true}},
	}
	panel.expireOnce.Store(true)
	srv := httptest.NewServer(panel.handler())
	defer srv.Close()

	client := NewSanaeiClient(models.Server{Name: "test", APIURL: srv.URL}, testLogger())
	inbounds, err := client.ListInbounds(context.Background())
	if err != nil {
		t.Fatalf("list inbounds after session expiry failed: %v", err)
	}
	if len(inbounds) != 1 {
		t.Fatalf("unexpected inbounds: %+v", inbounds)
	}
	if got := panel.loginCount.Load(); got != 2 {
		t.Fatalf("login count = %d, want 2 (initial + re-login)", got)
	}
}

func TestAddClientPayloadShape(t *testing.T) {
	panel := &fakePanel{
		t:          t,
		listPath:   "/panel/api/inbounds/list",
		listMethod: http.MethodGet,
	}
	mux := http.NewServeMux()
	mux.Handle("/login", panel.handler())
	mux.HandleFunc("/panel/api/inbounds/addClient", panel.addClientHandler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewSanaeiClient(models.Server{Name: "test", APIURL: srv.URL}, testLogger())
	entry := models.Client{
		ID:         "token-1",
		Enable:     true,
		Email:      "u42-ab12-7",
		TotalGB:    1073741824,
		ExpiryTime: 1750000000000,
		TgID:       "42",
	}
	if err := client.AddClient(context.Background(), 7, entry); err != nil {
		t.Fatalf("add client failed: %v", err)
	}

	if panel.lastAddBody["id"] != float64(7) {
		t.Fatalf("unexpected inbound id in payload: %v", panel.lastAddBody["id"])
	}
	settings, ok := panel.lastAddBody["settings"].(string)
	if !ok {
		t.Fatalf("settings must travel as a JSON string, got %T", panel.lastAddBody["settings"])
	}
	var decoded struct {
		Clients []map[string]interface{} `json:"clients"`
	}
	if err := json.Unmarshal([]byte(settings), &decoded); err != nil {
		t.Fatalf("settings is not valid JSON: %v", err)
	}
	if len(decoded.Clients) != 1 {
		t.Fatalf("got %d clients, want 1", len(decoded.Clients))
	}
	got := decoded.Clients[0]
	if got["id"] != "token-1" || got["email"] != "u42-ab12-7" {
		t.Fatalf("unexpected client entry: %v", got)
	}
	if _, ok := got["password"]; ok {
		t.Fatalf("empty password must be dropped from the payload")
	}
	if _, ok := got["flow"]; ok {
		t.Fatalf("empty flow must be dropped from the payload")
	}
}
