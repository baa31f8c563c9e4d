package links

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/streams"
)

func realityTCPParams() streams.StreamParams {
	return streams.StreamParams{
		Network:  "tcp",
		Security: "reality",
		Reality: streams.RealityParams{
			PublicKey:   "pbk-value",
			Fingerprint: "chrome",
			ShortIDs:    []string{"ab12", "cd34"},
			ServerNames: []string{"a.com", "b.com"},
			SpiderX:     "/",
		},
	}
}

func mustParseURI(t *testing.T, uri string) *url.URL {
	t.Helper()
	u, err := url.Parse(uri)
	if err != nil {
		t.Fatalf("parse uri %q failed: %v", uri, err)
	}
	return u
}

func TestBuildVlessReality(t *testing.T) {
	uri := BuildVless("11111111-2222-3333-4444-555555555555", "u42-ab12-5", realityTCPParams(), 443, "vpn.example.com", "xtls-rprx-vision")
	u := mustParseURI(t, uri)

	if u.Scheme != "vless" {
		t.Fatalf("unexpected scheme: %s", u.Scheme)
	}
	if u.User.Username() != "11111111-2222-3333-4444-555555555555" {
		t.Fatalf("unexpected user: %s", u.User.Username())
	}
	if u.Host != "vpn.example.com:443" {
		t.Fatalf("unexpected host: %s", u.Host)
	}
	if u.Fragment != "u42-ab12-5" {
		t.Fatalf("unexpected fragment: %s", u.Fragment)
	}

	q := u.Query()
	want := map[string]string{
		"encryption": "none",
		"type":       "tcp",
		"security":   "reality",
		"sni":        "a.com",
		"pbk":        "pbk-value",
		"fp":         "chrome",
		"sid":        "ab12",
		"spx":        "/",
		"flow":       "xtls-rprx-vision",
	}
	for key, value := range want {
		if got := q.Get(key); got != value {
			t.Fatalf("query %s = %q, want %q", key, got, value)
		}
	}
	if len(q) != len(want) {
		t.Fatalf("unexpected extra query params: %v", q)
	}
}

func TestBuildVlessTLSWebSocket(t *testing.T) {
	p := streams.StreamParams{
		Network:  "ws",
		Security: "tls",
		WS:       streams.WSParams{Path: "/x", Host: "cdn.example.com"},
	}
	uri := BuildVless("uuid-1", "label", p, 8443, "vpn.example.com", "")
	q := mustParseURI(t, uri).Query()

	if q.Get("type") != "ws" || q.Get("path") != "/x" || q.Get("host") != "cdn.example.com" {
		t.Fatalf("unexpected transport params: %v", q)
	}
	// No explicit serverName, so the SNI falls back to the server address
	if q.Get("sni") != "vpn.example.com" {
		t.Fatalf("sni = %q, want fallback to host", q.Get("sni"))
	}
	if q.Has("flow") {
		t.Fatalf("flow must not be emitted when empty")
	}
}

func TestBuildTrojanSecurityNone(t *testing.T) {
	p := streams.StreamParams{Network: "tcp", Security: "none"}
	uri := BuildTrojan("secret-pw", "label", p, 443, "vpn.example.com", "")
	u := mustParseURI(t, uri)

	if u.Scheme != "trojan" || u.User.Username() != "secret-pw" {
		t.Fatalf("unexpected identity part: %s", uri)
	}
	q := u.Query()
	if q.Get("security") != "none" {
		t.Fatalf("security = %q, want none", q.Get("security"))
	}
	if q.Has("encryption") {
		t.Fatalf("trojan must not carry an encryption param")
	}
	if q.Has("flow") {
		t.Fatalf("flow must not be emitted when empty")
	}
}

func TestBuildersRejectMissingInputs(t *testing.T) {
	p := streams.StreamParams{Network: "tcp", Security: "none"}
	cases := []struct {
		name string
		uri  string
	}{
		{"vless no uuid", BuildVless("", "l", p, 443, "h", "")},
		{"vless no host", BuildVless("uuid", "l", p, 443, "", "")},
		{"vless no port", BuildVless("uuid", "l", p, 0, "h", "")},
		{"vmess no uuid", BuildVmess("", "l", p, 443, "h")},
		{"trojan no password", BuildTrojan("", "l", p, 443, "h", "")},
	}
	for _, tc := range cases {
		if tc.uri != "" {
			t.Fatalf("%s: got %q, want empty", tc.name, tc.uri)
		}
	}
}

func TestNoEmptyQueryParams(t *testing.T) {
	p := streams.StreamParams{
		Network:  "ws",
		Security: "tls",
		WS:       streams.WSParams{Path: "/x"},
	}
	uri := BuildVless("uuid-1", "label", p, 443, "vpn.example.com", "")
	q := mustParseURI(t, uri).Query()

	for _, key := range []string{"host", "fp", "ech", "alpn", "allowInsecure", "utls"} {
		if q.Has(key) {
			t.Fatalf("param %s must not be emitted when empty or false", key)
		}
	}
}

func TestTLSBooleanFlags(t *testing.T) {
	p := streams.StreamParams{
		Network:  "tcp",
		Security: "tls",
		TLS:      streams.TLSParams{ServerName: "sni.example.com", AllowInsecure: true, UTLS: true},
	}
	q := mustParseURI(t, BuildVless("uuid-1", "l", p, 443, "h.example.com", "")).Query()

	if q.Get("allowInsecure") != "true" || q.Get("utls") != "true" {
		t.Fatalf("boolean flags must be the literal \"true\": %v", q)
	}
}

func TestBuildVlessDeterministic(t *testing.T) {
	p := realityTCPParams()
	first := BuildVless("uuid-1", "label", p, 443, "vpn.example.com", "xtls-rprx-vision")
	for i := 0; i < 5; i++ {
		if got := BuildVless("uuid-1", "label", p, 443, "vpn.example.com", "xtls-rprx-vision"); got != first {
			t.Fatalf("non-deterministic output:\n%s\n%s", first, got)
		}
	}
}

func TestBuildVmess(t *testing.T) {
	p := streams.StreamParams{
		Network:  "ws",
		Security: "tls",
		WS:       streams.WSParams{Path: "/x", Host: "cdn.example.com"},
	}
	uri := BuildVmess("uuid-9", "label-1", p, 2053, "vpn.example.com")
	if !strings.HasPrefix(uri, "vmess://") {
		t.Fatalf("unexpected scheme: %s", uri)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "vmess://"))
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	var cfg map[string]string
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	want := map[string]string{
		"v":    "2",
		"ps":   "label-1",
		"add":  "vpn.example.com",
		"port": "2053",
		"id":   "uuid-9",
		"aid":  "0",
		"net":  "ws",
		"type": "none",
		"path": "/x",
		"host": "cdn.example.com",
		"tls":  "tls",
		"sni":  "vpn.example.com",
	}
	for key, value := range want {
		if cfg[key] != value {
			t.Fatalf("field %s = %q, want %q", key, cfg[key], value)
		}
	}
	if _, ok := cfg["pbk"]; ok {
		t.Fatalf("reality fields must not be present for tls")
	}
}

func TestBuildVmessGRPCMulti(t *testing.T) {
	p := streams.StreamParams{
		Network:  "grpc",
		Security: "none",
		GRPC:     streams.GRPCParams{ServiceName: "svc", MultiMode: true},
	}
	uri := BuildVmess("uuid-9", "l", p, 443, "h.example.com")
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "vmess://"))
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	var cfg map[string]string
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if cfg["path"] != "svc" || cfg["type"] != "multi" || cfg["tls"] != "none" {
		t.Fatalf("unexpected grpc fields: %v", cfg)
	}
}

func TestHostFromSubBase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://sub.example.com:2096/sub", "sub.example.com"},
		{"https://sub.example.com", "sub.example.com"},
		{"sub.example.com:8443", "sub.example.com"},
		{"sub.example.com/some/path", "sub.example.com"},
		{"sub.example.com", "sub.example.com"},
		{"  https://sub.example.com:2096  ", "sub.example.com"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := HostFromSubBase(tc.in); got != tc.want {
			t.Fatalf("HostFromSubBase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
