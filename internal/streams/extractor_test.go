package streams

import (
	"io"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
)

func testExtractor() *Extractor {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewExtractor(logger)
}

func TestParseMalformedFallsBackToDefaults(t *testing.T) {
	e := testExtractor()
	for _, raw := range []string{"", "not-json", "[1,2]", "{broken"} {
		p := e.Parse(raw)
		if p.Network != "tcp" || p.Security != "none" {
			t.Fatalf("Parse(%q) = %s/%s, want tcp/none", raw, p.Network, p.Security)
		}
	}
}

func TestParseRealityTCP(t *testing.T) {
	raw := `{
		"network": "tcp",
		"security": "reality",
		"realitySettings": {
			"dest": "yahoo.com:443",
			"serverNames": ["a.com", "b.com"],
			"shortIds": ["ab12", "cd34"],
			"settings": {
				"publicKey": "pbk-value",
				"fingerprint": "chrome",
				"spiderX": "/"
			}
		}
	}`
	p := testExtractor().Parse(raw)

	if p.Network != "tcp" || p.Security != "reality" {
		t.Fatalf("unexpected network/security: %s/%s", p.Network, p.Security)
	}
	if !reflect.DeepEqual(p.Reality.ServerNames, []string{"a.com", "b.com"}) {
		t.Fatalf("unexpected serverNames: %v", p.Reality.ServerNames)
	}
	if !reflect.DeepEqual(p.Reality.ShortIDs, []string{"ab12", "cd34"}) {
		t.Fatalf("unexpected shortIds: %v", p.Reality.ShortIDs)
	}
	if p.Reality.PublicKey != "pbk-value" || p.Reality.Fingerprint != "chrome" || p.Reality.SpiderX != "/" {
		t.Fatalf("unexpected nested settings: %+v", p.Reality)
	}
	if p.Reality.Dest != "yahoo.com:443" {
		t.Fatalf("unexpected dest: %q", p.Reality.Dest)
	}
}

func TestParseRealityTopLevelKeys(t *testing.T) {
	// Some panel builds keep publicKey and friends at the top level of
	// realitySettings instead of a nested settings block
	raw := `{
		"network": "tcp",
		"security": "reality",
		"realitySettings": {
			"serverNames": ["x.com"],
			"shortIds": ["99ff"],
			"publicKey": "top-pbk",
			"fingerprint": "firefox"
		}
	}`
	p := testExtractor().Parse(raw)

	if p.Reality.PublicKey != "top-pbk" {
		t.Fatalf("unexpected publicKey: %q", p.Reality.PublicKey)
	}
	if p.Reality.Fingerprint != "firefox" {
		t.Fatalf("unexpected fingerprint: %q", p.Reality.Fingerprint)
	}
}

func TestParseTLSWebSocket(t *testing.T) {
	raw := `{
		"network": "ws",
		"security": "tls",
		"wsSettings": {
			"path": "/x",
			"headers": {"Host": "cdn.example.com"}
		},
		"tlsSettings": {
			"alpn": ["h2", "http/1.1"],
			"settings": {
				"fingerprint": "chrome",
				"allowInsecure": true
			}
		}
	}`
	p := testExtractor().Parse(raw)

	if p.Network != "ws" || p.Security != "tls" {
		t.Fatalf("unexpected network/security: %s/%s", p.Network, p.Security)
	}
	if p.WS.Path != "/x" || p.WS.Host != "cdn.example.com" {
		t.Fatalf("unexpected ws params: %+v", p.WS)
	}
	if p.TLS.ServerName != "" {
		t.Fatalf("expected empty serverName, got %q", p.TLS.ServerName)
	}
	if !reflect.DeepEqual(p.TLS.ALPN, []string{"h2", "http/1.1"}) {
		t.Fatalf("unexpected alpn: %v", p.TLS.ALPN)
	}
	if p.TLS.Fingerprint != "chrome" || !p.TLS.AllowInsecure {
		t.Fatalf("unexpected tls params: %+v", p.TLS)
	}
}

func TestParseGRPC(t *testing.T) {
	raw := `{
		"network": "grpc",
		"security": "none",
		"grpcSettings": {"serviceName": "svc", "multiMode": true}
	}`
	p := testExtractor().Parse(raw)

	if p.GRPC.ServiceName != "svc" || !p.GRPC.MultiMode {
		t.Fatalf("unexpected grpc params: %+v", p.GRPC)
	}
}

func TestParseHTTPHostList(t *testing.T) {
	raw := `{
		"network": "h2",
		"security": "tls",
		"httpSettings": {"path": "/feed", "host": ["first.example.com", "second.example.com"]},
		"tlsSettings": {"serverName": "sni.example.com"}
	}`
	p := testExtractor().Parse(raw)

	if p.HTTP.Path != "/feed" || p.HTTP.Host != "first.example.com" {
		t.Fatalf("unexpected http params: %+v", p.HTTP)
	}
	if p.TLS.ServerName != "sni.example.com" {
		t.Fatalf("unexpected serverName: %q", p.TLS.ServerName)
	}
}

func TestParseKCPAndQUIC(t *testing.T) {
	kcp := testExtractor().Parse(`{
		"network": "kcp",
		"kcpSettings": {"seed": "s33d", "header": {"type": "srtp"}}
	}`)
	if kcp.KCP.Seed != "s33d" || kcp.KCP.HeaderType != "srtp" {
		t.Fatalf("unexpected kcp params: %+v", kcp.KCP)
	}

	quic := testExtractor().Parse(`{
		"network": "quic",
		"quicSettings": {"security": "aes-128-gcm", "key": "k", "header": {"type": "wechat-video"}}
	}`)
	if quic.QUIC.Security != "aes-128-gcm" || quic.QUIC.Key != "k" || quic.QUIC.HeaderType != "wechat-video" {
		t.Fatalf("unexpected quic params: %+v", quic.QUIC)
	}
}
