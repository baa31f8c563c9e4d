package streams

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// StreamParams is the normalized form of an inbound's transport/security
// settings. Only the groups relevant to the chosen Network/Security are
// populated; everything else stays at its zero value.
type StreamParams struct {
	Network  string
	Security string
	TLS      TLSParams
	Reality  RealityParams
	WS       WSParams
	HTTP     HTTPParams
	GRPC     GRPCParams
	KCP      KCPParams
	QUIC     QUICParams
}

// TLSParams holds TLS security settings
type TLSParams struct {
	ServerName    string
	ALPN          []string
	Fingerprint   string
	ECHConfigList string
	AllowInsecure bool
	UTLS          bool
}

// RealityParams holds Reality security settings
type RealityParams struct {
	Dest        string
	Fingerprint string
	PublicKey   string
	ShortIDs    []string
	SpiderX     string
	ServerNames []string
}

// WSParams holds WebSocket transport settings
type WSParams struct {
	Path string
	Host string
}

// HTTPParams holds http/h2/httpupgrade transport settings
type HTTPParams struct {
	Path   string
	Host   string
	Method string
}

// GRPCParams holds gRPC transport settings
type GRPCParams struct {
	ServiceName string
	MultiMode   bool
}

// KCPParams holds mKCP transport settings
type KCPParams struct {
	HeaderType string
	Seed       string
}

// QUICParams holds QUIC transport settings
type QUICParams struct {
	Security   string
	Key        string
	HeaderType string
}

// Extractor normalizes raw panel stream settings blobs
type Extractor struct {
	logger *logrus.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(logger *logrus.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Parse normalizes a raw streamSettings JSON blob. The blob is untrusted
// panel output: malformed input yields default params (tcp/none) with a
// logged warning so one broken inbound cannot abort a provisioning batch.
func (e *Extractor) Parse(raw string) StreamParams {
	params := StreamParams{
		Network:  "tcp",
		Security: "none",
	}

	var stream map[string]any
	if err := json.Unmarshal([]byte(raw), &stream); err != nil {
		e.logger.Warnf("Failed to parse stream settings, using defaults: %v", err)
		return params
	}

	if network, ok := stream["network"].(string); ok && network != "" {
		params.Network = network
	}
	if security, ok := stream["security"].(string); ok && security != "" {
		params.Security = security
	}

	switch params.Network {
	case "ws":
		ws, _ := stream["wsSettings"].(map[string]any)
		params.WS.Path, _ = ws["path"].(string)
		params.WS.Host = extractHost(ws)
	case "http", "h2":
		http, _ := stream["httpSettings"].(map[string]any)
		params.HTTP.Path, _ = http["path"].(string)
		params.HTTP.Host = extractHTTPHost(http)
		params.HTTP.Method, _ = http["method"].(string)
	case "httpupgrade":
		hu, _ := stream["httpupgradeSettings"].(map[string]any)
		params.HTTP.Path, _ = hu["path"].(string)
		params.HTTP.Host = extractHost(hu)
		params.HTTP.Method, _ = hu["method"].(string)
	case "grpc":
		grpc, _ := stream["grpcSettings"].(map[string]any)
		params.GRPC.ServiceName, _ = grpc["serviceName"].(string)
		params.GRPC.MultiMode, _ = grpc["multiMode"].(bool)
	case "kcp", "mkcp":
		kcp, _ := stream["kcpSettings"].(map[string]any)
		header, _ := kcp["header"].(map[string]any)
		params.KCP.HeaderType, _ = header["type"].(string)
		params.KCP.Seed, _ = kcp["seed"].(string)
	case "quic":
		quic, _ := stream["quicSettings"].(map[string]any)
		header, _ := quic["header"].(map[string]any)
		params.QUIC.Security, _ = quic["security"].(string)
		params.QUIC.Key, _ = quic["key"].(string)
		params.QUIC.HeaderType, _ = header["type"].(string)
	}

	switch params.Security {
	case "tls":
		tlsSetting, _ := stream["tlsSettings"].(map[string]any)
		if sni, ok := searchKey(tlsSetting, "serverName"); ok {
			params.TLS.ServerName, _ = sni.(string)
		}
		if alpns, ok := tlsSetting["alpn"].([]any); ok {
			for _, a := range alpns {
				if s, ok := a.(string); ok && s != "" {
					params.TLS.ALPN = append(params.TLS.ALPN, s)
				}
			}
		}
		if ech, ok := searchKey(tlsSetting, "echConfigList"); ok {
			params.TLS.ECHConfigList, _ = ech.(string)
		}
		inner, _ := searchKey(tlsSetting, "settings")
		if fp, ok := searchKey(inner, "fingerprint"); ok {
			params.TLS.Fingerprint, _ = fp.(string)
		}
		if insecure, ok := searchKey(inner, "allowInsecure"); ok {
			params.TLS.AllowInsecure, _ = insecure.(bool)
		}
		if utls, ok := searchKey(inner, "utls"); ok {
			params.TLS.UTLS, _ = utls.(bool)
		}
	case "reality":
		realitySetting, _ := stream["realitySettings"].(map[string]any)
		params.Reality.Dest, _ = realitySetting["dest"].(string)
		if names, ok := searchKey(realitySetting, "serverNames"); ok {
			params.Reality.ServerNames = toStringSlice(names)
		}
		if sids, ok := searchKey(realitySetting, "shortIds"); ok {
			params.Reality.ShortIDs = toStringSlice(sids)
		}
		inner, _ := searchKey(realitySetting, "settings")
		if pbk, ok := searchKey(inner, "publicKey"); ok {
			params.Reality.PublicKey, _ = pbk.(string)
		}
		if fp, ok := searchKey(inner, "fingerprint"); ok {
			params.Reality.Fingerprint, _ = fp.(string)
		}
		if spx, ok := searchKey(inner, "spiderX"); ok {
			params.Reality.SpiderX, _ = spx.(string)
		}
	}

	return params
}

// searchKey looks up a key at the top level of obj, then one level deeper.
// Panel vendors disagree on whether fields live in the settings object or a
// nested "settings" block, so both shapes must resolve.
func searchKey(obj any, key string) (any, bool) {
	m, ok := obj.(map[string]any)
	if !ok {
		return nil, false
	}
	if v, ok := m[key]; ok {
		return v, true
	}
	for _, v := range m {
		if nested, ok := v.(map[string]any); ok {
			if inner, ok := nested[key]; ok {
				return inner, true
			}
		}
	}
	return nil, false
}

// extractHost reads a host from a transport settings block, falling back to
// the Host entry of a headers map
func extractHost(settings map[string]any) string {
	if host, ok := settings["host"].(string); ok && host != "" {
		return host
	}
	headers, _ := settings["headers"].(map[string]any)
	for k, v := range headers {
		if k == "host" || k == "Host" {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// extractHTTPHost reads the host of an httpSettings block, where host is a list
func extractHTTPHost(settings map[string]any) string {
	if host, ok := settings["host"].(string); ok && host != "" {
		return host
	}
	if hosts, ok := settings["host"].([]any); ok && len(hosts) > 0 {
		if s, ok := hosts[0].(string); ok {
			return s
		}
	}
	return ""
}

func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
