package links

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/streams"
)

// vmessConfig is the record serialized into a vmess:// URI. Optional fields
// carry omitempty so empty values are dropped before serialization.
type vmessConfig struct {
	V    string `json:"v"`
	PS   string `json:"ps,omitempty"`
	Add  string `json:"add"`
	Port string `json:"port"`
	ID   string `json:"id"`
	Aid  string `json:"aid"`
	Net  string `json:"net,omitempty"`
	Type string `json:"type,omitempty"`
	Host string `json:"host,omitempty"`
	Path string `json:"path,omitempty"`
	TLS  string `json:"tls,omitempty"`
	SNI  string `json:"sni,omitempty"`
	ALPN string `json:"alpn,omitempty"`
	FP   string `json:"fp,omitempty"`
	ECH  string `json:"ech,omitempty"`
	PBK  string `json:"pbk,omitempty"`
	SID  string `json:"sid,omitempty"`
	SPX  string `json:"spx,omitempty"`
}

// BuildVmess renders a VMess connection URI: the parameter record is
// serialized to compact JSON and base64-encoded into vmess://<base64>.
func BuildVmess(uuid, label string, p streams.StreamParams, port int, host string) string {
	if uuid == "" || host == "" || port <= 0 {
		return ""
	}

	cfg := vmessConfig{
		V:    "2",
		PS:   label,
		Add:  host,
		Port: strconv.Itoa(port),
		ID:   uuid,
		Aid:  "0",
		Net:  p.Network,
		Type: "none",
	}

	switch p.Network {
	case "ws":
		cfg.Path = p.WS.Path
		cfg.Host = p.WS.Host
	case "http", "h2", "httpupgrade":
		cfg.Path = p.HTTP.Path
		cfg.Host = p.HTTP.Host
	case "grpc":
		cfg.Path = p.GRPC.ServiceName
		if p.GRPC.MultiMode {
			cfg.Type = "multi"
		}
	case "kcp", "mkcp":
		cfg.Path = p.KCP.Seed
		if p.KCP.HeaderType != "" {
			cfg.Type = p.KCP.HeaderType
		}
	case "quic":
		cfg.Path = p.QUIC.Key
		if p.QUIC.HeaderType != "" {
			cfg.Type = p.QUIC.HeaderType
		}
	}

	switch p.Security {
	case "tls":
		cfg.TLS = "tls"
		cfg.SNI = p.TLS.ServerName
		if cfg.SNI == "" {
			cfg.SNI = host
		}
		cfg.ALPN = strings.Join(p.TLS.ALPN, ",")
		cfg.FP = p.TLS.Fingerprint
		cfg.ECH = p.TLS.ECHConfigList
	case "reality":
		cfg.TLS = "reality"
		if len(p.Reality.ServerNames) > 0 {
			cfg.SNI = p.Reality.ServerNames[0]
		}
		cfg.PBK = p.Reality.PublicKey
		cfg.FP = p.Reality.Fingerprint
		if len(p.Reality.ShortIDs) > 0 {
			cfg.SID = p.Reality.ShortIDs[0]
		}
		cfg.SPX = p.Reality.SpiderX
	default:
		cfg.TLS = "none"
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	return "vmess://" + base64.StdEncoding.EncodeToString(data)
}
