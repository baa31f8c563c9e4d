// Package links renders client identities and inbound stream parameters
// into protocol connection URIs consumable by proxy client apps.
package links

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/streams"
)

// HostFromSubBase derives the public server address from a subscription base
// address by stripping scheme, port and path. The panel API address is never
// used here: it is typically private, while the subscription base is the
// host clients connect to.
func HostFromSubBase(subBase string) string {
	subBase = strings.TrimSpace(subBase)
	if subBase == "" {
		return ""
	}

	if strings.Contains(subBase, "://") {
		if u, err := url.Parse(subBase); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}

	// Bare host, host:port or host/path forms
	host := subBase
	if i := strings.Index(host, "/"); i != -1 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// transportQuery fills query parameters for the active transport. Parameters
// with empty values are never emitted.
func transportQuery(q url.Values, p streams.StreamParams) {
	switch p.Network {
	case "ws":
		setNonEmpty(q, "path", p.WS.Path)
		setNonEmpty(q, "host", p.WS.Host)
	case "http", "h2", "httpupgrade":
		setNonEmpty(q, "path", p.HTTP.Path)
		setNonEmpty(q, "host", p.HTTP.Host)
	case "grpc":
		setNonEmpty(q, "serviceName", p.GRPC.ServiceName)
		if p.GRPC.MultiMode {
			q.Set("mode", "multi")
		}
	case "kcp", "mkcp":
		setNonEmpty(q, "headerType", p.KCP.HeaderType)
		setNonEmpty(q, "seed", p.KCP.Seed)
	case "quic":
		setNonEmpty(q, "quicSecurity", p.QUIC.Security)
		setNonEmpty(q, "key", p.QUIC.Key)
		setNonEmpty(q, "headerType", p.QUIC.HeaderType)
	}
}

// securityQuery fills query parameters for the active security layer.
// Reality takes its SNI from the first serverNames entry; TLS falls back to
// the server address when no explicit serverName is set. Boolean flags are
// emitted as literal "true" only when true.
func securityQuery(q url.Values, p streams.StreamParams, host string) {
	switch p.Security {
	case "tls":
		q.Set("security", "tls")
		sni := p.TLS.ServerName
		if sni == "" {
			sni = host
		}
		setNonEmpty(q, "sni", sni)
		if len(p.TLS.ALPN) > 0 {
			q.Set("alpn", strings.Join(p.TLS.ALPN, ","))
		}
		setNonEmpty(q, "fp", p.TLS.Fingerprint)
		setNonEmpty(q, "ech", p.TLS.ECHConfigList)
		if p.TLS.AllowInsecure {
			q.Set("allowInsecure", "true")
		}
		if p.TLS.UTLS {
			q.Set("utls", "true")
		}
	case "reality":
		q.Set("security", "reality")
		if len(p.Reality.ServerNames) > 0 {
			q.Set("sni", p.Reality.ServerNames[0])
		}
		setNonEmpty(q, "pbk", p.Reality.PublicKey)
		setNonEmpty(q, "fp", p.Reality.Fingerprint)
		if len(p.Reality.ShortIDs) > 0 {
			q.Set("sid", p.Reality.ShortIDs[0])
		}
		setNonEmpty(q, "spx", p.Reality.SpiderX)
	default:
		q.Set("security", "none")
	}
}

func setNonEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func hostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
