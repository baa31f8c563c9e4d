package links

import (
	"net/url"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/streams"
)

// BuildTrojan renders a Trojan connection URI. The query grammar matches
// VLESS except that Trojan carries no encryption parameter.
func BuildTrojan(password, label string, p streams.StreamParams, port int, host, flow string) string {
	if password == "" || host == "" || port <= 0 {
		return ""
	}

	q := url.Values{}
	q.Set("type", p.Network)
	transportQuery(q, p)
	securityQuery(q, p, host)
	if flow != "" {
		q.Set("flow", flow)
	}

	u := url.URL{
		Scheme:   "trojan",
		User:     url.User(password),
		Host:     hostPort(host, port),
		RawQuery: q.Encode(),
		Fragment: label,
	}
	return u.String()
}
