package links

import (
	"net/url"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/streams"
)

// BuildVless renders a VLESS connection URI:
//
//	vless://<uuid>@<host>:<port>?encryption=none&security=..&type=..#<label>
//
// It returns "" when the identity, host or port is missing; the caller
// treats that as "this inbound could not be rendered" and moves on.
func BuildVless(uuid, label string, p streams.StreamParams, port int, host, flow string) string {
	if uuid == "" || host == "" || port <= 0 {
		return ""
	}

	q := url.Values{}
	q.Set("encryption", "none")
	q.Set("type", p.Network)
	transportQuery(q, p)
	securityQuery(q, p, host)
	if flow != "" {
		q.Set("flow", flow)
	}

	u := url.URL{
		Scheme:   "vless",
		User:     url.User(uuid),
		Host:     hostPort(host, port),
		RawQuery: q.Encode(),
		Fragment: label,
	}
	return u.String()
}
