package models

// Client represents a client entry submitted to a panel inbound.
// VLESS/VMess inbounds key clients by ID, Trojan by Password; the unused
// credential field stays empty and is dropped from the request payload.
type Client struct {
	ID         string `json:"id,omitempty"`
	Password   string `json:"password,omitempty"`
	Enable     bool   `json:"enable"`
	Flow       string `json:"flow,omitempty"`
	Email      string `json:"email"`
	TotalGB    int64  `json:"totalGB"`
	LimitIP    int    `json:"limitIp"`
	ExpiryTime int64  `json:"expiryTime"`
	TgID       string `json:"tgId"`
	SubID      string `json:"subId"`
}

// ToDictionary converts the client to a map for API requests
func (c *Client) ToDictionary() map[string]interface{} {
	result := map[string]interface{}{
		"enable":     c.Enable,
		"email":      c.Email,
		"totalGB":    c.TotalGB,
		"limitIp":    c.LimitIP,
		"expiryTime": c.ExpiryTime,
		"tgId":       c.TgID,
		"subId":      c.SubID,
	}

	if c.ID != "" {
		result["id"] = c.ID
	}
	if c.Password != "" {
		result["password"] = c.Password
	}
	if c.Flow != "" {
		result["flow"] = c.Flow
	}

	return result
}
