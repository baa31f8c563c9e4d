package models

import (
	"crypto/rand"
	"database/sql/driver"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/constants"
)

// StringList stores an ordered list of strings as a JSON text column
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// Purchase represents an activated service owned by a user. Exactly one of
// ServerID or ProfileID is set: server-bound purchases replay the persisted
// Configs list, profile-bound purchases re-render from synced templates.
type Purchase struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	UserID    int64 `gorm:"index;not null" json:"user_id"`
	ServerID  *uint `gorm:"index" json:"server_id,omitempty"`
	ProfileID *uint `gorm:"index" json:"profile_id,omitempty"`
	PlanID    *uint `json:"plan_id,omitempty"`

	// SubID is the opaque identifier in the subscription URL
	SubID string `gorm:"type:varchar(32);uniqueIndex;not null" json:"sub_id"`

	// Tokens holds the identity tokens shared across all provisioned inbounds
	Tokens    StringList `gorm:"type:text" json:"tokens"`
	BaseLabel string     `gorm:"type:varchar(64)" json:"base_label"`

	// Configs is the ordered list of connection URIs rendered at provisioning time
	Configs StringList `gorm:"type:text" json:"configs"`

	TotalBytes int64     `json:"total_bytes"`
	ExpiryTime int64     `json:"expiry_time"`
	Active     bool      `gorm:"default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Token returns the purchase's identity token, or "" when none was recorded
func (p *Purchase) Token() string {
	if len(p.Tokens) == 0 {
		return ""
	}
	return p.Tokens[0]
}

// GenerateSubID generates a random subscription ID
func GenerateSubID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "sub_fallback"
	}

	b64 := base64.StdEncoding.EncodeToString(buf)
	b64 = strings.ReplaceAll(b64, "=", "")
	b64 = strings.ReplaceAll(b64, "+", "")
	b64 = strings.ReplaceAll(b64, "/", "")

	if len(b64) > constants.SubIDLength {
		b64 = b64[:constants.SubIDLength]
	}

	return b64
}
