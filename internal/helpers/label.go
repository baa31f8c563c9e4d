package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/constants"
)

// NewBaseLabel builds the base client label for a purchase: the requester's
// identifier plus a short random suffix. The requester id keeps repeated
// purchases traceable in panel UIs; the suffix avoids collisions across them.
func NewBaseLabel(requesterID int64, custom string) string {
	if custom != "" {
		return fmt.Sprintf("%s%s%s", custom, constants.LabelSeparator, randomSuffix())
	}
	return fmt.Sprintf("u%d%s%s", requesterID, constants.LabelSeparator, randomSuffix())
}

// InboundLabel disambiguates a base label for one inbound. Panels enforce
// label uniqueness per inbound namespace, so every (purchase, inbound) pair
// gets its own label.
func InboundLabel(baseLabel string, inboundID int) string {
	return fmt.Sprintf("%s%s%d", baseLabel, constants.LabelSeparator, inboundID)
}

// ExtractBaseLabel strips the trailing inbound-number suffix from a label.
// "u42-ab12-3" -> "u42-ab12", "u42-ab12" -> "u42-ab12".
func ExtractBaseLabel(label string) string {
	for i := len(label) - 1; i >= 0; i-- {
		if label[i] == constants.LabelSeparator[0] {
			suffix := label[i+1:]
			if len(suffix) > 0 && IsNumeric(suffix) {
				return label[:i]
			}
		}
	}
	return label
}

// IsNumeric checks if a string contains only digits
func IsNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func randomSuffix() string {
	buf := make([]byte, constants.LabelSuffixLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "0000"
	}
	return hex.EncodeToString(buf)
}
