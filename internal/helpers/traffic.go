package helpers

import (
	"fmt"
	"time"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/constants"
)

// QuotaBytes converts a plan volume in gigabytes to a byte quota.
// Zero or negative volume means unlimited (0).
func QuotaBytes(volumeGB int) int64 {
	if volumeGB <= 0 {
		return 0
	}
	return int64(volumeGB) * constants.BytesInGB
}

// ExpiryMillis computes the absolute expiry instant in Unix milliseconds for
// a duration in days. Zero or negative duration means unlimited (0).
func ExpiryMillis(now time.Time, durationDays int) int64 {
	if durationDays <= 0 {
		return 0
	}
	return now.UnixMilli() + int64(durationDays)*constants.MillisecondsInDay
}

// FormatTrafficGB formats a byte count as gigabytes for display
func FormatTrafficGB(bytes int64) string {
	return fmt.Sprintf("%.2f GB", float64(bytes)/constants.BytesInGB)
}

// FormatExpiry formats an expiry instant for display, with 0 as unlimited
func FormatExpiry(expiryMillis int64) string {
	if expiryMillis == 0 {
		return "∞"
	}
	return time.Unix(expiryMillis/1000, 0).Format(constants.DateFormat)
}
