package helpers

import (
	"strings"
	"testing"
	"time"
)

func TestNewBaseLabel(t *testing.T) {
	label := NewBaseLabel(42, "")
	if !strings.HasPrefix(label, "u42-") {
		t.Fatalf("label %q must start with the requester id", label)
	}
	suffix := strings.TrimPrefix(label, "u42-")
	if len(suffix) != 4 {
		t.Fatalf("suffix %q must be 4 characters", suffix)
	}

	custom := NewBaseLabel(42, "office")
	if !strings.HasPrefix(custom, "office-") {
		t.Fatalf("custom label %q must start with the custom prefix", custom)
	}
}

func TestInboundLabel(t *testing.T) {
	if got := InboundLabel("u42-ab12", 7); got != "u42-ab12-7" {
		t.Fatalf("InboundLabel = %q, want u42-ab12-7", got)
	}
}

func TestExtractBaseLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"u42-ab12-3", "u42-ab12"},
		{"u42-ab12-17", "u42-ab12"},
		{"u42-ab12", "u42-ab12"},
		{"office-ab12-5", "office-ab12"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := ExtractBaseLabel(tc.in); got != tc.want {
			t.Fatalf("ExtractBaseLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestQuotaBytes(t *testing.T) {
	if got := QuotaBytes(50); got != 50*1024*1024*1024 {
		t.Fatalf("QuotaBytes(50) = %d", got)
	}
	if got := QuotaBytes(0); got != 0 {
		t.Fatalf("QuotaBytes(0) = %d, want 0 (unlimited)", got)
	}
	if got := QuotaBytes(-3); got != 0 {
		t.Fatalf("QuotaBytes(-3) = %d, want 0", got)
	}
}

func TestExpiryMillis(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if got := ExpiryMillis(now, 30); got != now.UnixMilli()+30*24*60*60*1000 {
		t.Fatalf("ExpiryMillis(30) = %d", got)
	}
	if got := ExpiryMillis(now, 0); got != 0 {
		t.Fatalf("ExpiryMillis(0) = %d, want 0 (unlimited)", got)
	}
}
