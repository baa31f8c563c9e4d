package models

import "time"

// User represents a bot user, keyed by Telegram ID
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(64)" json:"username"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Payment review states
const (
	PaymentPending  = "pending"
	PaymentApproved = "approved"
	PaymentRejected = "rejected"
)

// Payment represents a card-to-card receipt awaiting admin review.
// Approval triggers provisioning of the referenced plan or profile.
type Payment struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID int64 `gorm:"index;not null" json:"user_id"`
	Amount int64 `json:"amount"`

	// Exactly one of PlanID or ProfileID is set; VolumeGB applies to profiles
	PlanID    *uint `json:"plan_id,omitempty"`
	ProfileID *uint `json:"profile_id,omitempty"`
	VolumeGB  int   `json:"volume_gb"`

	// ReceiptFileID is the Telegram file ID of the submitted receipt photo
	ReceiptFileID string `gorm:"type:varchar(128)" json:"receipt_file_id"`

	Status     string     `gorm:"type:varchar(16);default:pending;index" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}
