package models

import "time"

// Plan represents a server-bound subscription plan
type Plan struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ServerID     uint   `gorm:"index;not null" json:"server_id"`
	Name         string `gorm:"type:varchar(64);not null" json:"name"`
	DurationDays int    `json:"duration_days"`
	VolumeGB     int    `json:"volume_gb"`
	Price        int64  `json:"price"`
	Active       bool   `gorm:"default:true" json:"active"`
}

// Profile represents a cross-server bundle of inbounds sold as one unit,
// priced per gigabyte of traffic volume
type Profile struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"type:varchar(64);not null" json:"name"`
	PricePerGB   int64  `json:"price_per_gb"`
	DurationDays int    `json:"duration_days"`
	Active       bool   `gorm:"default:true" json:"active"`
}

// ProfileInbound is a locally cached snapshot of a remote inbound's settings,
// refreshed out-of-band by the sync job. The subscription feed renders
// profile purchases from these rows instead of live panel calls.
type ProfileInbound struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProfileID      uint      `gorm:"index;not null" json:"profile_id"`
	ServerID       uint      `gorm:"index;not null" json:"server_id"`
	InboundID      int       `gorm:"not null" json:"inbound_id"`
	Protocol       string    `gorm:"type:varchar(16)" json:"protocol"`
	Port           int       `json:"port"`
	StreamSettings string    `gorm:"type:text" json:"stream_settings"`
	SyncedAt       time.Time `json:"synced_at"`
}
