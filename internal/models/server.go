package models

// Panel type tags stored on Server records; the panel client factory
// selects the vendor implementation by this value.
const (
	PanelTypeSanaei  = "sanaei"
	PanelTypeAlireza = "alireza"
)

// Server represents a remote panel server
type Server struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(64);not null" json:"name"`
	PanelType string `gorm:"type:varchar(16);not null;default:sanaei" json:"panel_type"`
	// APIURL is the private panel admin endpoint used for API calls
	APIURL   string `gorm:"type:varchar(255);not null" json:"api_url"`
	Username string `gorm:"type:varchar(64);not null" json:"username"`
	Password string `gorm:"type:varchar(64);not null" json:"password"`
	// SubBase is the public-facing subscription base address; the host part
	// of connection URIs is derived from it, never from APIURL
	SubBase string `gorm:"type:varchar(255)" json:"sub_base"`
	Active  bool   `gorm:"default:true" json:"active"`
}
