package commands

// TelegramCommands contains all commands for the Telegram bot
const (
	// Main commands
	Start  = "/start"
	Cancel = "Cancel"

	// Navigation commands
	ReturnToMainMenu = "Return to Main Menu"

	// Customer commands
	BuyPlan     = "Buy Service"
	BuyProfile  = "Buy Profile"
	MyServices  = "My Services"
	Wallet      = "Wallet"
	GetSubLink  = "Get Link"
	GetQRCode   = "Get QR"

	// Administrator commands
	PendingReceipts = "Pending Receipts"
	ListServers     = "Servers"
	ListPlans       = "Plans"
	SyncProfiles    = "Sync Profiles"

	// Receipt review commands
	ApproveReceipt = "Approve"
	RejectReceipt  = "Reject"

	// Confirmation commands
	Confirm = "Confirm"
)
