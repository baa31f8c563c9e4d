package models

// ConversationState represents the state of a conversation with a user
type ConversationState int

const (
	// Default is the initial state
	Default ConversationState = iota
	// AwaitingPlanSelection is the state when the user is choosing a plan
	AwaitingPlanSelection
	// AwaitingProfileSelection is the state when the user is choosing a profile
	AwaitingProfileSelection
	// AwaitingProfileVolume is the state when the user is entering a traffic volume
	AwaitingProfileVolume
	// AwaitingPurchaseConfirmation is the state when the user is confirming a wallet purchase
	AwaitingPurchaseConfirmation
	// AwaitingReceiptPhoto is the state when the user is submitting a payment receipt
	AwaitingReceiptPhoto
	// AwaitingReceiptDecision is the state when an admin is reviewing a receipt
	AwaitingReceiptDecision
	// AwaitingServiceSelection is the state when the user is picking one of their services
	AwaitingServiceSelection
)

// UserState represents the state of a user's conversation
type UserState struct {
	State   ConversationState
	Payload *string
}
