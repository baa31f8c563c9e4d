package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the subscription feed terminal states.
var (
	// ErrPurchaseNotFound is returned when no active purchase matches a subscription ID
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrNoConfigurations is returned when a purchase yields no connection URIs
	ErrNoConfigurations = errors.New("no configurations available")
)

// ServerNotFoundError represents an error when a server is not found
type ServerNotFoundError struct {
	ServerID uint
}

// Error returns the error message
func (e *ServerNotFoundError) Error() string {
	return fmt.Sprintf("server not found: %d", e.ServerID)
}

// ValidationError represents an error when validation fails
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// PanelAPIError represents an error from a remote panel API
type PanelAPIError struct {
	Operation string
	Status    int
	Message   string
}

// Error returns the error message
func (e *PanelAPIError) Error() string {
	return fmt.Sprintf("panel API error during %s (status %d): %s", e.Operation, e.Status, e.Message)
}

// ProvisionError represents a total provisioning failure across all targets
type ProvisionError struct {
	Targets int
}

// Error returns the error message
func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provisioning failed on all %d target inbounds", e.Targets)
}

// ConfigError represents an error related to configuration
type ConfigError struct {
	Section string
	Message string
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Section, e.Message)
}
