package validation

import (
	"fmt"
	"strconv"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/constants"
	apperrors "github.com/aliafrazeh/alamor-vpn-bot/internal/errors"
)

// ValidateLabel validates a custom client label according to panel rules
func ValidateLabel(label string) error {
	if len(label) < constants.MinLabelLength || len(label) > constants.MaxLabelLength {
		return &apperrors.ValidationError{
			Field: "label",
			Message: fmt.Sprintf("must be between %d and %d characters",
				constants.MinLabelLength, constants.MaxLabelLength),
		}
	}

	for _, r := range label {
		if !isValidLabelChar(r) {
			return &apperrors.ValidationError{
				Field:   "label",
				Message: "can only contain letters, numbers, dashes and underscores",
			}
		}
	}

	return nil
}

// ValidateVolume validates and parses a traffic volume entered in gigabytes
func ValidateVolume(volumeStr string) (int, error) {
	gb, err := strconv.Atoi(volumeStr)
	if err != nil {
		return 0, &apperrors.ValidationError{Field: "volume", Message: "must be a number"}
	}

	if gb < 1 {
		return 0, &apperrors.ValidationError{Field: "volume", Message: "must be at least 1 GB"}
	}

	if gb > 10000 {
		return 0, &apperrors.ValidationError{Field: "volume", Message: "cannot exceed 10000 GB"}
	}

	return gb, nil
}

// isValidLabelChar checks if a character is valid for client labels
func isValidLabelChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '-'
}
