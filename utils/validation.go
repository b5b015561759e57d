package utils

import (
	"fmt"
	"strings"
)

// ValidateRequired checks if a string field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// ValidatePositive checks if a number is positive
func ValidatePositive(value float64, fieldName string) error {
	if !IsFinite(value) || value <= 0 {
		return NewValidationError(fmt.Sprintf("%s must be positive", fieldName))
	}
	return nil
}

// ValidateID checks that an entity id is a positive integer
func ValidateID(value int64, fieldName string) error {
	if value <= 0 {
		return NewValidationError(fmt.Sprintf("%s must be a positive integer", fieldName))
	}
	return nil
}

// ValidateDistinct checks that two member ids differ
func ValidateDistinct(a, b int64, message string) error {
	if a == b {
		return NewValidationError(message)
	}
	return nil
}
