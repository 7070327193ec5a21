package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, err)
}

// IsCategory checks if error belongs to a specific category.
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// AuthFetch wraps a message as an auth page fetch failure.
func AuthFetch(message string) error {
	return fmt.Errorf("%s: %w", message, ErrAuthFetch)
}

// AuthParse wraps a message as an auth token parse failure.
func AuthParse(message string) error {
	return fmt.Errorf("%s: %w", message, ErrAuthParse)
}

// FetchDecode wraps a message as a fetch decode failure.
func FetchDecode(message string) error {
	return fmt.Errorf("%s: %w", message, ErrFetchDecode)
}

// Delivery wraps a message as a delivery failure.
func Delivery(message string) error {
	return fmt.Errorf("%s: %w", message, ErrDelivery)
}

// InvalidInput wraps a message as invalid input.
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// Transient wraps a message as transient.
func Transient(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransient)
}

// Internal wraps a message as internal.
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}

// IsRetryable reports whether an error may succeed on a later polling cycle.
// Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrDelivery)
}
