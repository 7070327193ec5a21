package errors

import (
	"errors"
)

// Sentinel errors for the failure categories the poll loop distinguishes.
var (
	// ErrAuthFetch - the hacktivity landing page could not be retrieved
	ErrAuthFetch = errors.New("auth page fetch failed")

	// ErrAuthParse - the landing page markup did not contain the CSRF token element
	ErrAuthParse = errors.New("auth token parse failed")

	// ErrFetchDecode - the GraphQL response was malformed or missing the expected structure
	ErrFetchDecode = errors.New("fetch decode failed")

	// ErrDelivery - a forwarder rejected an event (eligible for retry on a later cycle)
	ErrDelivery = errors.New("delivery failed")

	// ErrInvalidInput - invalid argument or configuration value
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransient - transient error (retry on a later cycle)
	ErrTransient = errors.New("transient error")

	// ErrInternal - internal error
	ErrInternal = errors.New("internal error")
)
