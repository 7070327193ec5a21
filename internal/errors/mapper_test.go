package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCategoryConstructors(t *testing.T) {
	tests := []struct {
		err      error
		category error
	}{
		{AuthFetch("landing page 503"), ErrAuthFetch},
		{AuthParse("meta tag missing"), ErrAuthParse},
		{FetchDecode("not json"), ErrFetchDecode},
		{Delivery("webhook 500"), ErrDelivery},
		{InvalidInput("bad lookback"), ErrInvalidInput},
		{Transient("flaky upstream"), ErrTransient},
		{Internal("panic"), ErrInternal},
	}
	for _, tt := range tests {
		if !IsCategory(tt.err, tt.category) {
			t.Errorf("Expected %v to match category %v", tt.err, tt.category)
		}
	}
}

func TestWrapPreservesCategory(t *testing.T) {
	err := Wrap(Delivery("webhook 500"), "forward event")
	if !errors.Is(err, ErrDelivery) {
		t.Errorf("Expected wrapped error to stay a delivery error: %v", err)
	}
	if Wrap(nil, "no-op") != nil {
		t.Error("Expected Wrap(nil) to be nil")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(Transient("flaky upstream")) {
		t.Error("Expected transient errors to be retryable")
	}
	if !IsRetryable(Delivery("webhook 500")) {
		t.Error("Expected delivery errors to be retryable")
	}
	if IsRetryable(InvalidInput("bad lookback")) {
		t.Error("Expected invalid input to not be retryable")
	}
	if IsRetryable(fmt.Errorf("cycle: %w", context.Canceled)) {
		t.Error("Expected cancellation to never be retryable")
	}
	if IsRetryable(nil) {
		t.Error("Expected nil to not be retryable")
	}
}
