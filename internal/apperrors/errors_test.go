package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassificationHelpers(t *testing.T) {
	cases := []struct {
		name                                             string
		err                                              error
		validation, notFound, invalidState, accessDenied bool
	}{
		{"validation", NewValidation("amount", "must be positive"), true, false, false, false},
		{"not found", NewNotFound("application", 7), false, true, false, false},
		{"invalid state", NewInvalidState("completed", "cancel"), false, false, true, false},
		{"access denied", NewAccessDenied(), false, false, false, true},
		{"plain error", errors.New("boom"), false, false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if IsValidation(tc.err) != tc.validation {
				t.Errorf("IsValidation = %v", !tc.validation)
			}
			if IsNotFound(tc.err) != tc.notFound {
				t.Errorf("IsNotFound = %v", !tc.notFound)
			}
			if IsInvalidState(tc.err) != tc.invalidState {
				t.Errorf("IsInvalidState = %v", !tc.invalidState)
			}
			if IsAccessDenied(tc.err) != tc.accessDenied {
				t.Errorf("IsAccessDenied = %v", !tc.accessDenied)
			}
		})
	}
}

// Classification survives wrapping, so services may add context with %w.
func TestClassificationThroughWrapping(t *testing.T) {
	err := fmt.Errorf("approving: %w", NewInvalidState("rejected", "approve"))
	if !IsInvalidState(err) {
		t.Error("wrapped invalid-state error must still classify")
	}
}

func TestWrapStore(t *testing.T) {
	if WrapStore(nil) != nil {
		t.Error("wrapping nil must stay nil")
	}

	base := errors.New("connection refused")
	wrapped := WrapStore(base)
	if !errors.Is(wrapped, base) {
		t.Error("store error must unwrap to the cause")
	}
	if IsValidation(wrapped) || IsNotFound(wrapped) {
		t.Error("store errors must not classify as client errors")
	}
}

// Not-found messages never echo the id, so probing responses stay generic.
func TestNotFoundMessageOmitsID(t *testing.T) {
	err := NewNotFound("donation", 12345)
	if got := err.Error(); got != "donation not found" {
		t.Errorf("message = %q", got)
	}
}
