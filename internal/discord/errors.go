package discord

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMemberNotFound is returned when a guild member lookup 404s.
	// This is the expected eventual-consistency case right after a
	// membership add; callers decide whether to re-check.
	ErrMemberNotFound = errors.New("member not found in guild")

	// ErrRoleNotFound is returned when the configured role id is not
	// present in the guild. Configuration fault, not transient.
	ErrRoleNotFound = errors.New("role not found in guild")
)

// APIError carries a non-success response from the Discord API,
// including the provider's diagnostic body.
type APIError struct {
	Operation string
	Status    int
	Body      string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("discord %s: status %d", e.Operation, e.Status)
	}
	return fmt.Sprintf("discord %s: status %d: %s", e.Operation, e.Status, body)
}

// TokenExchangeError wraps a rejected authorization code. Codes are
// single-use, so this is never retried.
type TokenExchangeError struct {
	*APIError
}

// IdentityFetchError wraps a failed identity lookup after a successful
// token exchange.
type IdentityFetchError struct {
	*APIError
}

func newAPIError(operation string, status int, body []byte) *APIError {
	return &APIError{Operation: operation, Status: status, Body: string(body)}
}
