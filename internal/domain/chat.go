package domain

import (
	"context"
	"errors"
)

// Role identifies the author of a conversation turn.
type Role string

// Roles understood by the completion provider.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionClient defines the port to the external completion provider.
// Complete returns exactly one assistant reply for the given message
// sequence, or one of the provider failure sentinels below.
type CompletionClient interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// Provider failure categories. Implementations wrap these so callers can
// dispatch with errors.Is without seeing provider internals.
var (
	// ErrProviderAuth means the provider rejected our own credentials.
	// This is a server misconfiguration, never the end user's fault.
	ErrProviderAuth = errors.New("provider rejected credentials")
	// ErrProviderRateLimited means the provider throttled us and the
	// retry budget is exhausted.
	ErrProviderRateLimited = errors.New("provider rate limited")
	// ErrProviderBadRequest means the provider deemed our request
	// malformed; retrying the same request cannot succeed.
	ErrProviderBadRequest = errors.New("invalid provider request")
	// ErrProvider covers transient or unclassified provider failures.
	ErrProvider = errors.New("provider request failed")
)
