// Package access holds the authorization capability checked at the
// data-access boundary. The default policy denies everything; the permissive
// policy is selected explicitly through configuration for non-production use.
package access

import (
	"context"
	"fmt"
)

// Action enumerates the operations a caller can request against an entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// DeniedError indicates the active policy rejected an operation.
type DeniedError struct {
	Action   Action
	Resource string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access denied: %s %s", e.Action, e.Resource)
}

// Policy decides whether an operation against a resource may proceed.
// Implementations return nil to allow and *DeniedError to reject.
type Policy interface {
	Allow(ctx context.Context, action Action, resource string) error
}

// DenyAll rejects every operation. This is the default stance.
type DenyAll struct{}

func (DenyAll) Allow(_ context.Context, action Action, resource string) error {
	return &DeniedError{Action: action, Resource: resource}
}

// AllowAll permits every operation. Intended for development setups only and
// must be selected explicitly via configuration.
type AllowAll struct{}

func (AllowAll) Allow(context.Context, Action, string) error { return nil }

// Modes accepted by ForMode.
const (
	ModeClosed = "closed"
	ModeOpen   = "open"
)

// ForMode maps a configuration value to a policy. Anything other than the
// explicit open mode resolves to DenyAll.
func ForMode(mode string) Policy {
	if mode == ModeOpen {
		return AllowAll{}
	}
	return DenyAll{}
}
