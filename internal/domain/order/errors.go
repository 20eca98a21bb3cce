package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order lookups.
var (
	ErrNotFound     = errors.New("order not found")
	ErrItemNotFound = errors.New("order item not found")
)

// ValidationError indicates the caller supplied an unacceptable value on the
// primary write path. It is a hard failure: the write is aborted and the
// error surfaced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError indicates a disallowed order status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
