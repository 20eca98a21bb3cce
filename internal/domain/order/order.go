package order

import (
	"context"
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition s -> next is allowed.
// Paid and cancelled are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusPaid || next == StatusCancelled)
}

// Order belongs to exactly one user and owns its line items. TotalCents is
// a derived aggregate: it is recomputed from the items after every item
// write and stored, never taken from client input.
type Order struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Status     Status    `json:"status"`
	Currency   string    `json:"currency"`
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Item is a single line of an order. ProductNameSnapshot and UnitPriceCents
// are captured from the product at creation time and are never refreshed
// from the catalog once set; later product changes must not alter them.
// UnitPriceCents is nil when no price was supplied and none could be
// resolved. LineTotalCents is always recomputed on write.
type Item struct {
	ID                  string    `json:"id"`
	OrderID             string    `json:"order_id"`
	ProductID           string    `json:"product_id,omitempty"`
	ProductNameSnapshot string    `json:"product_name_snapshot"`
	UnitPriceCents      *int64    `json:"unit_price_cents,omitempty"`
	Quantity            int       `json:"quantity"`
	LineTotalCents      int64     `json:"line_total_cents"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ItemCreate holds the proposed fields for a new item. Pointer fields are
// optional: nil means the caller did not supply a value, which is distinct
// from supplying a zero.
type ItemCreate struct {
	OrderID             string `json:"order_id"`
	ProductID           string `json:"product_id"`
	ProductNameSnapshot string `json:"product_name_snapshot"`
	UnitPriceCents      *int64 `json:"unit_price_cents"`
	Quantity            *int   `json:"quantity"`
}

// ItemPatch holds the proposed field changes for an existing item. Every
// field is optional; nil leaves the stored value untouched.
type ItemPatch struct {
	ProductID           *string `json:"product_id"`
	ProductNameSnapshot *string `json:"product_name_snapshot"`
	UnitPriceCents      *int64  `json:"unit_price_cents"`
	Quantity            *int    `json:"quantity"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	// UpdateTotal persists a recomputed total for the order.
	UpdateTotal(ctx context.Context, id string, totalCents int64) error
	// Delete removes the order; the store cascades to its items.
	Delete(ctx context.Context, id string) error
}

// ItemRepository defines persistence operations for order items.
type ItemRepository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	ListByOrder(ctx context.Context, orderID string) ([]Item, error)
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id string) error
}
