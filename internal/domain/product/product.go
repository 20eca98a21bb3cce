package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrInUse is returned when deleting a product that is still referenced by
// at least one order item. Historical line items keep their product
// reference, so such products cannot be removed.
var ErrInUse = errors.New("product is referenced by order items")

// Product represents a catalog item available for purchase. PriceCents is
// the current price in integer minor units; changing it never affects line
// items that already snapshotted an earlier price.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate reports whether the product fields are acceptable for a write.
func (p *Product) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.PriceCents < 0 {
		return errors.New("price_cents must not be negative")
	}
	return nil
}

// Finder is the narrow read capability needed by collaborators that only
// resolve products by id, such as the order item snapshot step.
type Finder interface {
	GetByID(ctx context.Context, id string) (*Product, error)
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Finder
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
