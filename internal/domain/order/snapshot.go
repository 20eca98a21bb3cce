package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nevtar/ordercore/internal/domain/product"
)

// SnapshotResolver is the pre-write stage of the item pipeline. Given the
// proposed fields of an item write (and the stored item, when updating) it
// fills missing snapshot fields from the current product state and
// recomputes the line total.
//
// Snapshot fields follow a fill-if-missing policy: once a name or unit
// price is present on an item, the resolver never replaces it, so later
// product changes cannot leak into historical lines. A failed product
// lookup is recoverable: the write proceeds with whatever values were
// explicitly supplied, and the failure is logged.
type SnapshotResolver struct {
	products product.Finder
	lg       *zap.Logger
}

// NewSnapshotResolver creates a resolver backed by the given product lookup.
func NewSnapshotResolver(products product.Finder, lg *zap.Logger) *SnapshotResolver {
	return &SnapshotResolver{products: products, lg: lg}
}

// ResolveCreate validates the proposed fields and produces the item to
// persist. The quantity defaults to 1 when not supplied.
func (r *SnapshotResolver) ResolveCreate(ctx context.Context, in ItemCreate) (*Item, error) {
	if in.OrderID == "" {
		return nil, &ValidationError{Field: "order_id", Reason: "required"}
	}

	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	it := &Item{
		ID:                  uuid.New().String(),
		OrderID:             in.OrderID,
		ProductID:           in.ProductID,
		ProductNameSnapshot: in.ProductNameSnapshot,
		Quantity:            qty,
	}
	if in.UnitPriceCents != nil {
		if *in.UnitPriceCents < 0 {
			return nil, &ValidationError{Field: "unit_price_cents", Reason: "must not be negative"}
		}
		price := *in.UnitPriceCents
		it.UnitPriceCents = &price
	}

	r.fillSnapshots(ctx, it)
	it.LineTotalCents = lineTotal(it.Quantity, it.UnitPriceCents)
	return it, nil
}

// ResolveUpdate applies the patch on top of the stored item and produces the
// item to persist. Snapshot fields already present on the stored item are
// kept unless the patch explicitly replaces them.
func (r *SnapshotResolver) ResolveUpdate(ctx context.Context, prev Item, patch ItemPatch) (*Item, error) {
	next := prev

	if patch.Quantity != nil {
		if *patch.Quantity < 1 {
			return nil, &ValidationError{Field: "quantity", Reason: "must be at least 1"}
		}
		next.Quantity = *patch.Quantity
	}
	// A newly connected product takes precedence; otherwise the previously
	// stored reference stays effective.
	if patch.ProductID != nil {
		next.ProductID = *patch.ProductID
	}
	if patch.ProductNameSnapshot != nil {
		next.ProductNameSnapshot = *patch.ProductNameSnapshot
	}
	if patch.UnitPriceCents != nil {
		if *patch.UnitPriceCents < 0 {
			return nil, &ValidationError{Field: "unit_price_cents", Reason: "must not be negative"}
		}
		price := *patch.UnitPriceCents
		next.UnitPriceCents = &price
	}

	r.fillSnapshots(ctx, &next)
	next.LineTotalCents = lineTotal(next.Quantity, next.UnitPriceCents)
	return &next, nil
}

// fillSnapshots populates missing snapshot fields from the current product
// state. At most one product fetch happens per write; the same fetch serves
// both the name and the price. Lookup failures are soft: logged and
// absorbed, never fabricated around.
func (r *SnapshotResolver) fillSnapshots(ctx context.Context, it *Item) {
	needName := it.ProductNameSnapshot == ""
	needPrice := it.UnitPriceCents == nil
	if (!needName && !needPrice) || it.ProductID == "" {
		return
	}

	p, err := r.products.GetByID(ctx, it.ProductID)
	if err != nil {
		r.lg.Warn("product lookup failed, keeping supplied snapshot fields",
			zap.String("order_id", it.OrderID),
			zap.String("product_id", it.ProductID),
			zap.Error(err),
		)
		return
	}

	if needName {
		it.ProductNameSnapshot = p.Name
	}
	if needPrice {
		price := p.PriceCents
		it.UnitPriceCents = &price
	}
}

// lineTotal computes quantity * unit price, treating a missing price as
// zero. The result is never trusted from client input.
func lineTotal(quantity int, unitPriceCents *int64) int64 {
	if unitPriceCents == nil {
		return 0
	}
	return int64(quantity) * *unitPriceCents
}
