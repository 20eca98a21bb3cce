package order

import (
	"context"

	"go.uber.org/zap"
)

// ItemLister lists the current items of an order.
type ItemLister interface {
	ListByOrder(ctx context.Context, orderID string) ([]Item, error)
}

// TotalUpdater persists a recomputed order total.
type TotalUpdater interface {
	UpdateTotal(ctx context.Context, id string, totalCents int64) error
}

// TotalRecalculator is the post-write stage of the item pipeline: after an
// item create, update or delete has been committed, it re-reads all items
// currently belonging to the owning order, sums their line totals and
// persists the sum on the order.
//
// Every failure here is soft. The triggering item write is already
// committed, so errors are logged and absorbed rather than propagated; the
// stored total then lags until the next item write re-derives it from the
// full current item set.
type TotalRecalculator struct {
	items  ItemLister
	orders TotalUpdater
	lg     *zap.Logger
}

// NewTotalRecalculator creates a recalculator over the given stores.
func NewTotalRecalculator(items ItemLister, orders TotalUpdater, lg *zap.Logger) *TotalRecalculator {
	return &TotalRecalculator{items: items, orders: orders, lg: lg}
}

// Recalculate recomputes and persists the total of the given order. An empty
// order id is a no-op: items always reference an order by invariant, but
// partially constructed records get defensive handling.
func (r *TotalRecalculator) Recalculate(ctx context.Context, orderID string) {
	if orderID == "" {
		return
	}

	items, err := r.items.ListByOrder(ctx, orderID)
	if err != nil {
		r.lg.Warn("order total recalculation skipped: list items",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	var total int64
	for i := range items {
		total += items[i].LineTotalCents
	}

	if err := r.orders.UpdateTotal(ctx, orderID, total); err != nil {
		r.lg.Warn("order total recalculation skipped: update order",
			zap.String("order_id", orderID),
			zap.Int64("total_cents", total),
			zap.Error(err),
		)
	}
}
