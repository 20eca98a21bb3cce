package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nevtar/ordercore/internal/domain/order"
)

const (
	createItemSQL = `INSERT INTO order_items
		(id, order_id, product_id, product_name_snapshot, unit_price_cents, quantity, line_total_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	getItemByIDSQL = `SELECT id, order_id, product_id, product_name_snapshot, unit_price_cents,
			quantity, line_total_cents, created_at, updated_at
		FROM order_items WHERE id = $1`

	listItemsByOrderSQL = `SELECT id, order_id, product_id, product_name_snapshot, unit_price_cents,
			quantity, line_total_cents, created_at, updated_at
		FROM order_items WHERE order_id = $1 ORDER BY created_at, id`

	updateItemSQL = `UPDATE order_items
		SET product_id = $2, product_name_snapshot = $3, unit_price_cents = $4,
			quantity = $5, line_total_cents = $6, updated_at = now()
		WHERE id = $1`

	deleteItemSQL = `DELETE FROM order_items WHERE id = $1`
)

var _ order.ItemRepository = (*OrderItemRepository)(nil)

// OrderItemRepository implements order.ItemRepository backed by PostgreSQL.
type OrderItemRepository struct {
	pool *pgxpool.Pool
}

// NewOrderItemRepository returns an OrderItemRepository that uses the given pool.
func NewOrderItemRepository(pool *pgxpool.Pool) *OrderItemRepository {
	return &OrderItemRepository{pool: pool}
}

// Create persists a new line item. The resolver has already filled the
// snapshot fields and line total.
func (r *OrderItemRepository) Create(ctx context.Context, it *order.Item) error {
	err := r.pool.QueryRow(ctx, createItemSQL,
		it.ID, it.OrderID, nullableID(it.ProductID), it.ProductNameSnapshot,
		it.UnitPriceCents, it.Quantity, it.LineTotalCents,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating order item %q: %w", it.ID, err)
	}
	return nil
}

// GetByID returns a single line item by id.
func (r *OrderItemRepository) GetByID(ctx context.Context, id string) (*order.Item, error) {
	rows, err := r.pool.Query(ctx, getItemByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order item %q: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrItemNotFound
		}
		return nil, fmt.Errorf("getting order item %q: %w", id, err)
	}
	return &it, nil
}

// ListByOrder returns all line items of an order in insertion order.
func (r *OrderItemRepository) ListByOrder(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.pool.Query(ctx, listItemsByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing items of order %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// Update rewrites a line item with resolver output.
func (r *OrderItemRepository) Update(ctx context.Context, it *order.Item) error {
	tag, err := r.pool.Exec(ctx, updateItemSQL,
		it.ID, nullableID(it.ProductID), it.ProductNameSnapshot,
		it.UnitPriceCents, it.Quantity, it.LineTotalCents,
	)
	if err != nil {
		return fmt.Errorf("updating order item %q: %w", it.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrItemNotFound
	}
	return nil
}

// Delete removes a line item.
func (r *OrderItemRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteItemSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order item %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrItemNotFound
	}
	return nil
}

// nullableID maps an empty string to NULL so the optional product foreign
// key stays clean.
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func scanItem(row pgx.CollectableRow) (order.Item, error) {
	var (
		it        order.Item
		productID *string
	)
	err := row.Scan(
		&it.ID, &it.OrderID, &productID, &it.ProductNameSnapshot, &it.UnitPriceCents,
		&it.Quantity, &it.LineTotalCents, &it.CreatedAt, &it.UpdatedAt,
	)
	if productID != nil {
		it.ProductID = *productID
	}
	return it, err
}
