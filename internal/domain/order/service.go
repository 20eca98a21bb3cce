package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/nevtar/ordercore/internal/access"
)

// Policy resource names used by the service.
const (
	ResourceOrder = "order"
	ResourceItem  = "order_item"
)

// Service is the write pipeline for orders and their items. Item writes run
// three explicit stages: the access policy check, the snapshot resolver
// (pre-write), and the total recalculator (post-write). There is no hidden
// hook registration; the stages are invoked directly here.
type Service struct {
	orders   Repository
	items    ItemRepository
	resolver *SnapshotResolver
	recalc   *TotalRecalculator
	policy   access.Policy
}

// NewService creates a Service with the required collaborators.
func NewService(
	orders Repository,
	items ItemRepository,
	resolver *SnapshotResolver,
	recalc *TotalRecalculator,
	policy access.Policy,
) *Service {
	return &Service{
		orders:   orders,
		items:    items,
		resolver: resolver,
		recalc:   recalc,
		policy:   policy,
	}
}

// CreateOrder opens a new pending order for the given user. An order with
// no items yet is permitted; a checkout flow adds items afterwards and each
// addition re-derives the total.
func (s *Service) CreateOrder(ctx context.Context, userID, currency string) (*Order, error) {
	if err := s.policy.Allow(ctx, access.ActionCreate, ResourceOrder); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "required"}
	}
	if currency == "" {
		currency = "USD"
	}

	o := &Order{
		ID:       uuid.New().String(),
		UserID:   userID,
		Status:   StatusPending,
		Currency: currency,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// GetOrder returns a single order.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	if err := s.policy.Allow(ctx, access.ActionRead, ResourceOrder); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, id)
}

// ListUserOrders returns all orders of a user.
func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]Order, error) {
	if err := s.policy.Allow(ctx, access.ActionRead, ResourceOrder); err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, userID)
}

// TransitionStatus moves an order to the next status, enforcing the state
// machine: pending -> paid, pending -> cancelled; paid and cancelled are
// terminal.
func (s *Service) TransitionStatus(ctx context.Context, id string, next Status) (*Order, error) {
	if err := s.policy.Allow(ctx, access.ActionUpdate, ResourceOrder); err != nil {
		return nil, err
	}
	if !next.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "unknown status"}
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, &InvalidTransitionError{From: o.Status, To: next}
	}

	if err := s.orders.UpdateStatus(ctx, id, next); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Status = next
	return o, nil
}

// DeleteOrder removes an order. The store cascades the delete to the
// order's items, so no recalculation is needed afterwards.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if err := s.policy.Allow(ctx, access.ActionDelete, ResourceOrder); err != nil {
		return err
	}
	return s.orders.Delete(ctx, id)
}

// AddItem runs the full item create pipeline: policy check, order existence
// check, snapshot resolution, the store write, and best-effort total
// recalculation.
func (s *Service) AddItem(ctx context.Context, in ItemCreate) (*Item, error) {
	if err := s.policy.Allow(ctx, access.ActionCreate, ResourceItem); err != nil {
		return nil, err
	}
	if in.OrderID != "" {
		if _, err := s.orders.GetByID(ctx, in.OrderID); err != nil {
			return nil, err
		}
	}

	it, err := s.resolver.ResolveCreate(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, it); err != nil {
		return nil, errors.Wrap(err, "create item")
	}

	s.recalc.Recalculate(ctx, it.OrderID)
	return it, nil
}

// UpdateItem applies a patch to an existing item through the same pipeline
// as AddItem. The resolver sees the stored item, so snapshot fields that are
// already set survive quantity-only updates untouched.
func (s *Service) UpdateItem(ctx context.Context, id string, patch ItemPatch) (*Item, error) {
	if err := s.policy.Allow(ctx, access.ActionUpdate, ResourceItem); err != nil {
		return nil, err
	}

	prev, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := s.resolver.ResolveUpdate(ctx, *prev, patch)
	if err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, next); err != nil {
		return nil, errors.Wrap(err, "update item")
	}

	s.recalc.Recalculate(ctx, next.OrderID)
	return next, nil
}

// RemoveItem deletes an item. It reads the item first: after the delete the
// row is gone, and the pre-delete snapshot is the only way to know which
// order to recalculate.
func (s *Service) RemoveItem(ctx context.Context, id string) error {
	if err := s.policy.Allow(ctx, access.ActionDelete, ResourceItem); err != nil {
		return err
	}

	prev, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete item")
	}

	s.recalc.Recalculate(ctx, prev.OrderID)
	return nil
}

// GetItem returns a single item.
func (s *Service) GetItem(ctx context.Context, id string) (*Item, error) {
	if err := s.policy.Allow(ctx, access.ActionRead, ResourceItem); err != nil {
		return nil, err
	}
	return s.items.GetByID(ctx, id)
}

// ListItems returns all items of an order.
func (s *Service) ListItems(ctx context.Context, orderID string) ([]Item, error) {
	if err := s.policy.Allow(ctx, access.ActionRead, ResourceItem); err != nil {
		return nil, err
	}
	return s.items.ListByOrder(ctx, orderID)
}
