package order

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/glowmart/glowmart-api/internal/realtime"
)

// Service covers order operations outside the checkout pipeline: customer
// history and cancellation, and admin status management.
type Service struct {
	orders Repository
	events realtime.Publisher
}

// NewService creates an order Service.
func NewService(orders Repository, events realtime.Publisher) *Service {
	return &Service{orders: orders, events: events}
}

// ListForUser returns the user's own orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// GetForUser returns one order, rejecting access to other users' orders
// with ErrNotFound rather than leaking their existence.
func (s *Service) GetForUser(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

// Cancel flips an order to cancelled on behalf of its owner. Permitted only
// while the order is still pending.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.UserID != userID {
		return ErrNotFound
	}
	if !o.CancellableBy(userID) {
		return ErrNotCancellable
	}
	if err := s.orders.UpdateStatus(ctx, orderID, StatusCancelled); err != nil {
		return errors.Wrap(err, "cancel order")
	}
	_ = s.events.Publish(ctx, realtime.Event{Topic: realtime.TopicOrders, ID: orderID})
	return nil
}

// SetStatus updates an order's status on behalf of an admin.
func (s *Service) SetStatus(ctx context.Context, orderID string, status Status) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return err
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return errors.Wrap(err, "update status")
	}
	_ = s.events.Publish(ctx, realtime.Event{Topic: realtime.TopicOrders, ID: orderID})
	return nil
}
