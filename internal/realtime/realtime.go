// Package realtime publishes change notifications consumed by admin
// dashboards and storefront widgets, which re-fetch on notification. It is
// a convenience mechanism only: no correctness depends on delivery.
package realtime

import "context"

// Topics published by the application.
const (
	TopicOrders   = "orders"
	TopicProducts = "products"
	TopicReviews  = "reviews"
	TopicSettings = "settings"
)

// Event describes one changed entity.
type Event struct {
	Topic string `json:"topic"`
	ID    string `json:"id"`
}

// Publisher fans out change events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop is a Publisher that drops every event. Used when no broker is
// configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
