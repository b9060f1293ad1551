package events

import "context"

// Notifier signals that a field's derived behavior must be recomputed.
type Notifier interface {
	NotifyFieldChanged(ctx context.Context, fieldID int64) error
}

// BusNotifier publishes recompute signals on the event bus.
type BusNotifier struct {
	pub Publisher
}

// NewBusNotifier returns a Notifier that publishes to TopicFieldChanged.
func NewBusNotifier(pub Publisher) *BusNotifier {
	return &BusNotifier{pub: pub}
}

func (n *BusNotifier) NotifyFieldChanged(ctx context.Context, fieldID int64) error {
	return n.pub.Publish(ctx, TopicFieldChanged, FieldChanged{FieldID: fieldID})
}

// NoopNotifier ignores recompute signals (used when NATS is not configured).
type NoopNotifier struct{}

func (NoopNotifier) NotifyFieldChanged(context.Context, int64) error { return nil }
