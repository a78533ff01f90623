package interfaces

import "context"

// EventPublisher receives ledger events after the change they describe has committed.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
