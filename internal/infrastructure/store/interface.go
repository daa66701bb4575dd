package store

import "context"

// EventStoreInterface defines the interface for event stores
type EventStoreInterface interface {
	Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error)
	GetEvents(aggregateID string) []Event
	GetAllEvents() []Event
}

// Publisher forwards stored events to a message broker
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}
