// Package pubsub provides a generic publish/subscribe event system used to
// fan preference and issue-list changes out to any number of views.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// LogEntryEvent carries one formatted log line.
	LogEntryEvent EventType = "log_entry"
	// StateChangedEvent carries a new view preference.
	StateChangedEvent EventType = "state_changed"
	// ListChangedEvent carries a new issue-list view (loading, ready or failed).
	ListChangedEvent EventType = "list_changed"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
