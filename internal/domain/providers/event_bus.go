package providers

import "context"

// Event is a domain notification published after state changes such as a
// pool refresh.
type Event struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// EventBus publishes domain events to interested processes. Publishing is
// best effort; a failed publish must not fail the operation that produced
// the event.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Subscribe(ctx context.Context, topic string, handler func(Event)) error
	Close() error
}
