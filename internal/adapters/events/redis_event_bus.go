package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/doctordiscovery/internal/domain/providers"
	redisclient "github.com/zatekoja/doctordiscovery/internal/infrastructure/clients/redis"
)

// RedisEventBus implements the EventBus interface using Redis Pub/Sub
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	handlers      map[string][]func(providers.Event)
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		handlers:      make(map[string][]func(providers.Event)),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes an event to a topic
func (b *RedisEventBus) Publish(ctx context.Context, topic string, event providers.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("Published event to topic %s: %s", topic, event.ID)
	return nil
}

// Subscribe registers a handler for a topic. The first handler on a topic
// opens the underlying Redis subscription.
func (b *RedisEventBus) Subscribe(ctx context.Context, topic string, handler func(providers.Event)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[topic] = append(b.handlers[topic], handler)

	if _, exists := b.subscriptions[topic]; !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, topic)
		b.subscriptions[topic] = pubsub
		go b.receiveMessages(topic, pubsub)
	}

	return nil
}

// receiveMessages dispatches Redis messages to the registered handlers
func (b *RedisEventBus) receiveMessages(topic string, pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event providers.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Failed to unmarshal event from topic %s: %v", topic, err)
				continue
			}

			b.mu.RLock()
			handlers := make([]func(providers.Event), len(b.handlers[topic]))
			copy(handlers, b.handlers[topic])
			b.mu.RUnlock()

			for _, handler := range handlers {
				handler(event)
			}
		}
	}
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for topic, pubsub := range b.subscriptions {
		if err := pubsub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close subscription %s: %w", topic, err))
		}
		delete(b.subscriptions, topic)
	}
	b.handlers = make(map[string][]func(providers.Event))

	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %v", errs)
	}

	log.Println("Event bus closed")
	return nil
}
