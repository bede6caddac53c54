package providers

import (
	"context"
	"time"
)

// CacheProvider is the port for the ranking result cache. Implementations
// must treat a miss as (nil, nil), not an error.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
