package providers

import (
	"context"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
)

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// EventBus publishes and consumes model-lifecycle events
type EventBus interface {
	Publish(ctx context.Context, channel string, event *entities.ModelEvent) error
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ModelEvent, error)
	Close() error
}
