package events

import (
	"context"
	"sync"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/providers"
)

// MemoryEventBus delivers events to subscribers in the same process, with the
// same fan-out and cancellation behaviour as RedisEventBus.
type MemoryEventBus struct {
	local     *fanout
	closeOnce sync.Once
	closed    chan struct{}
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{local: newFanout(), closed: make(chan struct{})}
}

// Publish delivers event to the current subscribers of channel
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.CentreEvent) error {
	select {
	case <-b.closed:
		return nil
	default:
	}
	b.local.broadcast(channel, event)
	return nil
}

// Subscribe subscribes to events on a channel until ctx is done
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.CentreEvent, error) {
	ch, _ := b.local.add(channel)
	go func() {
		select {
		case <-ctx.Done():
		case <-b.closed:
		}
		b.local.remove(channel, ch)
	}()
	return ch, nil
}

// Unsubscribe closes every subscriber of channel
func (b *MemoryEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.local.drop(channel)
	return nil
}

// Close closes every subscription
func (b *MemoryEventBus) Close() error {
	b.closeOnce.Do(func() {
		close(b.closed)
		for _, channel := range b.local.channels() {
			b.local.drop(channel)
		}
	})
	return nil
}
