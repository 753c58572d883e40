package events

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
)

const subscriberBuffer = 100

// fanout tracks the local subscribers of each channel and delivers events to
// them without blocking on a slow reader
type fanout struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.CentreEvent]struct{}
}

func newFanout() *fanout {
	return &fanout{subscribers: make(map[string]map[chan *entities.CentreEvent]struct{})}
}

// add registers a new subscriber and reports whether it is the first on channel
func (f *fanout) add(channel string) (chan *entities.CentreEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	first := len(f.subscribers[channel]) == 0
	if f.subscribers[channel] == nil {
		f.subscribers[channel] = make(map[chan *entities.CentreEvent]struct{})
	}
	ch := make(chan *entities.CentreEvent, subscriberBuffer)
	f.subscribers[channel][ch] = struct{}{}
	return ch, first
}

// remove closes one subscriber and reports whether the channel has none left
func (f *fanout) remove(channel string, ch chan *entities.CentreEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	subs, ok := f.subscribers[channel]
	if !ok {
		return false
	}
	if _, ok := subs[ch]; !ok {
		return false
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(f.subscribers, channel)
		return true
	}
	return false
}

// drop closes every subscriber of channel
func (f *fanout) drop(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subscribers[channel] {
		close(ch)
	}
	delete(f.subscribers, channel)
}

func (f *fanout) channels() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.subscribers))
	for name := range f.subscribers {
		names = append(names, name)
	}
	return names
}

func (f *fanout) count(channel string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers[channel])
}

func (f *fanout) broadcast(channel string, event *entities.CentreEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for ch := range f.subscribers[channel] {
		select {
		case ch <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
		}
	}
}
