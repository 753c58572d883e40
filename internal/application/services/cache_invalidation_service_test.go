package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/events"
	"github.com/zatekoja/tuitioncentres/backend/internal/application/services"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/providers"
)

// MockCacheProvider for testing
type MockCacheProvider struct {
	mu       sync.RWMutex
	data     map[string][]byte
	patterns []string
}

func NewMockCacheProvider() *MockCacheProvider {
	return &MockCacheProvider{data: make(map[string][]byte)}
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if val, ok := m.data[key]; ok {
		return val, nil
	}
	return nil, providers.ErrCacheMiss
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// DeletePattern supports trailing-star patterns only
func (m *MockCacheProvider) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
		}
	}
	return nil
}

func (m *MockCacheProvider) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MockCacheProvider) Patterns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.patterns...)
}

func TestCacheInvalidationService_ReloadDropsDirectoryKeys(t *testing.T) {
	cache := NewMockCacheProvider()
	bus := events.NewMemoryEventBus()
	defer bus.Close()

	service := services.NewCacheInvalidationService(cache, bus)
	require.NoError(t, service.Start())
	defer service.Stop()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, providers.CentreCacheKeyPrefix+"search:abc:0:20", []byte("page"), 120))
	require.NoError(t, cache.Set(ctx, providers.CentreCacheKeyPrefix+"filters:levels", []byte("levels"), 300))
	require.NoError(t, cache.Set(ctx, "unrelated:key", []byte("keep"), 300))

	require.NoError(t, bus.Publish(ctx, providers.EventChannelCentreUpdates,
		entities.NewCentreEvent(entities.CentreEventTypeReloaded, "", 12)))

	assert.Eventually(t, func() bool { return cache.Len() == 1 }, time.Second, 5*time.Millisecond)
	_, err := cache.Get(ctx, "unrelated:key")
	assert.NoError(t, err)
	assert.Equal(t, []string{providers.CentreCacheKeyPrefix + "*"}, cache.Patterns())
}

func TestCacheInvalidationService_StopWithoutStart(t *testing.T) {
	service := services.NewCacheInvalidationService(NewMockCacheProvider(), events.NewMemoryEventBus())
	service.Stop()
}

func TestCacheInvalidationService_StopsWhenBusCloses(t *testing.T) {
	bus := events.NewMemoryEventBus()
	service := services.NewCacheInvalidationService(NewMockCacheProvider(), bus)
	require.NoError(t, service.Start())

	require.NoError(t, bus.Close())

	stopped := make(chan struct{})
	go func() {
		service.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("service did not stop")
	}
}
