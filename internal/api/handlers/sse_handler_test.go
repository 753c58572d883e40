package handlers_test

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/events"
	"github.com/zatekoja/tuitioncentres/backend/internal/api/handlers"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/providers"
)

// readEvent returns the next "event:" name on the stream
func readEvent(t *testing.T, reader *bufio.Reader) string {
	t.Helper()
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			return strings.TrimSpace(name)
		}
	}
}

func TestSSEHandler_StreamsDirectoryEvents(t *testing.T) {
	bus := events.NewMemoryEventBus()
	defer bus.Close()

	h := handlers.NewSSEHandler(bus, time.Hour)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stream/tuition-centres", h.StreamDirectoryUpdates)
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/stream/tuition-centres", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", readEvent(t, reader))
	assert.Equal(t, 1, h.ClientCount())

	event := entities.NewCentreEvent(entities.CentreEventTypeReloaded, "", 10)
	require.NoError(t, bus.Publish(context.Background(), providers.EventChannelCentreUpdates, event))

	assert.Equal(t, string(entities.CentreEventTypeReloaded), readEvent(t, reader))

	cancel()
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSSEHandler_Heartbeat(t *testing.T) {
	bus := events.NewMemoryEventBus()
	defer bus.Close()

	h := handlers.NewSSEHandler(bus, 20*time.Millisecond)
	server := httptest.NewServer(http.HandlerFunc(h.StreamDirectoryUpdates))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", readEvent(t, reader))
	assert.Equal(t, "heartbeat", readEvent(t, reader))
}

type failingBus struct {
	providers.EventBus
}

func (failingBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.CentreEvent, error) {
	return nil, errors.New("redis down")
}

func TestSSEHandler_SubscribeFailure(t *testing.T) {
	h := handlers.NewSSEHandler(failingBus{}, 0)

	rec := httptest.NewRecorder()
	h.StreamDirectoryUpdates(rec, httptest.NewRequest(http.MethodGet, "/api/stream/tuition-centres", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), handlers.CodeInternalError)
	assert.NotContains(t, rec.Body.String(), "redis down")
}

func TestSSEHandler_Stats(t *testing.T) {
	h := handlers.NewSSEHandler(events.NewMemoryEventBus(), 0)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stream/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected_clients":0}`, rec.Body.String())
}
