package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/providers"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/observability"
)

const defaultHeartbeat = 30 * time.Second

// SSEHandler streams directory change events so clients know when to refetch
// search results and filter options
type SSEHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
	clients   atomic.Int64
}

// NewSSEHandler creates a new SSE handler. A zero heartbeat uses 30s.
func NewSSEHandler(eventBus providers.EventBus, heartbeat time.Duration) *SSEHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &SSEHandler{eventBus: eventBus, heartbeat: heartbeat}
}

// StreamDirectoryUpdates handles GET /api/stream/tuition-centres
func (h *SSEHandler) StreamDirectoryUpdates(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, CodeInternalError, "Streaming not supported", nil)
		return
	}

	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)

	eventChan, err := h.eventBus.Subscribe(ctx, providers.EventChannelCentreUpdates)
	if err != nil {
		logger.Error().Err(err).Msg("failed to subscribe to directory updates")
		respondWithError(w, http.StatusInternalServerError, CodeInternalError, "Failed to subscribe to updates", nil)
		return
	}

	h.clients.Add(1)
	defer h.clients.Add(-1)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.sendEvent(w, "connected", map[string]interface{}{"timestamp": time.Now().UTC()})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("client disconnected from directory stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now().UTC()})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

// ClientCount returns the number of connected stream clients
func (h *SSEHandler) ClientCount() int {
	return int(h.clients.Load())
}

// Stats handles GET /api/stream/stats
func (h *SSEHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]int{"connected_clients": h.ClientCount()})
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		observability.GetLogger().Error().Err(err).Str("event", eventType).Msg("failed to marshal event")
		return
	}
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
