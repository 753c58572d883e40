package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	h := NewHealthHandler(map[string]HealthCheck{
		"postgres": func(ctx context.Context) error { return nil },
	})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)

	rec, body := serve(t, mux, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, map[string]interface{}{"postgres": "ok"}, body["checks"])
}

func TestHealth_Degraded(t *testing.T) {
	h := NewHealthHandler(map[string]HealthCheck{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("dial tcp: refused") },
	})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)

	rec, body := serve(t, mux, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
	assert.NotContains(t, rec.Body.String(), "refused")
}

func TestHealth_NoChecks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", NewHealthHandler(nil).Health)

	rec, body := serve(t, mux, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body, "checks")
}
