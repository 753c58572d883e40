package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/memory"
	"github.com/zatekoja/tuitioncentres/backend/internal/api/handlers"
	"github.com/zatekoja/tuitioncentres/backend/internal/application/services"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	centres := []*entities.Centre{
		{ID: "0b1f6a52-3c0e-4d47-9f0a-5c1d2e3f4a5b", Name: "Alpha", Location: "Tampines", WhatsAppNumber: "+65 9123 4567",
			Offerings: []entities.Offering{entities.NewOffering("0b1f6a52-3c0e-4d47-9f0a-5c1d2e3f4a5b", "Primary 1", "Mathematics")}},
		{ID: "1c2a7b63-4d1f-4e58-8a1b-6d2e3f4a5b6c", Name: "Beta", Location: "Jurong", WhatsAppNumber: "8765 4321",
			Offerings: []entities.Offering{entities.NewOffering("1c2a7b63-4d1f-4e58-8a1b-6d2e3f4a5b6c", "Primary 1", "English")}},
	}
	service := services.NewCentreSearchService(memory.NewStore(centres), "memory", nil)
	router := NewRouter(
		handlers.NewCentreHandler(service, handlers.DefaultLimits),
		handlers.NewHealthHandler(nil),
		nil,
		[]string{"*"},
	)
	srv := httptest.NewServer(router.SetupRoutes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, dest interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	return resp
}

func TestRouter_SearchEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	var result entities.SearchResult
	resp := getJSON(t, srv.URL+"/api/tuition-centres?levels=Primary%201&subjects=Mathematics", &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Alpha", result.Data[0].Name)
	assert.Equal(t, "https://wa.me/6591234567", result.Data[0].WhatsAppLink)
	assert.Equal(t, entities.Pagination{Page: 1, Limit: 20, Total: 1, TotalPages: 1}, result.Pagination)
}

func TestRouter_CoarseLevel(t *testing.T) {
	srv := newTestServer(t)

	var result entities.SearchResult
	getJSON(t, srv.URL+"/api/tuition-centres?levels=Primary", &result)
	assert.Equal(t, 2, result.Pagination.Total)
}

func TestRouter_GetCentreAndNotFound(t *testing.T) {
	srv := newTestServer(t)

	var centre entities.PublicCentre
	resp := getJSON(t, srv.URL+"/api/tuition-centres/1c2a7b63-4d1f-4e58-8a1b-6d2e3f4a5b6c", &centre)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Beta", centre.Name)

	var body handlers.ErrorBody
	resp = getJSON(t, srv.URL+"/api/tuition-centres/2d3b8c74-5e20-4f69-9b2c-7e3f4a5b6c7d", &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, handlers.CodeNotFound, body.Error.Code)
}

func TestRouter_FilterOptionsAndHealth(t *testing.T) {
	srv := newTestServer(t)

	var opts entities.FilterOptions
	getJSON(t, srv.URL+"/api/filter-options", &opts)
	assert.True(t, opts.Enabled)
	assert.Len(t, opts.Levels, 1)
	assert.Len(t, opts.Subjects, 2)

	var health map[string]interface{}
	resp := getJSON(t, srv.URL+"/health", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/tuition-centres", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
