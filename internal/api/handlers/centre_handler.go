package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/tuitioncentres/backend/pkg/errors"
)

// CentreService is the directory behaviour the handler exposes over HTTP
type CentreService interface {
	Search(ctx context.Context, filters entities.SearchFilters) (*entities.SearchResult, error)
	GetCentre(ctx context.Context, id string) (*entities.PublicCentre, error)
	FilterOptions(ctx context.Context) (*entities.FilterOptions, error)
}

// Limits bounds the page size a caller may request
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits mirrors the query package defaults
var DefaultLimits = Limits{Default: query.DefaultLimit, Max: query.MaxLimit}

// CentreHandler handles tuition centre HTTP requests
type CentreHandler struct {
	service CentreService
	limits  Limits
}

// NewCentreHandler creates a new centre handler
func NewCentreHandler(service CentreService, limits Limits) *CentreHandler {
	if limits.Default < 1 {
		limits.Default = query.DefaultLimit
	}
	if limits.Max < limits.Default {
		limits.Max = limits.Default
	}
	return &CentreHandler{service: service, limits: limits}
}

// SearchCentres handles GET /api/tuition-centres
func (h *CentreHandler) SearchCentres(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := query.DefaultPage
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, CodeInvalidPage,
				"Page parameter must be a positive integer", map[string]interface{}{"page": raw})
			return
		}
		page = n
	}

	limit := h.limits.Default
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, CodeInvalidLimit,
				"Limit parameter must be a positive integer", map[string]interface{}{"limit": raw})
			return
		}
		if n > h.limits.Max {
			respondWithError(w, http.StatusBadRequest, CodeLimitExceeded,
				"Limit parameter cannot exceed "+strconv.Itoa(h.limits.Max),
				map[string]interface{}{"limit": n, "max": h.limits.Max})
			return
		}
		limit = n
	}

	filters := entities.SearchFilters{
		Search:   q.Get("search"),
		Levels:   splitList(q.Get("levels")),
		Subjects: splitList(q.Get("subjects")),
		Page:     page,
		Limit:    limit,
	}

	result, err := h.service.Search(r.Context(), filters)
	if err != nil {
		h.respondWithFailure(w, r, err, nil)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetCentre handles GET /api/tuition-centres/{id}
func (h *CentreHandler) GetCentre(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		respondWithError(w, http.StatusBadRequest, CodeInvalidID,
			"Tuition centre ID is required and must be a valid string", map[string]interface{}{"id": id})
		return
	}
	if !isCanonicalUUID(id) {
		respondWithError(w, http.StatusBadRequest, CodeInvalidIDFormat,
			"Tuition centre ID must be a valid UUID format", map[string]interface{}{"id": id})
		return
	}

	centre, err := h.service.GetCentre(r.Context(), id)
	if err != nil {
		h.respondWithFailure(w, r, err, map[string]interface{}{"id": id})
		return
	}
	respondWithJSON(w, http.StatusOK, centre)
}

// FilterOptions handles GET /api/filter-options
func (h *CentreHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.respondWithFailure(w, r, err, nil)
		return
	}
	respondWithJSON(w, http.StatusOK, opts)
}

// respondWithFailure maps service errors to status codes without exposing internals
func (h *CentreHandler) respondWithFailure(w http.ResponseWriter, r *http.Request, err error, details map[string]interface{}) {
	if apperrors.IsNotFound(err) {
		respondWithError(w, http.StatusNotFound, CodeNotFound, "Tuition centre not found", details)
		return
	}

	observability.LoggerFromContext(r.Context()).Error().
		Err(err).
		Str("path", r.URL.Path).
		Str("query", r.URL.RawQuery).
		Msg("request failed")

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type != apperrors.ErrorTypeValidation {
		respondWithError(w, http.StatusInternalServerError, CodeDatabaseError,
			"A database error occurred while processing your request", nil)
		return
	}
	respondWithError(w, http.StatusInternalServerError, CodeInternalError,
		"An unexpected error occurred while processing your request", nil)
}

// splitList parses a comma separated parameter, dropping blanks
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// isCanonicalUUID accepts only the 8-4-4-4-12 hex form
func isCanonicalUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
