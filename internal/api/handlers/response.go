package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error codes returned in the error body
const (
	CodeInvalidPage     = "INVALID_PAGE"
	CodeInvalidLimit    = "INVALID_LIMIT"
	CodeLimitExceeded   = "LIMIT_EXCEEDED"
	CodeInvalidID       = "INVALID_ID"
	CodeInvalidIDFormat = "INVALID_ID_FORMAT"
	CodeNotFound        = "NOT_FOUND"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeInternalError   = "INTERNAL_SERVER_ERROR"
)

// ErrorBody is the JSON error envelope
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failed request
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	respondWithJSON(w, statusCode, ErrorBody{Error: ErrorDetail{Code: code, Message: message, Details: details}})
}
