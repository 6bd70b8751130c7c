// Package handlers is the HTTP surface next to the WebSocket endpoint.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/omega-realm/worldserver/internal/apperrors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusOf maps a domain failure to an HTTP status
func statusOf(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.Internal:
		return http.StatusInternalServerError
	case apperrors.DuplicateUsername:
		return http.StatusConflict
	case apperrors.InvalidCredentials, apperrors.InvalidSession:
		return http.StatusUnauthorized
	case apperrors.CharacterNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func writeFailure(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] %v", err)
	}
	writeError(w, status, apperrors.MessageOf(err))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
