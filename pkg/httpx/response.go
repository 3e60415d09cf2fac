package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorResponse is the standard error body for all endpoints, following
// the OAuth2 error envelope shape.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, code int, err, description string) {
	WriteJSON(w, code, ErrorResponse{Error: err, ErrorDescription: description})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Responses carrying authorization codes must never be cached.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// ParseSpaceDelimitedFields splits a space-delimited string into fields,
// such as an OAuth2 scope list. Returns nil for empty input.
func ParseSpaceDelimitedFields(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
