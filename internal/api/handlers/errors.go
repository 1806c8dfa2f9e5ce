package handlers

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as the response body with the given status
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// the status line is already sent, nothing useful can be done on failure
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a standardized JSON error response
func WriteError(w http.ResponseWriter, statusCode int, errorType, message string) {
	WriteJSON(w, statusCode, map[string]string{
		"error":   errorType,
		"message": message,
	})
}
