package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/corpus/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// RequireUserID extracts the caller identity from the X-User-ID header.
// Returns empty string after writing a 401 when the header is missing.
func RequireUserID(w http.ResponseWriter, r *http.Request) string {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
	}
	return userID
}

// WriteServiceError maps service-layer errors to HTTP status codes.
func WriteServiceError(w http.ResponseWriter, err error) {
	var completionErr *models.CompletionServiceError
	var embeddingErr *models.EmbeddingServiceError
	var extractionErr *models.ExtractionError

	switch {
	case errors.Is(err, models.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrAccessDenied):
		WriteError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &extractionErr):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &completionErr), errors.As(err, &embeddingErr):
		WriteError(w, http.StatusBadGateway, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
