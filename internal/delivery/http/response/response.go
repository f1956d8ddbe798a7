package response

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Message writes a `{"message": ...}` response
func Message(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, map[string]string{
		"message": message,
	})
}

// NotFound writes the not-found body for the named entity
func NotFound(w http.ResponseWriter, entity string) {
	Message(w, http.StatusNotFound, fmt.Sprintf("%s not found.", entity))
}

// ValidationFailed writes the validation error body with per-field details
func ValidationFailed(w http.ResponseWriter, details []string) {
	JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"message": "Validation error(s) occurred.",
		"details": details,
	})
}

// InternalError writes the generic, non-leaking 500 body
func InternalError(w http.ResponseWriter) {
	Message(w, http.StatusInternalServerError, "Internal server error.")
}
