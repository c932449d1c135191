package services

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// respondFailure reports a domain-level failure. The HTTP status stays 200;
// clients branch on the success flag.
func respondFailure(w http.ResponseWriter, message string) {
	respondJSON(w, map[string]any{
		"success": false,
		"message": message,
	})
}

// respondError reports an unexpected error with its raw text under the
// "error" key, matching the catch-all behavior of the API.
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}
