package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

type errorResponse struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeJSON(w, status, errorResponse{
		Message:   message,
		Code:      code,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		constraintErr *domain.ConstraintError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, validationErr.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	case errors.As(err, &notFoundErr):
		writeError(w, r, notFoundErr.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &constraintErr):
		writeError(w, r, constraintErr.Error(), "CONSTRAINT_VIOLATION", http.StatusBadRequest)
	case errors.Is(err, domain.ErrUnavailable):
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, r, "storage unavailable", "UNAVAILABLE", http.StatusServiceUnavailable)
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
