package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

// envelope is the uniform wire shape: {"ok": true, "data": ...} on success
// and {"ok": false, "error": {...}} on failure.
type envelope struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func fieldErrors(errs []domain.FieldError) []fieldError {
	out := make([]fieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, fieldError{Field: e.Field, Message: e.Message})
	}
	return out
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{OK: true, Data: data})
}

// respondError maps domain errors to HTTP status codes. Unknown errors are
// logged and reported as a generic 500 so internals never leak to clients.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, envelope{OK: false, Error: &errorBody{
			Message: "validation failed",
			Fields:  fieldErrors(vErr.Errors),
		}})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, envelope{OK: false, Error: &errorBody{
			Message: "validation failed",
		}})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, envelope{OK: false, Error: &errorBody{
			Message: "unauthorized",
		}})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, envelope{OK: false, Error: &errorBody{
			Message: "forbidden",
		}})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{OK: false, Error: &errorBody{
			Message: "not found",
		}})
	default:
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, envelope{OK: false, Error: &errorBody{
			Message: "internal server error",
		}})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
