package api

import (
	"errors"
	"net/http"

	"flexidb/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var policy *domain.PolicyError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &policy):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the caller-facing message of err and, for
// infrastructure failures, the underlying driver text.
func errorMessage(err error) (message, detail string) {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var policy *domain.PolicyError
	var store *domain.StoreError

	switch {
	case errors.As(err, &notFound):
		return notFound.Message, ""
	case errors.As(err, &validation):
		return validation.Message, ""
	case errors.As(err, &conflict):
		return conflict.Message, ""
	case errors.As(err, &policy):
		return policy.Message, ""
	case errors.As(err, &store):
		if store.Err != nil {
			return store.Message, store.Err.Error()
		}
		return store.Message, ""
	default:
		return "Internal server error.", err.Error()
	}
}

// writeError renders err as a failed envelope. Infrastructure errors are
// logged and carry an "error" field unless redaction is on.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatusFromDomainError(err)
	message, detail := errorMessage(err)
	if code >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", domain.RequestIDFromContext(r.Context()),
			"error", err,
		)
		if detail != "" && !h.redactStoreErrors {
			writeEnvelope(w, code, false, message, field{"error", detail})
			return
		}
	}
	writeEnvelope(w, code, false, message)
}
