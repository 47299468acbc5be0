package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"hrforms/internal/domain/request"
	"hrforms/internal/transport/http/api"
)

// WriteError maps a request engine error onto the response envelope.
// Anything unrecognised is logged and reported as an internal error.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestIDFrom(r)

	var verr *request.ValidationError
	if errors.As(err, &verr) {
		FailValidation(w, requestID, []ValidationIssue{{Field: verr.Field, Rule: string(verr.Rule), Reason: verr.Detail}})
		return
	}
	var terr *request.TransitionError
	if errors.As(err, &terr) {
		api.FailWithDetails(w, http.StatusConflict, "transition_denied", terr.Error(), map[string]any{"reason": terr.Reason}, requestID)
		return
	}

	switch {
	case errors.Is(err, request.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", requestID)
	case errors.Is(err, request.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
	case errors.Is(err, request.ErrConfirmRequired):
		api.Fail(w, http.StatusPreconditionRequired, "confirmation_required", "repeat the request with confirm=true", requestID)
	case errors.Is(err, request.ErrPersistence):
		slog.Error("request store failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "persistence_failed", "the request could not be saved", requestID)
	default:
		slog.Error("unhandled error", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", requestID)
	}
}
