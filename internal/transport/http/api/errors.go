package api

import (
	"net/http"

	"go.uber.org/zap"

	"shiftdesk/internal/domain/apperr"
)

// Status maps a domain error kind to its HTTP status and error code.
func Status(kind apperr.Kind) (int, string) {
	switch kind {
	case apperr.KindPermissionDenied:
		return http.StatusForbidden, "forbidden"
	case apperr.KindInvalidRange:
		return http.StatusBadRequest, "invalid_range"
	case apperr.KindInvalidState:
		return http.StatusConflict, "invalid_state"
	case apperr.KindConflict:
		return http.StatusConflict, "conflict"
	case apperr.KindNotFound:
		return http.StatusNotFound, "not_found"
	case apperr.KindInsufficientBalance:
		return http.StatusUnprocessableEntity, "insufficient_balance"
	}
	return http.StatusInternalServerError, "internal_error"
}

// WriteError renders err as an envelope. Errors outside the domain taxonomy
// are logged and hidden behind a generic message.
func WriteError(w http.ResponseWriter, err error, requestID string) {
	kind := apperr.KindOf(err)
	status, code := Status(kind)
	if kind == "" {
		zap.L().Error("request failed", zap.String("request_id", requestID), zap.Error(err))
	}
	Fail(w, status, code, apperr.Message(err), requestID)
}
