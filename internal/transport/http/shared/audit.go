package shared

import (
	"net/http"

	"go.uber.org/zap"

	"shiftdesk/internal/domain/audit"
	"shiftdesk/internal/transport/http/middleware"
)

// RecordAudit writes an audit event for a completed mutation. Failures are
// logged and never change the response.
func RecordAudit(r *http.Request, svc *audit.Service, actorID, action, entityType, entityID string, before, after any) {
	if svc == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := svc.Record(r.Context(), actorID, action, entityType, entityID, requestID, ClientIP(r), before, after); err != nil {
		zap.L().Warn("audit record failed",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
