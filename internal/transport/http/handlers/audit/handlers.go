package audithandler

import (
	"encoding/csv"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shiftdesk/internal/domain/audit"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/transport/http/api"
	"shiftdesk/internal/transport/http/middleware"
	"shiftdesk/internal/transport/http/shared"
)

const exportLimit = 10000

type Handler struct {
	Service *audit.Service
	Perms   middleware.PermissionChecker
}

func NewHandler(service *audit.Service, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/events", h.handleListEvents)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/events/export", h.handleExportEvents)
	})
}

func filterFrom(r *http.Request) audit.Filter {
	query := r.URL.Query()
	return audit.Filter{
		Action:     query.Get("action"),
		EntityType: query.Get("entityType"),
		EntityID:   query.Get("entityId"),
		ActorID:    query.Get("actorId"),
	}
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 100, 500)
	events, err := h.Service.List(r.Context(), actor, filterFrom(r), page.Limit, page.Offset)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, events, requestID)
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	events, err := h.Service.List(r.Context(), actor, filterFrom(r), exportLimit, 0)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		zap.L().Warn("audit export header failed", zap.Error(err))
	}
	for _, evt := range events {
		if err := writer.Write([]string{evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.IP, evt.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			zap.L().Warn("audit export row failed", zap.Error(err))
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		zap.L().Warn("audit export flush failed", zap.Error(err))
	}
}
