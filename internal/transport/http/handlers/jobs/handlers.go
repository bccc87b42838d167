package jobshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shiftdesk/internal/domain/audit"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/platform/jobs"
	"shiftdesk/internal/transport/http/api"
	"shiftdesk/internal/transport/http/middleware"
	"shiftdesk/internal/transport/http/shared"
)

type Handler struct {
	Service   *jobs.Service
	Retention jobs.RunFunc
	Perms     middleware.PermissionChecker
	Audit     *audit.Service
}

func NewHandler(service *jobs.Service, retention jobs.RunFunc, perms middleware.PermissionChecker, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Retention: retention, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermStaffWrite, h.Perms))
		r.Get("/runs", h.handleListRuns)
		r.Post("/availability-retention/run", h.handleRunRetention)
	})
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	runs, err := h.Service.History(r.Context(), r.URL.Query().Get("jobType"), page.Limit)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, runs, requestID)
}

func (h *Handler) handleRunRetention(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	details, err := h.Service.RunNow(r.Context(), jobs.JobAvailabilityRetention, h.Retention)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, actor.EmployeeID, "jobs.availability_retention.run", "job", jobs.JobAvailabilityRetention, nil, details)
	api.Success(w, details, requestID)
}
