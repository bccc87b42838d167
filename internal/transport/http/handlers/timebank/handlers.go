package timebankhandler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shiftdesk/internal/domain/audit"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/timebank"
	"shiftdesk/internal/transport/http/api"
	"shiftdesk/internal/transport/http/middleware"
	"shiftdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *timebank.Service
	Perms   middleware.PermissionChecker
	Audit   *audit.Service
}

func NewHandler(service *timebank.Service, perms middleware.PermissionChecker, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

type currentResponse struct {
	ClockedIn bool                `json:"clockedIn"`
	Entry     *timebank.TimeEntry `json:"entry,omitempty"`
}

type leaveRequest struct {
	Date  string   `json:"date"`
	Hours *float64 `json:"hours"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/timebank", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTimeClock, h.Perms)).Post("/clock-in", h.handleClockIn)
		r.With(middleware.RequirePermission(auth.PermTimeClock, h.Perms)).Post("/clock-out", h.handleClockOut)
		r.With(middleware.RequirePermission(auth.PermTimeClock, h.Perms)).Get("/current", h.handleCurrent)
		r.With(middleware.RequirePermission(auth.PermTimeClock, h.Perms)).Get("/summary", h.handleSummary)
		r.With(middleware.RequirePermission(auth.PermTimeClock, h.Perms)).Get("/entries", h.handleEntries)
	})
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRequest, h.Perms)).Get("/", h.handleListLeave)
		r.With(middleware.RequirePermission(auth.PermLeaveRequest, h.Perms)).Post("/", h.handleRequestLeave)
		r.With(middleware.RequirePermission(auth.PermLeaveDecide, h.Perms)).Post("/{requestID}/approve", h.resolve(true))
		r.With(middleware.RequirePermission(auth.PermLeaveDecide, h.Perms)).Post("/{requestID}/reject", h.resolve(false))
	})
}

func (h *Handler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	entry, err := h.Service.ClockIn(r.Context(), actor)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, actor.EmployeeID, "timebank.clock_in", "time_entry", entry.ID, nil, entry)
	api.Created(w, entry, requestID)
}

func (h *Handler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	entry, err := h.Service.ClockOut(r.Context(), actor)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, actor.EmployeeID, "timebank.clock_out", "time_entry", entry.ID, nil, entry)
	api.Success(w, entry, requestID)
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	entry, open, err := h.Service.Current(r.Context(), actor)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	out := currentResponse{ClockedIn: open}
	if open {
		out.Entry = &entry
	}
	api.Success(w, out, requestID)
}

// monthQuery reads ?employeeId= and ?month=; the employee defaults to the actor.
func monthQuery(r *http.Request, actor auth.Actor) (string, time.Time, error) {
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	month, err := shared.ParseMonth(r.URL.Query().Get("month"))
	return employeeID, month, err
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	employeeID, month, err := monthQuery(r, actor)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	summary, err := h.Service.MonthlySummary(r.Context(), actor, employeeID, month)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, summary, requestID)
}

func (h *Handler) handleEntries(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	employeeID, month, err := monthQuery(r, actor)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	entries, err := h.Service.Entries(r.Context(), actor, employeeID, month)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, entries, requestID)
}

func (h *Handler) handleListLeave(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	queue, _ := strconv.ParseBool(r.URL.Query().Get("queue"))
	requests, err := h.Service.ListLeave(r.Context(), actor, queue)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, requests, requestID)
}

func (h *Handler) handleRequestLeave(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload leaveRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	day, _ := v.Date("date", payload.Date)
	if v.Reject(w, requestID) {
		return
	}

	req, err := h.Service.RequestLeave(r.Context(), actor, day, payload.Hours)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, actor.EmployeeID, "leave.request", "leave_request", req.ID, nil, req)
	api.Created(w, req, requestID)
}

func (h *Handler) resolve(approved bool) http.HandlerFunc {
	action := "leave.reject"
	if approved {
		action = "leave.approve"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.Actor(w, r)
		if !ok {
			return
		}
		requestID := middleware.GetRequestID(r.Context())
		leaveID := chi.URLParam(r, "requestID")
		req, err := h.Service.ResolveLeave(r.Context(), actor, leaveID, approved)
		if err != nil {
			api.WriteError(w, err, requestID)
			return
		}
		shared.RecordAudit(r, h.Audit, actor.EmployeeID, action, "leave_request", leaveID, nil, req)
		api.Success(w, req, requestID)
	}
}
