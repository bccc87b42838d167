package availabilityhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shiftdesk/internal/domain/audit"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/availability"
	"shiftdesk/internal/platform/dates"
	"shiftdesk/internal/transport/http/api"
	"shiftdesk/internal/transport/http/middleware"
	"shiftdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *availability.Service
	Perms   middleware.PermissionChecker
	Audit   *audit.Service
}

func NewHandler(service *availability.Service, perms middleware.PermissionChecker, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

type setRequest struct {
	EmployeeID string  `json:"employeeId"`
	Status     *string `json:"status"`
	Note       *string `json:"note"`
}

type calendarResponse struct {
	EmployeeID string             `json:"employeeId"`
	From       string             `json:"from"`
	Days       []availability.Day `json:"days"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/availability", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAvailabilityRead, h.Perms)).Get("/me", h.handleMyCalendar)
		r.With(middleware.RequirePermission(auth.PermAvailabilityRead, h.Perms)).Get("/employees/{employeeID}", h.handleEmployeeCalendar)
		r.With(middleware.RequirePermission(auth.PermRosterWrite, h.Perms)).Get("/", h.handleForDate)
		r.With(middleware.RequirePermission(auth.PermAvailabilityWrite, h.Perms)).Put("/{date}", h.handleSet)
	})
}

func (h *Handler) handleMyCalendar(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	h.writeCalendar(w, r, actor.EmployeeID)
}

func (h *Handler) handleEmployeeCalendar(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	if !actor.Acts(employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's availability", middleware.GetRequestID(r.Context()))
		return
	}
	h.writeCalendar(w, r, employeeID)
}

func (h *Handler) writeCalendar(w http.ResponseWriter, r *http.Request, employeeID string) {
	requestID := middleware.GetRequestID(r.Context())
	from, err := shared.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	if from.IsZero() {
		from = h.Service.Today()
	}
	days, err := h.Service.Calendar(r.Context(), employeeID, from)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, calendarResponse{EmployeeID: employeeID, From: dates.Format(from), Days: days}, requestID)
}

func (h *Handler) handleForDate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	day, _ := v.Date("date", r.URL.Query().Get("date"))
	if v.Reject(w, requestID) {
		return
	}
	entries, err := h.Service.ForDate(r.Context(), day)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, entries, requestID)
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	day, _ := v.Date("date", chi.URLParam(r, "date"))
	if v.Reject(w, requestID) {
		return
	}
	var payload setRequest
	if r.ContentLength != 0 && !shared.DecodeJSON(w, r, &payload) {
		return
	}

	entry, err := h.Service.SetStatus(r.Context(), actor, payload.EmployeeID, day, availability.Change{Status: payload.Status, Note: payload.Note})
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, actor.EmployeeID, "availability.set", "availability", entry.EmployeeID+"/"+dates.Format(day), nil, entry)
	api.Success(w, entry, requestID)
}
