package rosterhandler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shiftdesk/internal/domain/audit"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/roster"
	"shiftdesk/internal/platform/dates"
	"shiftdesk/internal/transport/http/api"
	"shiftdesk/internal/transport/http/middleware"
	"shiftdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *roster.Service
	Perms   middleware.PermissionChecker
	Audit   *audit.Service
	Today   func() time.Time
}

func NewHandler(service *roster.Service, perms middleware.PermissionChecker, auditSvc *audit.Service, today func() time.Time) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Today: today}
}

type shiftRequest struct {
	EmployeeID  string   `json:"employeeId"`
	EmployeeIDs []string `json:"employeeIds"`
	AreaID      string   `json:"areaId"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
}

type updateRequest struct {
	EmployeeID *string `json:"employeeId"`
	AreaID     *string `json:"areaId"`
	Start      *string `json:"start"`
	End        *string `json:"end"`
	Published  *bool   `json:"published"`
}

type dailyCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type weekResponse struct {
	WeekStart string         `json:"weekStart"`
	Shifts    []roster.Shift `json:"shifts"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/roster", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermRosterRead, h.Perms)).Get("/areas", h.handleListAreas)
		r.With(middleware.RequirePermission(auth.PermRosterRead, h.Perms)).Get("/week", h.handleWeek)
		r.With(middleware.RequirePermission(auth.PermRosterRead, h.Perms)).Get("/counts", h.handleWeekCounts)
		r.With(middleware.RequirePermission(auth.PermRosterRead, h.Perms)).Get("/counts/daily", h.handleDailyCount)
		r.With(middleware.RequirePermission(auth.PermRosterWrite, h.Perms)).Get("/candidates", h.handleCandidates)
		r.With(middleware.RequirePermission(auth.PermRosterRead, h.Perms)).Get("/shifts", h.handleListShifts)
		r.With(middleware.RequirePermission(auth.PermRosterWrite, h.Perms)).Post("/shifts", h.handleCreateShift)
		r.With(middleware.RequirePermission(auth.PermRosterWrite, h.Perms)).Post("/shifts/bulk", h.handleBulkCreate)
		r.With(middleware.RequirePermission(auth.PermRosterRead, h.Perms)).Get("/shifts/{shiftID}", h.handleGetShift)
		r.With(middleware.RequirePermission(auth.PermRosterWrite, h.Perms)).Patch("/shifts/{shiftID}", h.handleUpdateShift)
		r.With(middleware.RequirePermission(auth.PermRosterWrite, h.Perms)).Delete("/shifts/{shiftID}", h.handleDeleteShift)
	})
}

// day reads ?date=, falling back to today.
func (h *Handler) day(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	day, err := shared.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		api.WriteError(w, err, middleware.GetRequestID(r.Context()))
		return time.Time{}, false
	}
	if day.IsZero() {
		day = h.Today()
	}
	return day, true
}

func (h *Handler) handleListAreas(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	areas, err := h.Service.ListAreas(r.Context())
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, areas, requestID)
}

func (h *Handler) handleWeek(w http.ResponseWriter, r *http.Request) {
	day, ok := h.day(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	shifts, err := h.Service.Week(r.Context(), day)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, weekResponse{WeekStart: dates.Format(dates.WeekStart(day)), Shifts: shifts}, requestID)
}

func (h *Handler) handleWeekCounts(w http.ResponseWriter, r *http.Request) {
	day, ok := h.day(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	counts, err := h.Service.WeekCounts(r.Context(), day)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, counts, requestID)
}

func (h *Handler) handleDailyCount(w http.ResponseWriter, r *http.Request) {
	day, ok := h.day(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	count, err := h.Service.DailyCount(r.Context(), day)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, dailyCountResponse{Date: dates.Format(day), Count: count}, requestID)
}

func (h *Handler) handleCandidates(w http.ResponseWriter, r *http.Request) {
	day, ok := h.day(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	candidates, err := h.Service.Candidates(r.Context(), day)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, candidates, requestID)
}

func (h *Handler) handleListShifts(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()
	v := shared.NewValidator()
	filter := roster.Filter{
		EmployeeID: strings.TrimSpace(query.Get("employeeId")),
		AreaID:     strings.TrimSpace(query.Get("areaId")),
	}
	if raw := query.Get("from"); raw != "" {
		filter.From, _ = v.Instant("from", raw)
	}
	if raw := query.Get("to"); raw != "" {
		filter.To, _ = v.Instant("to", raw)
	}
	v.TimeOrder("from", filter.From, "to", filter.To)
	if v.Reject(w, requestID) {
		return
	}
	shifts, err := h.Service.ListShifts(r.Context(), filter)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, shifts, requestID)
}

func (h *Handler) handleGetShift(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	shift, err := h.Service.GetShift(r.Context(), chi.URLParam(r, "shiftID"))
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, shift, requestID)
}

func (h *Handler) parseSlot(v *shared.Validator, payload shiftRequest) (time.Time, time.Time) {
	v.Required("areaId", payload.AreaID, "is required")
	start, _ := v.Instant("start", payload.Start)
	end, _ := v.Instant("end", payload.End)
	return start, end
}

func (h *Handler) handleCreateShift(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload shiftRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	start, end := h.parseSlot(v, payload)
	if v.Reject(w, requestID) {
		return
	}

	planned, err := h.Service.CreateShift(r.Context(), actor, roster.ShiftInput{
		EmployeeID: payload.EmployeeID,
		AreaID:     payload.AreaID,
		Start:      start,
		End:        end,
	})
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, actor.EmployeeID, "roster.shift.create", "shift", planned.Shift.ID, nil, planned.Shift)
	api.Created(w, planned, requestID)
}

func (h *Handler) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload shiftRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	if len(payload.EmployeeIDs) == 0 {
		v.Add("employeeIds", "must list at least one employee")
	}
	start, end := h.parseSlot(v, payload)
	if v.Reject(w, requestID) {
		return
	}

	planned, err := h.Service.CreateShifts(r.Context(), actor, payload.EmployeeIDs, payload.AreaID, start, end)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	for _, p := range planned {
		shared.RecordAudit(r, h.Audit, actor.EmployeeID, "roster.shift.create", "shift", p.Shift.ID, nil, p.Shift)
	}
	api.Created(w, planned, requestID)
}

func (h *Handler) handleUpdateShift(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload updateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	shiftID := chi.URLParam(r, "shiftID")

	v := shared.NewValidator()
	update := roster.ShiftUpdate{EmployeeID: payload.EmployeeID, AreaID: payload.AreaID, Published: payload.Published}
	if payload.Start != nil {
		if start, ok := v.Instant("start", *payload.Start); ok {
			update.Start = &start
		}
	}
	if payload.End != nil {
		if end, ok := v.Instant("end", *payload.End); ok {
			update.End = &end
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	before, err := h.Service.GetShift(r.Context(), shiftID)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	planned, err := h.Service.UpdateShift(r.Context(), actor, shiftID, update)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, actor.EmployeeID, "roster.shift.update", "shift", shiftID, before, planned.Shift)
	api.Success(w, planned, requestID)
}

func (h *Handler) handleDeleteShift(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	shiftID := chi.URLParam(r, "shiftID")
	before, err := h.Service.GetShift(r.Context(), shiftID)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	if err := h.Service.DeleteShift(r.Context(), actor, shiftID); err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, actor.EmployeeID, "roster.shift.delete", "shift", shiftID, before, nil)
	api.Success(w, map[string]string{"id": shiftID}, requestID)
}
