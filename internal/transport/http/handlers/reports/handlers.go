package reportshandler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/reports"
	"shiftdesk/internal/platform/dates"
	"shiftdesk/internal/transport/http/api"
	"shiftdesk/internal/transport/http/middleware"
	"shiftdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionChecker
	Today   func() time.Time
}

func NewHandler(service *reports.Service, perms middleware.PermissionChecker, today func() time.Time) *Handler {
	return &Handler{Service: service, Perms: perms, Today: today}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/roster.pdf", h.handleRosterPDF)
		r.With(middleware.RequirePermission(auth.PermTimeClock, h.Perms)).Get("/timesheet.csv", h.handleTimesheetCSV)
	})
}

// handleRosterPDF renders into a buffer first so failures still produce an envelope.
func (h *Handler) handleRosterPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	day, err := shared.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	if day.IsZero() {
		day = h.Today()
	}

	var buf bytes.Buffer
	if err := h.Service.RosterPDF(r.Context(), actor, day, &buf); err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=roster-%s.pdf", dates.Format(dates.WeekStart(day))))
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleTimesheetCSV(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	month, err := shared.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	if month.IsZero() {
		month = h.Today()
	}

	var buf bytes.Buffer
	if err := h.Service.TimesheetCSV(r.Context(), actor, employeeID, month, &buf); err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=timesheet-%s.csv", month.Format("2006-01")))
	_, _ = w.Write(buf.Bytes())
}
