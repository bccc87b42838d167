package staffhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shiftdesk/internal/domain/audit"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/domain/timebank"
	"shiftdesk/internal/transport/http/api"
	"shiftdesk/internal/transport/http/middleware"
	"shiftdesk/internal/transport/http/shared"
)

type Handler struct {
	Service  *staff.Service
	TimeBank *timebank.Service
	Perms    middleware.PermissionChecker
	Audit    *audit.Service
}

func NewHandler(service *staff.Service, timeBank *timebank.Service, perms middleware.PermissionChecker, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, TimeBank: timeBank, Perms: perms, Audit: auditSvc}
}

// directoryEntry is what employees see of their colleagues.
type directoryEntry struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type adjustmentRequest struct {
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}

type adjustmentResponse struct {
	EmployeeID      string  `json:"employeeId"`
	OvertimeBalance float64 `json:"overtimeBalance"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/staff", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermStaffRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermStaffWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermStaffBalances, h.Perms)).Get("/balances", h.handleBalances)
		r.With(middleware.RequirePermission(auth.PermStaffRead, h.Perms)).Get("/{employeeID}/balance-adjustments", h.handleListAdjustments)
		r.With(middleware.RequirePermission(auth.PermBalanceAdjust, h.Perms)).Post("/{employeeID}/balance-adjustments", h.handleAdjust)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	employees, err := h.Service.List(r.Context())
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	if actor.CanManage() {
		api.Success(w, employees, requestID)
		return
	}
	out := make([]directoryEntry, 0, len(employees))
	for _, emp := range employees {
		out = append(out, directoryEntry{ID: emp.ID, FullName: emp.FullName, Role: emp.Role})
	}
	api.Success(w, out, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload staff.NewEmployee
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "is required")
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestID) {
		return
	}

	emp, err := h.Service.Create(r.Context(), actor, payload)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, actor.EmployeeID, "staff.create", "employee", emp.ID, nil, emp)
	api.Created(w, emp, requestID)
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	balances, err := h.Service.Balances(r.Context(), actor)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, balances, requestID)
}

func (h *Handler) handleListAdjustments(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	adjustments, err := h.TimeBank.Adjustments(r.Context(), actor, chi.URLParam(r, "employeeID"))
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, adjustments, requestID)
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload adjustmentRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	balance, err := h.TimeBank.AdjustBalance(r.Context(), actor, employeeID, payload.Delta, payload.Reason)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	out := adjustmentResponse{EmployeeID: employeeID, OvertimeBalance: balance}
	shared.RecordAudit(r, h.Audit, actor.EmployeeID, "timebank.balance.adjust", "employee", employeeID, nil, map[string]any{
		"delta":   payload.Delta,
		"reason":  payload.Reason,
		"balance": balance,
	})
	api.Created(w, out, requestID)
}
