package authhandler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/transport/http/api"
	"shiftdesk/internal/transport/http/middleware"
	"shiftdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
	Staff   *staff.Service
}

func NewHandler(service *auth.Service, staffSvc *staff.Service) *Handler {
	return &Handler{Service: service, Staff: staffSvc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	Actor    auth.Actor     `json:"actor"`
	Employee staff.Employee `json:"employee"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.Get("/me", h.HandleMe)
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestID) {
		return
	}

	result, err := h.Service.Login(r.Context(), strings.TrimSpace(payload.Email), payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
			return
		}
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	emp, err := h.Staff.Get(r.Context(), actor.EmployeeID)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, meResponse{Actor: actor, Employee: emp}, requestID)
}
