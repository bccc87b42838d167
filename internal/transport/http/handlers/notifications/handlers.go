package notificationshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/notifications"
	"shiftdesk/internal/transport/http/api"
	"shiftdesk/internal/transport/http/middleware"
	"shiftdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
	Perms   middleware.PermissionChecker
}

func NewHandler(service *notifications.Service, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermNotificationsRead, h.Perms))
		r.Get("/", h.handleList)
		r.Get("/unread-count", h.handleUnreadCount)
		r.Post("/{notificationID}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 100, 500)

	unread, err := h.Service.CountUnread(r.Context(), actor)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	items, err := h.Service.List(r.Context(), actor, page.Limit, page.Offset)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	w.Header().Set("X-Unread-Count", strconv.Itoa(unread))
	api.Success(w, items, requestID)
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	unread, err := h.Service.CountUnread(r.Context(), actor)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, map[string]int{"unread": unread}, requestID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Service.MarkRead(r.Context(), actor, chi.URLParam(r, "notificationID")); err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "read"}, requestID)
}
