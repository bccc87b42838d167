package swaphandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shiftdesk/internal/domain/audit"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/swap"
	"shiftdesk/internal/transport/http/api"
	"shiftdesk/internal/transport/http/middleware"
	"shiftdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *swap.Service
	Perms   middleware.PermissionChecker
	Audit   *audit.Service
}

func NewHandler(service *swap.Service, perms middleware.PermissionChecker, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

type offerRequest struct {
	ShiftID string `json:"shiftId"`
}

type transition func(ctx context.Context, actor auth.Actor, offerID string) (swap.Offer, error)

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/swaps", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermSwapRequest, h.Perms)).Post("/", h.handleOffer)
		r.With(middleware.RequirePermission(auth.PermSwapRequest, h.Perms)).Get("/market", h.list(h.Service.ListClaimable))
		r.With(middleware.RequirePermission(auth.PermSwapRequest, h.Perms)).Get("/mine", h.list(h.Service.ListMine))
		r.With(middleware.RequirePermission(auth.PermSwapDecide, h.Perms)).Get("/pending", h.list(h.Service.ListPending))
		r.With(middleware.RequirePermission(auth.PermSwapRequest, h.Perms)).Post("/{offerID}/claim", h.decide("swap.claim", h.Service.Claim))
		r.With(middleware.RequirePermission(auth.PermSwapDecide, h.Perms)).Post("/{offerID}/approve", h.decide("swap.approve", h.Service.Approve))
		r.With(middleware.RequirePermission(auth.PermSwapDecide, h.Perms)).Post("/{offerID}/reject", h.decide("swap.reject", h.Service.Reject))
	})
}

func (h *Handler) handleOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload offerRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	v.Required("shiftId", payload.ShiftID, "is required")
	if v.Reject(w, requestID) {
		return
	}

	offer, err := h.Service.Offer(r.Context(), actor, payload.ShiftID)
	if err != nil {
		api.WriteError(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, actor.EmployeeID, "swap.offer", "swap_offer", offer.ID, nil, offer)
	api.Created(w, offer, requestID)
}

// decide runs a state transition on the offer named in the path.
func (h *Handler) decide(action string, fn transition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.Actor(w, r)
		if !ok {
			return
		}
		requestID := middleware.GetRequestID(r.Context())
		offerID := chi.URLParam(r, "offerID")
		offer, err := fn(r.Context(), actor, offerID)
		if err != nil {
			api.WriteError(w, err, requestID)
			return
		}
		shared.RecordAudit(r, h.Audit, actor.EmployeeID, action, "swap_offer", offerID, nil, offer)
		api.Success(w, offer, requestID)
	}
}

func (h *Handler) list(fn func(ctx context.Context, actor auth.Actor) ([]swap.Offer, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.Actor(w, r)
		if !ok {
			return
		}
		requestID := middleware.GetRequestID(r.Context())
		offers, err := fn(r.Context(), actor)
		if err != nil {
			api.WriteError(w, err, requestID)
			return
		}
		api.Success(w, offers, requestID)
	}
}
