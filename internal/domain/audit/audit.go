package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/platform/logging"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
}

type StoreAPI interface {
	RecordAudit(ctx context.Context, evt Event) error
	ListAudit(ctx context.Context, filter Filter, limit, offset int) ([]Event, error)
}

type Service struct {
	Store  StoreAPI
	Now    func() time.Time
	Logger *zap.Logger
}

func New(store StoreAPI, logger *zap.Logger) *Service {
	return &Service{Store: store, Now: time.Now, Logger: logging.OrNop(logger)}
}

// Record appends an audit event. before and after are stored as JSON snapshots.
func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error {
	evt := Event{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestID,
		IP:         ip,
		CreatedAt:  s.Now().UTC(),
	}
	if before != nil {
		payload, err := json.Marshal(before)
		if err != nil {
			return err
		}
		evt.Before = payload
	}
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		evt.After = payload
	}
	if err := s.Store.RecordAudit(ctx, evt); err != nil {
		s.Logger.Warn("audit record failed", zap.String("action", action), zap.String("entity_id", entityID), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, actor auth.Actor, filter Filter, limit, offset int) ([]Event, error) {
	if !actor.IsOwner() {
		return nil, apperr.PermissionDenied("only owners can read the audit trail")
	}
	return s.Store.ListAudit(ctx, filter, limit, offset)
}

// BuildQuery renders the filtered audit query for the Postgres store.
func BuildQuery(filter Filter, limit, offset int) (string, []any) {
	query := `SELECT id, actor_id, action, entity_type, entity_id, request_id, ip, created_at, before_json, after_json FROM audit_events WHERE 1=1`
	var args []any
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		query += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		query += fmt.Sprintf(" AND actor_id = $%d", len(args))
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return query, args
}
