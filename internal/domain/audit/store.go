package audit

import (
	"context"
	"fmt"

	"shiftdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) RecordAudit(ctx context.Context, evt Event) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (id, actor_id, action, entity_type, entity_id, before_json, after_json, request_id, ip, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
  `, evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, nullJSON(evt.Before), nullJSON(evt.After), evt.RequestID, evt.IP, evt.CreatedAt)
	if err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	query, args := BuildQuery(filter, limit, offset)
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		var before, after []byte
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &before, &after); err != nil {
			return nil, err
		}
		evt.Before = before
		evt.After = after
		out = append(out, evt)
	}
	return out, rows.Err()
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
