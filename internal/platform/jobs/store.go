package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shiftdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) StartRun(ctx context.Context, jobType string, at time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.Exec(ctx, `
    INSERT INTO job_runs (id, job_type, status, started_at)
    VALUES ($1,$2,$3,$4)
  `, id, jobType, StatusRunning, at)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) FinishRun(ctx context.Context, id, status string, details []byte, at time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = $3
    WHERE id = $4
  `, status, details, at, id)
	return err
}

func (s *Store) ListRuns(ctx context.Context, jobType string, limit int) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, job_type, status, details_json, started_at, completed_at
    FROM job_runs
    WHERE ($1 = '' OR job_type = $1)
    ORDER BY started_at DESC
    LIMIT $2
  `, jobType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &run.Details, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
