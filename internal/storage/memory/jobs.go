package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/platform/jobs"
)

var _ jobs.RunStore = (*Store)(nil)

func (s *Store) StartRun(_ context.Context, jobType string, at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.jobRuns[id] = jobs.Run{ID: id, JobType: jobType, Status: jobs.StatusRunning, Details: []byte("{}"), StartedAt: at}
	return id, nil
}

func (s *Store) FinishRun(_ context.Context, id, status string, details []byte, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.jobRuns[id]
	if !ok {
		return apperr.NotFound("job run not found")
	}
	run.Status = status
	run.Details = append([]byte(nil), details...)
	completed := at
	run.CompletedAt = &completed
	s.jobRuns[id] = run
	return nil
}

func (s *Store) ListRuns(_ context.Context, jobType string, limit int) ([]jobs.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]jobs.Run, 0, len(s.jobRuns))
	for _, run := range s.jobRuns {
		if jobType != "" && run.JobType != jobType {
			continue
		}
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
