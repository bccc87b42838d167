package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"shiftdesk/internal/platform/logging"
)

const JobAvailabilityRetention = "availability_retention"

type RunFunc func(context.Context) (any, error)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// RunStore keeps a history of job runs. It is optional.
type RunStore interface {
	StartRun(ctx context.Context, jobType string, at time.Time) (string, error)
	FinishRun(ctx context.Context, id, status string, details []byte, at time.Time) error
	ListRuns(ctx context.Context, jobType string, limit int) ([]Run, error)
}

type Service struct {
	Runs      RunStore
	Logger    *zap.Logger
	Now       func() time.Time
	queue     chan job
	schedules []schedule
}

type job struct {
	Type string
	Run  RunFunc
}

type schedule struct {
	jobType  string
	interval time.Duration
	run      RunFunc
}

func New(runs RunStore, logger *zap.Logger) *Service {
	return &Service{
		Runs:   runs,
		Logger: logging.OrNop(logger),
		Now:    time.Now,
		queue:  make(chan job, 128),
	}
}

// Every registers run to be enqueued once per interval. Call before Run.
func (s *Service) Every(jobType string, interval time.Duration, run RunFunc) {
	if interval <= 0 {
		return
	}
	s.schedules = append(s.schedules, schedule{jobType: jobType, interval: interval, run: run})
}

// Run starts the worker and the schedulers and blocks until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.worker(ctx)
	}()
	for _, sc := range s.schedules {
		wg.Add(1)
		go func(sc schedule) {
			defer wg.Done()
			s.scheduleEvery(ctx, sc)
		}(sc)
	}
	wg.Wait()
	return nil
}

func (s *Service) Enqueue(jobType string, run RunFunc) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		s.Logger.Warn("job queue full", zap.String("job_type", jobType))
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// History returns the most recent runs, newest first.
func (s *Service) History(ctx context.Context, jobType string, limit int) ([]Run, error) {
	if s.Runs == nil {
		return []Run{}, nil
	}
	return s.Runs.ListRuns(ctx, jobType, limit)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.Logger.Warn("job run failed", zap.String("job_type", j.Type), zap.Error(err))
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.Runs != nil {
		id, err := s.Runs.StartRun(ctx, j.Type, s.Now().UTC())
		if err != nil {
			s.Logger.Warn("job run insert failed", zap.Error(err))
		}
		runID = id
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		s.Logger.Warn("job details marshal failed", zap.Error(marshalErr))
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.Runs.FinishRun(ctx, runID, status, detailsJSON, s.Now().UTC()); updErr != nil {
			s.Logger.Warn("job run update failed", zap.Error(updErr))
		}
	}
	s.Logger.Debug("job finished", zap.String("job_type", j.Type), zap.String("status", status))
	return details, err
}

func (s *Service) scheduleEvery(ctx context.Context, sc schedule) {
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(sc.jobType, sc.run)
		}
	}
}
