package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRuns struct {
	mu       sync.Mutex
	finished map[string]string
}

func (f *fakeRuns) StartRun(_ context.Context, jobType string, _ time.Time) (string, error) {
	return "run-" + jobType, nil
}

func (f *fakeRuns) FinishRun(_ context.Context, id, status string, _ []byte, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finished == nil {
		f.finished = map[string]string{}
	}
	f.finished[id] = status
	return nil
}

func (f *fakeRuns) ListRuns(_ context.Context, jobType string, _ int) ([]Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Run
	for id, status := range f.finished {
		if jobType == "" || id == "run-"+jobType {
			out = append(out, Run{ID: id, Status: status})
		}
	}
	return out, nil
}

func TestRunNowRecordsOutcome(t *testing.T) {
	runs := &fakeRuns{}
	svc := New(runs, nil)

	details, err := svc.RunNow(context.Background(), "ok", func(context.Context) (any, error) {
		return map[string]int{"removed": 3}, nil
	})
	if err != nil {
		t.Fatalf("run now: %v", err)
	}
	if details.(map[string]int)["removed"] != 3 {
		t.Fatalf("unexpected details %v", details)
	}

	boom := errors.New("boom")
	if _, err := svc.RunNow(context.Background(), "bad", func(context.Context) (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if runs.finished["run-ok"] != StatusCompleted || runs.finished["run-bad"] != StatusFailed {
		t.Fatalf("unexpected run statuses %v", runs.finished)
	}

	history, err := svc.History(context.Background(), "bad", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Status != StatusFailed {
		t.Fatalf("unexpected history %v", history)
	}
}

func TestScheduledJobRunsUntilCancelled(t *testing.T) {
	svc := New(nil, nil)
	ran := make(chan struct{}, 8)
	svc.Every("tick", 5*time.Millisecond, func(context.Context) (any, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job never ran")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestEnqueueReportsFullQueue(t *testing.T) {
	svc := New(nil, nil)
	for i := 0; i < cap(svc.queue); i++ {
		if !svc.Enqueue("fill", func(context.Context) (any, error) { return nil, nil }) {
			t.Fatalf("enqueue %d refused", i)
		}
	}
	if svc.Enqueue("overflow", func(context.Context) (any, error) { return nil, nil }) {
		t.Fatal("expected full queue to refuse")
	}
}
