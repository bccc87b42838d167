// Package events is the in-process bus domain services publish to after a
// successful write. Delivery is best effort: a full queue drops the event.
package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"shiftdesk/internal/platform/logging"
)

const (
	SwapOffered     = "swap.offered"
	SwapClaimed     = "swap.claimed"
	SwapApproved    = "swap.approved"
	SwapRejected    = "swap.rejected"
	LeaveRequested  = "leave.requested"
	LeaveResolved   = "leave.resolved"
	ShiftAssigned   = "shift.assigned"
	ShiftRemoved    = "shift.removed"
	BalanceAdjusted = "balance.adjusted"

	// Any subscribes a handler to every event type.
	Any = "*"
)

type Event struct {
	Type       string            `json:"type"`
	SubjectID  string            `json:"subjectId"`
	ActorID    string            `json:"actorId"`
	Recipients []string          `json:"recipients"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

type Publisher interface {
	Publish(e Event)
}

type Handler func(ctx context.Context, e Event) error

// Nop discards events.
type Nop struct{}

func (Nop) Publish(Event) {}

type Bus struct {
	logger   *zap.Logger
	queue    chan Event
	mu       sync.RWMutex
	handlers map[string][]Handler
	dropped  atomic.Uint64
	handled  atomic.Uint64
}

func NewBus(logger *zap.Logger, size int) *Bus {
	if size <= 0 {
		size = 128
	}
	return &Bus{
		logger:   logging.OrNop(logger),
		queue:    make(chan Event, size),
		handlers: map[string][]Handler{},
	}
}

func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

func (b *Bus) Publish(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	select {
	case b.queue <- e:
	default:
		b.dropped.Add(1)
		b.logger.Warn("event queue full", zap.String("type", e.Type), zap.String("subject_id", e.SubjectID))
	}
}

// Run delivers queued events until ctx is cancelled, then drains what is left.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			b.drain()
			return nil
		case e := <-b.queue:
			b.Dispatch(ctx, e)
		}
	}
}

func (b *Bus) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case e := <-b.queue:
			b.Dispatch(ctx, e)
		default:
			return
		}
	}
}

// Dispatch runs every matching handler synchronously.
func (b *Bus) Dispatch(ctx context.Context, e Event) {
	b.mu.RLock()
	handlers := append(append([]Handler{}, b.handlers[e.Type]...), b.handlers[Any]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			b.logger.Warn("event handler failed", zap.String("type", e.Type), zap.String("subject_id", e.SubjectID), zap.Error(err))
		}
	}
	b.handled.Add(1)
}

func (b *Bus) Stats() map[string]any {
	return map[string]any{
		"eventsHandled": b.handled.Load(),
		"eventsDropped": b.dropped.Load(),
		"eventsQueued":  len(b.queue),
	}
}
