package availability

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/platform/dates"
	"shiftdesk/internal/platform/logging"
)

const DefaultHorizonDays = 14

// NoteSealer encrypts notes at rest. A nil sealer stores notes as given.
type NoteSealer interface {
	SealString(value string) (string, error)
	OpenString(value string) (string, error)
}

type Service struct {
	Store         StoreAPI
	Notes         NoteSealer
	HorizonDays   int
	RetentionDays int
	Location      *time.Location
	Now           func() time.Time
	Logger        *zap.Logger
}

func NewService(store StoreAPI, horizonDays, retentionDays int, loc *time.Location, logger *zap.Logger) *Service {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		Store:         store,
		HorizonDays:   horizonDays,
		RetentionDays: retentionDays,
		Location:      loc,
		Now:           time.Now,
		Logger:        logging.OrNop(logger),
	}
}

// SetStatus applies change to the employee's entry for date. Employees may
// only edit their own calendar.
func (s *Service) SetStatus(ctx context.Context, actor auth.Actor, employeeID string, date time.Time, change Change) (Entry, error) {
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if !actor.Acts(employeeID) {
		return Entry{}, apperr.PermissionDenied("availability can only be edited by its owner")
	}
	day := dates.Of(date, time.UTC)
	now := s.Now().UTC()

	entry, err := s.Store.ApplyAvailability(ctx, employeeID, day, func(current Entry) (Entry, error) {
		current, err := s.open(current)
		if err != nil {
			return Entry{}, err
		}
		next, err := Apply(current, change)
		if err != nil {
			return Entry{}, err
		}
		next.UpdatedAt = now
		return s.seal(next)
	})
	if err != nil {
		return Entry{}, err
	}
	if entry, err = s.open(entry); err != nil {
		return Entry{}, err
	}
	s.Logger.Debug("availability updated",
		zap.String("employee_id", employeeID),
		zap.String("date", dates.Format(day)),
		zap.String("status", entry.Status))
	return entry, nil
}

func (s *Service) ForDate(ctx context.Context, date time.Time) ([]Entry, error) {
	entries, err := s.Store.AvailabilityForDate(ctx, dates.Of(date, time.UTC))
	if err != nil {
		return nil, err
	}
	return s.openAll(entries)
}

// ForEmployee returns stored entries in [from, from+horizon).
func (s *Service) ForEmployee(ctx context.Context, employeeID string, from time.Time) ([]Entry, error) {
	from = dates.Of(from, time.UTC)
	entries, err := s.Store.AvailabilityForEmployee(ctx, employeeID, from, from.AddDate(0, 0, s.HorizonDays))
	if err != nil {
		return nil, err
	}
	return s.openAll(entries)
}

func (s *Service) seal(e Entry) (Entry, error) {
	if s.Notes == nil || e.Note == "" {
		return e, nil
	}
	sealed, err := s.Notes.SealString(e.Note)
	if err != nil {
		return Entry{}, fmt.Errorf("seal availability note: %w", err)
	}
	e.Note = sealed
	return e, nil
}

func (s *Service) open(e Entry) (Entry, error) {
	if s.Notes == nil || e.Note == "" {
		return e, nil
	}
	plain, err := s.Notes.OpenString(e.Note)
	if err != nil {
		return Entry{}, fmt.Errorf("open availability note: %w", err)
	}
	e.Note = plain
	return e, nil
}

func (s *Service) openAll(entries []Entry) ([]Entry, error) {
	for i := range entries {
		opened, err := s.open(entries[i])
		if err != nil {
			return nil, err
		}
		entries[i] = opened
	}
	return entries, nil
}

// Window lists the dates of the horizon starting at from.
func (s *Service) Window(from time.Time) []time.Time {
	return dates.Range(dates.Of(from, time.UTC), s.HorizonDays)
}

// Today is the current calendar day in the configured location.
func (s *Service) Today() time.Time {
	return dates.Of(s.Now(), s.Location)
}

// Calendar renders the horizon with a cell per day, Neutral where nothing is stored.
func (s *Service) Calendar(ctx context.Context, employeeID string, from time.Time) ([]Day, error) {
	entries, err := s.ForEmployee(ctx, employeeID, from)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byDate[dates.Format(e.Date)] = e
	}
	window := s.Window(from)
	out := make([]Day, 0, len(window))
	for _, day := range window {
		cell := Day{Date: day, Status: StatusNeutral}
		if e, ok := byDate[dates.Format(day)]; ok {
			cell.Status = e.Status
			cell.Note = e.Note
		}
		out = append(out, cell)
	}
	return out, nil
}

// Prune removes entries older than the retention window.
func (s *Service) Prune(ctx context.Context) (int64, error) {
	if s.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.Today().AddDate(0, 0, -s.RetentionDays)
	removed, err := s.Store.PruneAvailability(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.Logger.Info("availability pruned", zap.Int64("removed", removed), zap.String("before", dates.Format(cutoff)))
	}
	return removed, nil
}

// PruneJob runs Prune and reports the removed count as job details.
func (s *Service) PruneJob(ctx context.Context) (any, error) {
	removed, err := s.Prune(ctx)
	return map[string]any{"removed": removed, "retentionDays": s.RetentionDays}, err
}
