package roster

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/availability"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/platform/dates"
	"shiftdesk/internal/platform/events"
	"shiftdesk/internal/platform/logging"
)

type AvailabilityReader interface {
	ForDate(ctx context.Context, date time.Time) ([]availability.Entry, error)
}

type Directory interface {
	Get(ctx context.Context, id string) (staff.Employee, error)
	List(ctx context.Context) ([]staff.Employee, error)
}

type Service struct {
	Store        StoreAPI
	Availability AvailabilityReader
	Staff        Directory
	Events       events.Publisher
	Location     *time.Location
	Now          func() time.Time
	Logger       *zap.Logger
}

func NewService(store StoreAPI, avail AvailabilityReader, dir Directory, publisher events.Publisher, loc *time.Location, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		Store:        store,
		Availability: avail,
		Staff:        dir,
		Events:       publisher,
		Location:     loc,
		Now:          time.Now,
		Logger:       logging.OrNop(logger),
	}
}

func (s *Service) SyncAreas(ctx context.Context, areas []Area) error {
	return s.Store.UpsertAreas(ctx, areas)
}

func (s *Service) ListAreas(ctx context.Context) ([]Area, error) {
	return s.Store.ListAreas(ctx)
}

// CreateShift plans a single shift. Conflicts with availability or existing
// shifts are returned as warnings, never as errors.
func (s *Service) CreateShift(ctx context.Context, actor auth.Actor, in ShiftInput) (Planned, error) {
	planned, err := s.CreateShifts(ctx, actor, []string{in.EmployeeID}, in.AreaID, in.Start, in.End)
	if err != nil {
		return Planned{}, err
	}
	return planned[0], nil
}

// CreateShifts plans the same slot for several employees. Either every shift
// is written or none is.
func (s *Service) CreateShifts(ctx context.Context, actor auth.Actor, employeeIDs []string, areaID string, start, end time.Time) ([]Planned, error) {
	if !actor.CanManage() {
		return nil, apperr.PermissionDenied("only managers can plan shifts")
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	employeeIDs = uniqueIDs(employeeIDs)
	if len(employeeIDs) == 0 {
		return nil, apperr.InvalidRange("at least one employee is required")
	}
	if _, err := s.Store.GetArea(ctx, areaID); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	planned := make([]Planned, 0, len(employeeIDs))
	shifts := make([]Shift, 0, len(employeeIDs))
	for _, employeeID := range employeeIDs {
		emp, err := s.Staff.Get(ctx, employeeID)
		if err != nil {
			return nil, err
		}
		sh := Shift{
			ID:           uuid.NewString(),
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			AreaID:       areaID,
			Start:        start.UTC(),
			End:          end.UTC(),
			Published:    true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		warnings, err := s.warningsFor(ctx, sh)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
		planned = append(planned, Planned{Shift: sh, Warnings: warnings})
	}

	if err := s.Store.InsertShifts(ctx, shifts); err != nil {
		return nil, err
	}
	for _, sh := range shifts {
		s.Events.Publish(events.Event{
			Type:       events.ShiftAssigned,
			SubjectID:  sh.ID,
			ActorID:    actor.EmployeeID,
			Recipients: []string{sh.EmployeeID},
			Data:       shiftData(sh),
		})
	}
	s.Logger.Info("shifts planned", zap.Int("count", len(shifts)), zap.String("area_id", areaID), zap.String("actor_id", actor.EmployeeID))
	return planned, nil
}

// UpdateShift edits a shift. Reassigning it rejects any swap offer that is
// still waiting for a taker or a decision.
func (s *Service) UpdateShift(ctx context.Context, actor auth.Actor, id string, in ShiftUpdate) (Planned, error) {
	if !actor.CanManage() {
		return Planned{}, apperr.PermissionDenied("only managers can edit shifts")
	}
	current, err := s.Store.GetShift(ctx, id)
	if err != nil {
		return Planned{}, err
	}

	next := current
	if in.EmployeeID != nil {
		emp, err := s.Staff.Get(ctx, *in.EmployeeID)
		if err != nil {
			return Planned{}, err
		}
		next.EmployeeID = emp.ID
		next.EmployeeName = emp.FullName
	}
	if in.AreaID != nil {
		if _, err := s.Store.GetArea(ctx, *in.AreaID); err != nil {
			return Planned{}, err
		}
		next.AreaID = *in.AreaID
	}
	if in.Start != nil {
		next.Start = in.Start.UTC()
	}
	if in.End != nil {
		next.End = in.End.UTC()
	}
	if in.Published != nil {
		next.Published = *in.Published
	}
	if err := validateRange(next.Start, next.End); err != nil {
		return Planned{}, err
	}
	next.UpdatedAt = s.Now().UTC()

	warnings, err := s.warningsFor(ctx, next)
	if err != nil {
		return Planned{}, err
	}
	reassigned := next.EmployeeID != current.EmployeeID
	released, err := s.Store.UpdateShift(ctx, next, current, reassigned, actor.EmployeeID)
	if err != nil {
		return Planned{}, err
	}
	s.publishReleased(actor, current, released)
	if reassigned {
		s.Events.Publish(events.Event{Type: events.ShiftRemoved, SubjectID: next.ID, ActorID: actor.EmployeeID, Recipients: []string{current.EmployeeID}, Data: shiftData(current)})
		s.Events.Publish(events.Event{Type: events.ShiftAssigned, SubjectID: next.ID, ActorID: actor.EmployeeID, Recipients: []string{next.EmployeeID}, Data: shiftData(next)})
	}
	return Planned{Shift: next, Warnings: warnings}, nil
}

// DeleteShift removes the shift and rejects its undecided swap offers.
func (s *Service) DeleteShift(ctx context.Context, actor auth.Actor, id string) error {
	if !actor.CanManage() {
		return apperr.PermissionDenied("only managers can delete shifts")
	}
	current, err := s.Store.GetShift(ctx, id)
	if err != nil {
		return err
	}
	released, err := s.Store.DeleteShift(ctx, id, actor.EmployeeID, s.Now().UTC())
	if err != nil {
		return err
	}
	s.publishReleased(actor, current, released)
	s.Events.Publish(events.Event{Type: events.ShiftRemoved, SubjectID: id, ActorID: actor.EmployeeID, Recipients: []string{current.EmployeeID}, Data: shiftData(current)})
	return nil
}

func (s *Service) GetShift(ctx context.Context, id string) (Shift, error) {
	return s.Store.GetShift(ctx, id)
}

// ListShifts returns shifts starting in [From, To), ordered by start, then
// employee name, then id.
func (s *Service) ListShifts(ctx context.Context, filter Filter) ([]Shift, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.To.After(filter.From) {
		return nil, apperr.InvalidRange("to must be after from")
	}
	return s.Store.ListShifts(ctx, filter)
}

// Week lists the shifts of the Monday-based week containing day.
func (s *Service) Week(ctx context.Context, day time.Time) ([]Shift, error) {
	from, _ := dates.Bounds(dates.WeekStart(day), s.Location)
	return s.Store.ListShifts(ctx, Filter{From: from, To: from.AddDate(0, 0, 7)})
}

// DailyCount counts shifts starting on the calendar date in the configured location.
func (s *Service) DailyCount(ctx context.Context, date time.Time) (int, error) {
	from, to := dates.Bounds(date, s.Location)
	return s.Store.CountShifts(ctx, from, to)
}

// WeekCounts returns per-day shift counts for the Monday-based week containing day.
func (s *Service) WeekCounts(ctx context.Context, day time.Time) ([]DayCount, error) {
	monday := dates.WeekStart(day)
	shifts, err := s.Week(ctx, monday)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, 7)
	for _, sh := range shifts {
		counts[dates.Format(dates.Of(sh.Start, s.Location))]++
	}
	out := make([]DayCount, 0, 7)
	for _, d := range dates.Range(monday, 7) {
		out = append(out, DayCount{Date: d, Count: counts[dates.Format(d)]})
	}
	return out, nil
}

// Candidates lists every employee with that date's availability and whether
// they already work a shift that day.
func (s *Service) Candidates(ctx context.Context, date time.Time) ([]Candidate, error) {
	employees, err := s.Staff.List(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.Availability.ForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	from, to := dates.Bounds(date, s.Location)
	shifts, err := s.Store.ListShifts(ctx, Filter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	byEmployee := make(map[string]availability.Entry, len(entries))
	for _, e := range entries {
		byEmployee[e.EmployeeID] = e
	}
	busy := make(map[string]bool, len(shifts))
	for _, sh := range shifts {
		busy[sh.EmployeeID] = true
	}

	out := make([]Candidate, 0, len(employees))
	for _, emp := range employees {
		c := Candidate{EmployeeID: emp.ID, FullName: emp.FullName, Role: emp.Role, Status: availability.StatusNeutral, Busy: busy[emp.ID]}
		if e, ok := byEmployee[emp.ID]; ok {
			c.Status = e.Status
			c.Note = e.Note
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

func (s *Service) warningsFor(ctx context.Context, sh Shift) ([]Warning, error) {
	warnings := []Warning{}
	day := dates.Of(sh.Start, s.Location)
	entries, err := s.Availability.ForDate(ctx, day)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.EmployeeID == sh.EmployeeID && e.Status == availability.StatusUnavailable {
			msg := fmt.Sprintf("%s marked %s as unavailable", sh.EmployeeName, dates.Format(day))
			if e.Note != "" {
				msg += ": " + e.Note
			}
			warnings = append(warnings, Warning{Code: WarningUnavailable, Message: msg})
		}
	}

	overlapping, err := s.Store.OverlappingShifts(ctx, sh.EmployeeID, sh.Start, sh.End)
	if err != nil {
		return nil, err
	}
	for _, other := range overlapping {
		if other.ID == sh.ID {
			continue
		}
		warnings = append(warnings, Warning{
			Code:    WarningOverlap,
			Message: fmt.Sprintf("overlaps shift %s to %s", other.Start.In(s.Location).Format("15:04"), other.End.In(s.Location).Format("15:04")),
			ShiftID: other.ID,
		})
	}
	return warnings, nil
}

func (s *Service) publishReleased(actor auth.Actor, sh Shift, released []ReleasedOffer) {
	for _, r := range released {
		recipients := []string{r.RequesterID}
		if r.TakerID != "" {
			recipients = append(recipients, r.TakerID)
		}
		data := shiftData(sh)
		data["reason"] = "shift changed"
		s.Events.Publish(events.Event{Type: events.SwapRejected, SubjectID: r.OfferID, ActorID: actor.EmployeeID, Recipients: recipients, Data: data})
	}
	if len(released) > 0 {
		s.Logger.Info("swap offers released", zap.String("shift_id", sh.ID), zap.Int("count", len(released)))
	}
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperr.InvalidRange("start and end are required")
	}
	if !end.After(start) {
		return apperr.InvalidRange("shift must end after it starts")
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func shiftData(sh Shift) map[string]string {
	return map[string]string{
		"shiftId": sh.ID,
		"areaId":  sh.AreaID,
		"start":   sh.Start.Format(time.RFC3339),
		"end":     sh.End.Format(time.RFC3339),
	}
}
