package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/roster"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/domain/timebank"
	"shiftdesk/internal/platform/dates"
	"shiftdesk/internal/platform/logging"
)

type RosterReader interface {
	Week(ctx context.Context, day time.Time) ([]roster.Shift, error)
	ListAreas(ctx context.Context) ([]roster.Area, error)
}

type TimeReader interface {
	Entries(ctx context.Context, actor auth.Actor, employeeID string, month time.Time) ([]timebank.TimeEntry, error)
	MonthlySummary(ctx context.Context, actor auth.Actor, employeeID string, month time.Time) (timebank.MonthSummary, error)
}

type EmployeeReader interface {
	Get(ctx context.Context, id string) (staff.Employee, error)
}

type Service struct {
	Roster   RosterReader
	Time     TimeReader
	Staff    EmployeeReader
	Location *time.Location
	Logger   *zap.Logger
}

func NewService(rosterReader RosterReader, timeReader TimeReader, employees EmployeeReader, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{Roster: rosterReader, Time: timeReader, Staff: employees, Location: loc, Logger: logging.OrNop(logger)}
}

// RosterPDF renders the Monday-based week containing day as a one page table.
func (s *Service) RosterPDF(ctx context.Context, actor auth.Actor, day time.Time, w io.Writer) error {
	if !actor.CanManage() {
		return apperr.PermissionDenied("only managers can export the roster")
	}
	monday := dates.WeekStart(day)
	shifts, err := s.Roster.Week(ctx, monday)
	if err != nil {
		return err
	}
	areas, err := s.Roster.ListAreas(ctx)
	if err != nil {
		return err
	}
	areaNames := make(map[string]string, len(areas))
	for _, a := range areas {
		areaNames[a.ID] = a.Name
	}

	byDay := make(map[string][]roster.Shift, 7)
	for _, sh := range shifts {
		key := dates.Format(dates.Of(sh.Start, s.Location))
		byDay[key] = append(byDay[key], sh)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Roster %s - %s", monday.Format("02.01.2006"), monday.AddDate(0, 0, 6).Format("02.01.2006"))))
	pdf.Ln(12)

	for _, d := range dates.Range(monday, 7) {
		dayShifts := byDay[dates.Format(d)]
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s %s (%d)", d.Weekday(), d.Format("02.01."), len(dayShifts))), "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		if len(dayShifts) == 0 {
			pdf.CellFormat(0, 6, "-", "", 1, "L", false, 0, "")
			continue
		}
		for _, sh := range dayShifts {
			start := sh.Start.In(s.Location).Format("15:04")
			end := sh.End.In(s.Location).Format("15:04")
			pdf.CellFormat(30, 6, start+" - "+end, "", 0, "L", false, 0, "")
			pdf.CellFormat(70, 6, tr(sh.EmployeeName), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, tr(areaNames[sh.AreaID]), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render roster pdf: %w", err)
	}
	s.Logger.Debug("roster pdf rendered", zap.String("week", dates.Format(monday)), zap.Int("shifts", len(shifts)))
	return nil
}

// TimesheetCSV writes the employee's closed time entries for the month plus a total row.
func (s *Service) TimesheetCSV(ctx context.Context, actor auth.Actor, employeeID string, month time.Time, w io.Writer) error {
	entries, err := s.Time.Entries(ctx, actor, employeeID, month)
	if err != nil {
		return err
	}
	summary, err := s.Time.MonthlySummary(ctx, actor, employeeID, month)
	if err != nil {
		return err
	}
	emp, err := s.Staff.Get(ctx, employeeID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"employee", "date", "clock_in", "clock_out", "hours"}); err != nil {
		return err
	}
	for _, e := range entries {
		in := e.ClockIn.In(s.Location)
		out := e.ClockOut.In(s.Location)
		if err := writer.Write([]string{
			emp.FullName,
			in.Format(dates.Layout),
			in.Format("15:04"),
			out.Format("15:04"),
			fmt.Sprintf("%.2f", e.Hours()),
		}); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{emp.FullName, "total", "", "", fmt.Sprintf("%.0f", summary.WorkedHours)}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
