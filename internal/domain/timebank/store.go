package timebank

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/platform/querier"
)

const openEntryConstraint = "time_entries_open_uniq"

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) OpenTimeEntry(ctx context.Context, entry TimeEntry) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO time_entries (id, employee_id, clock_in)
    VALUES ($1,$2,$3)
  `, entry.ID, entry.EmployeeID, entry.ClockIn)
	switch {
	case querier.IsUniqueViolation(err, openEntryConstraint):
		return apperr.Conflict("employee is already clocked in")
	case querier.IsForeignKeyViolation(err):
		return apperr.NotFound("employee not found")
	case err != nil:
		return fmt.Errorf("open time entry: %w", err)
	}
	return nil
}

func (s *Store) CloseTimeEntry(ctx context.Context, employeeID string, at time.Time) (TimeEntry, error) {
	var e TimeEntry
	err := s.DB.QueryRow(ctx, `
    UPDATE time_entries
    SET clock_out = $2
    WHERE id = (
      SELECT id FROM time_entries
      WHERE employee_id = $1 AND clock_out IS NULL
      ORDER BY clock_in DESC
      LIMIT 1
    ) AND clock_out IS NULL
    RETURNING id, employee_id, clock_in, clock_out
  `, employeeID, at).Scan(&e.ID, &e.EmployeeID, &e.ClockIn, &e.ClockOut)
	if querier.IsNoRows(err) {
		return TimeEntry{}, apperr.NotFound("no open time entry")
	}
	if err != nil {
		return TimeEntry{}, fmt.Errorf("close time entry: %w", err)
	}
	return e, nil
}

func (s *Store) OpenEntryFor(ctx context.Context, employeeID string) (TimeEntry, error) {
	var e TimeEntry
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, clock_in, clock_out
    FROM time_entries
    WHERE employee_id = $1 AND clock_out IS NULL
    ORDER BY clock_in DESC
    LIMIT 1
  `, employeeID).Scan(&e.ID, &e.EmployeeID, &e.ClockIn, &e.ClockOut)
	if querier.IsNoRows(err) {
		return TimeEntry{}, apperr.NotFound("no open time entry")
	}
	if err != nil {
		return TimeEntry{}, fmt.Errorf("open entry: %w", err)
	}
	return e, nil
}

func (s *Store) ClosedEntries(ctx context.Context, employeeID string, from, to time.Time) ([]TimeEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, clock_in, clock_out
    FROM time_entries
    WHERE employee_id = $1 AND clock_out IS NOT NULL AND clock_in >= $2 AND clock_in < $3
    ORDER BY clock_in
  `, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("closed entries: %w", err)
	}
	defer rows.Close()

	var out []TimeEntry
	for rows.Next() {
		var e TimeEntry
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.ClockIn, &e.ClockOut); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const leaveSelect = `
    SELECT l.id, l.employee_id, COALESCE(e.full_name, ''), l.date, l.hours, l.status, COALESCE(l.decided_by, ''), l.created_at, l.decided_at
    FROM leave_requests l
    LEFT JOIN employees e ON e.id = l.employee_id`

func (s *Store) CreateLeaveRequest(ctx context.Context, req LeaveRequest) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_requests (id, employee_id, date, hours, status, created_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, req.ID, req.EmployeeID, req.Date, req.Hours, req.Status, req.CreatedAt)
	if querier.IsForeignKeyViolation(err) {
		return apperr.NotFound("employee not found")
	}
	if err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

func (s *Store) GetLeaveRequest(ctx context.Context, id string) (LeaveRequest, error) {
	return getLeave(ctx, s.DB, id)
}

func (s *Store) ListLeaveRequests(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, error) {
	query := leaveSelect
	var where []string
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where = append(where, fmt.Sprintf("l.employee_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("l.status = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY l.date, l.created_at, l.id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	var out []LeaveRequest
	for rows.Next() {
		req, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *Store) ResolveLeaveRequest(ctx context.Context, id, status, decidedBy string, at time.Time) (LeaveRequest, error) {
	var out LeaveRequest
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		var employeeID string
		var hours float64
		err := tx.QueryRow(ctx, `
    UPDATE leave_requests
    SET status = $1, decided_by = $2, decided_at = $3
    WHERE id = $4 AND status = $5
    RETURNING employee_id, hours
  `, status, decidedBy, at, id, LeavePending).Scan(&employeeID, &hours)
		if querier.IsNoRows(err) {
			current, getErr := getLeave(ctx, tx, id)
			if getErr != nil {
				return getErr
			}
			return apperr.InvalidState("leave request is " + current.Status)
		}
		if err != nil {
			return err
		}

		if status == LeaveApproved {
			tag, err := tx.Exec(ctx, `
    UPDATE employees
    SET overtime_balance = overtime_balance - $1
    WHERE id = $2 AND overtime_balance >= $1
  `, hours, employeeID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return apperr.InsufficientBalance("overtime balance no longer covers this request")
			}
		}
		out, err = getLeave(ctx, tx, id)
		return err
	})
	if err != nil {
		if apperr.KindOf(err) != "" {
			return LeaveRequest{}, err
		}
		return LeaveRequest{}, fmt.Errorf("resolve leave request: %w", err)
	}
	return out, nil
}

func (s *Store) AdjustBalance(ctx context.Context, adj Adjustment) (float64, error) {
	var balance float64
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
    UPDATE employees SET overtime_balance = overtime_balance + $1 WHERE id = $2
    RETURNING overtime_balance
  `, adj.Delta, adj.EmployeeID).Scan(&balance)
		if querier.IsNoRows(err) {
			return apperr.NotFound("employee not found")
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
    INSERT INTO balance_adjustments (id, employee_id, delta, reason, actor_id, created_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, adj.ID, adj.EmployeeID, adj.Delta, adj.Reason, adj.ActorID, adj.CreatedAt)
		return err
	})
	if err != nil {
		if apperr.KindOf(err) != "" {
			return 0, err
		}
		return 0, fmt.Errorf("adjust balance: %w", err)
	}
	return balance, nil
}

func (s *Store) ListAdjustments(ctx context.Context, employeeID string) ([]Adjustment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, delta, reason, actor_id, created_at
    FROM balance_adjustments
    WHERE employee_id = $1
    ORDER BY created_at DESC, id
  `, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()

	var out []Adjustment
	for rows.Next() {
		var a Adjustment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Delta, &a.Reason, &a.ActorID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func getLeave(ctx context.Context, db querier.Querier, id string) (LeaveRequest, error) {
	req, err := scanLeave(db.QueryRow(ctx, leaveSelect+`
    WHERE l.id = $1
  `, id))
	if querier.IsNoRows(err) {
		return LeaveRequest{}, apperr.NotFound("leave request not found")
	}
	if err != nil {
		return LeaveRequest{}, fmt.Errorf("get leave request: %w", err)
	}
	return req, nil
}

func scanLeave(row pgx.Row) (LeaveRequest, error) {
	var r LeaveRequest
	err := row.Scan(&r.ID, &r.EmployeeID, &r.EmployeeName, &r.Date, &r.Hours, &r.Status, &r.DecidedBy, &r.CreatedAt, &r.DecidedAt)
	return r, err
}
