package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

// ApplyAvailability serializes writers of one (employee, date) key with a
// transaction scoped advisory lock, so the read-modify-write cannot interleave.
func (s *Store) ApplyAvailability(ctx context.Context, employeeID string, date time.Time, fn ApplyFunc) (Entry, error) {
	var out Entry
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "availability:"+employeeID+":"+date.Format("2006-01-02")); err != nil {
			return err
		}

		current := Entry{EmployeeID: employeeID, Date: date, Status: StatusNeutral}
		err := tx.QueryRow(ctx, `
    SELECT status, note, updated_at
    FROM availability
    WHERE employee_id = $1 AND date = $2
  `, employeeID, date).Scan(&current.Status, &current.Note, &current.UpdatedAt)
		if err != nil && !querier.IsNoRows(err) {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		next.EmployeeID = employeeID
		next.Date = date

		if next.Status == StatusNeutral {
			_, err = tx.Exec(ctx, "DELETE FROM availability WHERE employee_id = $1 AND date = $2", employeeID, date)
			out = next
			return err
		}
		if _, err := tx.Exec(ctx, `
    INSERT INTO availability (employee_id, date, status, note, updated_at)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (employee_id, date) DO UPDATE
      SET status = EXCLUDED.status,
          note = EXCLUDED.note,
          updated_at = EXCLUDED.updated_at
  `, employeeID, date, next.Status, next.Note, next.UpdatedAt); err != nil {
			if querier.IsForeignKeyViolation(err) {
				return apperr.NotFound("employee not found")
			}
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) != "" {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("apply availability: %w", err)
	}
	return out, nil
}

func (s *Store) AvailabilityForDate(ctx context.Context, date time.Time) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, date, status, note, updated_at
    FROM availability
    WHERE date = $1
    ORDER BY employee_id
  `, date)
	if err != nil {
		return nil, fmt.Errorf("availability for date: %w", err)
	}
	return collectEntries(rows)
}

func (s *Store) AvailabilityForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, date, status, note, updated_at
    FROM availability
    WHERE employee_id = $1 AND date >= $2 AND date < $3
    ORDER BY date
  `, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("availability for employee: %w", err)
	}
	return collectEntries(rows)
}

func (s *Store) PruneAvailability(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM availability WHERE date < $1", before)
	if err != nil {
		return 0, fmt.Errorf("prune availability: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collectEntries(rows pgx.Rows) ([]Entry, error) {
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.EmployeeID, &e.Date, &e.Status, &e.Note, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
