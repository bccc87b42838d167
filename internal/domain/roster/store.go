package roster

import (
	"context"
	"fmt"
	"strings"
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

const shiftColumns = `s.id, s.employee_id, e.full_name, s.area_id, s.start_at, s.end_at, s.published, s.created_at, s.updated_at`

func (s *Store) UpsertAreas(ctx context.Context, areas []Area) error {
	batch := &pgx.Batch{}
	for _, area := range areas {
		batch.Queue(`
    INSERT INTO areas (id, name, color)
    VALUES ($1,$2,$3)
    ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, color = EXCLUDED.color
  `, area.ID, area.Name, area.Color)
	}
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *Store) ListAreas(ctx context.Context) ([]Area, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, color FROM areas ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	var out []Area
	for rows.Next() {
		var a Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Color); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetArea(ctx context.Context, id string) (Area, error) {
	var a Area
	err := s.DB.QueryRow(ctx, "SELECT id, name, color FROM areas WHERE id = $1", id).Scan(&a.ID, &a.Name, &a.Color)
	if querier.IsNoRows(err) {
		return Area{}, apperr.NotFound("area not found")
	}
	return a, err
}

func (s *Store) InsertShifts(ctx context.Context, shifts []Shift) error {
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		for _, sh := range shifts {
			if _, err := tx.Exec(ctx, `
    INSERT INTO shifts (id, employee_id, area_id, start_at, end_at, published, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, sh.ID, sh.EmployeeID, sh.AreaID, sh.Start, sh.End, sh.Published, sh.CreatedAt, sh.UpdatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if querier.IsForeignKeyViolation(err) {
		return apperr.NotFound("employee or area not found")
	}
	if err != nil {
		return fmt.Errorf("insert shifts: %w", err)
	}
	return nil
}

func (s *Store) GetShift(ctx context.Context, id string) (Shift, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+shiftColumns+`
    FROM shifts s
    JOIN employees e ON e.id = s.employee_id
    WHERE s.id = $1
  `, id)
	sh, err := scanShift(row)
	if querier.IsNoRows(err) {
		return Shift{}, apperr.NotFound("shift not found")
	}
	if err != nil {
		return Shift{}, fmt.Errorf("get shift: %w", err)
	}
	return sh, nil
}

func (s *Store) UpdateShift(ctx context.Context, shift Shift, read Shift, releaseOffers bool, decidedBy string) ([]ReleasedOffer, error) {
	var released []ReleasedOffer
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
    UPDATE shifts
    SET employee_id = $1, area_id = $2, start_at = $3, end_at = $4, published = $5, updated_at = $6
    WHERE id = $7 AND employee_id = $8 AND updated_at = $9
  `, shift.EmployeeID, shift.AreaID, shift.Start, shift.End, shift.Published, shift.UpdatedAt, shift.ID, read.EmployeeID, read.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return missedShiftWrite(ctx, tx, shift.ID)
		}
		if !releaseOffers {
			return nil
		}
		released, err = releaseActiveOffers(ctx, tx, shift.ID, decidedBy, shift.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, translate("update shift", err)
	}
	return released, nil
}

// missedShiftWrite explains a conditional shift write that matched no row.
func missedShiftWrite(ctx context.Context, q querier.Querier, id string) error {
	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM shifts WHERE id = $1)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("shift not found")
	}
	return apperr.Conflict("shift was changed concurrently, reload and retry")
}

func (s *Store) DeleteShift(ctx context.Context, id, decidedBy string, at time.Time) ([]ReleasedOffer, error) {
	var released []ReleasedOffer
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		// Lock first: a concurrent offer insert either commits before us and
		// is released below, or finds the shift gone.
		var locked string
		err := tx.QueryRow(ctx, "SELECT id FROM shifts WHERE id = $1 FOR UPDATE", id).Scan(&locked)
		if querier.IsNoRows(err) {
			return apperr.NotFound("shift not found")
		}
		if err != nil {
			return err
		}
		released, err = releaseActiveOffers(ctx, tx, id, decidedBy, at)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, "DELETE FROM shifts WHERE id = $1", id)
		return err
	})
	if err != nil {
		return nil, translate("delete shift", err)
	}
	return released, nil
}

// releaseActiveOffers rejects offers that have not reached a decision yet.
// Approved offers are final and stay as the record of the swap.
func releaseActiveOffers(ctx context.Context, tx pgx.Tx, shiftID, decidedBy string, at time.Time) ([]ReleasedOffer, error) {
	rows, err := tx.Query(ctx, `
    UPDATE swap_offers
    SET status = 'Rejected', decided_by = $2, updated_at = $3
    WHERE shift_id = $1 AND status IN ('Open', 'Pending_Approval')
    RETURNING id, requester_id, COALESCE(taker_id, '')
  `, shiftID, decidedBy, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReleasedOffer
	for rows.Next() {
		var r ReleasedOffer
		if err := rows.Scan(&r.OfferID, &r.RequesterID, &r.TakerID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListShifts(ctx context.Context, filter Filter) ([]Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts s JOIN employees e ON e.id = s.employee_id`
	var where []string
	var args []any
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where = append(where, fmt.Sprintf("s.start_at >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where = append(where, fmt.Sprintf("s.start_at < $%d", len(args)))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where = append(where, fmt.Sprintf("s.employee_id = $%d", len(args)))
	}
	if filter.AreaID != "" {
		args = append(args, filter.AreaID)
		where = append(where, fmt.Sprintf("s.area_id = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.start_at, e.full_name, s.id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return collectShifts(rows)
}

func (s *Store) OverlappingShifts(ctx context.Context, employeeID string, start, end time.Time) ([]Shift, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+shiftColumns+`
    FROM shifts s
    JOIN employees e ON e.id = s.employee_id
    WHERE s.employee_id = $1 AND s.start_at < $3 AND s.end_at > $2
    ORDER BY s.start_at, s.id
  `, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("overlapping shifts: %w", err)
	}
	return collectShifts(rows)
}

func (s *Store) CountShifts(ctx context.Context, from, to time.Time) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM shifts WHERE start_at >= $1 AND start_at < $2", from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("count shifts: %w", err)
	}
	return total, nil
}

func scanShift(row pgx.Row) (Shift, error) {
	var sh Shift
	err := row.Scan(&sh.ID, &sh.EmployeeID, &sh.EmployeeName, &sh.AreaID, &sh.Start, &sh.End, &sh.Published, &sh.CreatedAt, &sh.UpdatedAt)
	return sh, err
}

func collectShifts(rows pgx.Rows) ([]Shift, error) {
	defer rows.Close()
	var out []Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case apperr.KindOf(err) != "":
		return err
	case querier.IsForeignKeyViolation(err):
		return apperr.NotFound("employee or area not found")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
