package swap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/platform/querier"
)

const activeOfferConstraint = "swap_offers_active_shift_uniq"

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const offerSelect = `
    SELECT o.id, o.shift_id, o.requester_id, COALESCE(r.full_name, ''), COALESCE(o.taker_id, ''), COALESCE(t.full_name, ''),
           o.status, COALESCE(o.decided_by, ''), s.start_at, s.end_at, COALESCE(s.area_id, ''), o.created_at, o.updated_at
    FROM swap_offers o
    LEFT JOIN shifts s ON s.id = o.shift_id
    LEFT JOIN employees r ON r.id = o.requester_id
    LEFT JOIN employees t ON t.id = o.taker_id`

// CreateOffer inserts the offer only while the requester still holds the
// shift. The shift row is locked so a concurrent delete cannot orphan it.
func (s *Store) CreateOffer(ctx context.Context, offer Offer) error {
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		var owner string
		err := tx.QueryRow(ctx, "SELECT employee_id FROM shifts WHERE id = $1 FOR UPDATE", offer.ShiftID).Scan(&owner)
		if querier.IsNoRows(err) {
			return apperr.NotFound("shift not found")
		}
		if err != nil {
			return err
		}
		if owner != offer.RequesterID {
			return apperr.PermissionDenied("only the assigned employee can offer a shift")
		}
		_, err = tx.Exec(ctx, `
    INSERT INTO swap_offers (id, shift_id, requester_id, status, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, offer.ID, offer.ShiftID, offer.RequesterID, offer.Status, offer.CreatedAt, offer.UpdatedAt)
		return err
	})
	switch {
	case err == nil:
		return nil
	case apperr.KindOf(err) != "":
		return err
	case querier.IsUniqueViolation(err, activeOfferConstraint):
		return apperr.Conflict("shift already has an active swap offer")
	default:
		return fmt.Errorf("create offer: %w", err)
	}
}

func (s *Store) GetOffer(ctx context.Context, id string) (Offer, error) {
	return getOffer(ctx, s.DB, id)
}

func (s *Store) ActiveOfferForShift(ctx context.Context, shiftID string) (Offer, error) {
	row := s.DB.QueryRow(ctx, offerSelect+`
    WHERE o.shift_id = $1 AND o.status <> 'Rejected'
  `, shiftID)
	offer, err := scanOffer(row)
	if querier.IsNoRows(err) {
		return Offer{}, apperr.NotFound("shift has no active swap offer")
	}
	if err != nil {
		return Offer{}, fmt.Errorf("active offer: %w", err)
	}
	return offer, nil
}

func (s *Store) ClaimOffer(ctx context.Context, id, takerID string, at time.Time) (Offer, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE swap_offers
    SET status = $1, taker_id = $2, updated_at = $3
    WHERE id = $4 AND status = $5
  `, StatusPendingApproval, takerID, at, id, StatusOpen)
	if err != nil {
		return Offer{}, fmt.Errorf("claim offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Offer{}, s.missedTransition(ctx, s.DB, id)
	}
	return getOffer(ctx, s.DB, id)
}

func (s *Store) ApproveOffer(ctx context.Context, id, decidedBy string, at time.Time) (Offer, error) {
	var out Offer
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		// Shift before offer, the same lock order as shift edits and deletes.
		var locked string
		err := tx.QueryRow(ctx, `
    SELECT s.id FROM shifts s JOIN swap_offers o ON o.shift_id = s.id
    WHERE o.id = $1
    FOR UPDATE OF s
  `, id).Scan(&locked)
		if err != nil && !querier.IsNoRows(err) {
			return err
		}

		var shiftID, takerID string
		err = tx.QueryRow(ctx, `
    UPDATE swap_offers
    SET status = $1, decided_by = $2, updated_at = $3
    WHERE id = $4 AND status = $5
    RETURNING shift_id, taker_id
  `, StatusApproved, decidedBy, at, id, StatusPendingApproval).Scan(&shiftID, &takerID)
		if querier.IsNoRows(err) {
			return s.missedTransition(ctx, tx, id)
		}
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
    UPDATE shifts SET employee_id = $1, updated_at = $2 WHERE id = $3
  `, takerID, at, shiftID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("shift no longer exists")
		}
		out, err = getOffer(ctx, tx, id)
		return err
	})
	if err != nil {
		if apperr.KindOf(err) != "" {
			return Offer{}, err
		}
		return Offer{}, fmt.Errorf("approve offer: %w", err)
	}
	return out, nil
}

func (s *Store) RejectOffer(ctx context.Context, id, decidedBy string, at time.Time) (Offer, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE swap_offers
    SET status = $1, decided_by = $2, updated_at = $3
    WHERE id = $4 AND status = ANY($5)
  `, StatusRejected, decidedBy, at, id, SourceStates(StatusRejected))
	if err != nil {
		return Offer{}, fmt.Errorf("reject offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Offer{}, s.missedTransition(ctx, s.DB, id)
	}
	return getOffer(ctx, s.DB, id)
}

func (s *Store) ListOffers(ctx context.Context, filter Filter) ([]Offer, error) {
	query := offerSelect
	var where []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if filter.ExcludeRequester != "" {
		args = append(args, filter.ExcludeRequester)
		where = append(where, fmt.Sprintf("o.requester_id <> $%d", len(args)))
	}
	if filter.RequesterID != "" {
		args = append(args, filter.RequesterID)
		where = append(where, fmt.Sprintf("o.requester_id = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.start_at NULLS LAST, o.created_at, o.id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	var out []Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, offer)
	}
	return out, rows.Err()
}

// missedTransition explains why a conditional update touched no row.
func (s *Store) missedTransition(ctx context.Context, db querier.Querier, id string) error {
	var status string
	err := db.QueryRow(ctx, "SELECT status FROM swap_offers WHERE id = $1", id).Scan(&status)
	if querier.IsNoRows(err) {
		return apperr.NotFound("swap offer not found")
	}
	if err != nil {
		return err
	}
	return apperr.InvalidState(fmt.Sprintf("swap offer is %s", status))
}

func getOffer(ctx context.Context, db querier.Querier, id string) (Offer, error) {
	offer, err := scanOffer(db.QueryRow(ctx, offerSelect+`
    WHERE o.id = $1
  `, id))
	if querier.IsNoRows(err) {
		return Offer{}, apperr.NotFound("swap offer not found")
	}
	if err != nil {
		return Offer{}, fmt.Errorf("get offer: %w", err)
	}
	return offer, nil
}

func scanOffer(row pgx.Row) (Offer, error) {
	var o Offer
	err := row.Scan(&o.ID, &o.ShiftID, &o.RequesterID, &o.RequesterName, &o.TakerID, &o.TakerName,
		&o.Status, &o.DecidedBy, &o.ShiftStart, &o.ShiftEnd, &o.AreaID, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
