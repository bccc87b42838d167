package auth

import (
	"context"
	"errors"
	"strings"

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

func (s *Store) FindCredential(ctx context.Context, email string) (Credential, error) {
	var out Credential
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, role, password_hash
    FROM employees
    WHERE lower(email) = $1
  `, strings.ToLower(strings.TrimSpace(email))).Scan(&out.EmployeeID, &out.Email, &out.Role, &out.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credential{}, apperr.NotFound("credential not found")
	}
	return out, err
}
