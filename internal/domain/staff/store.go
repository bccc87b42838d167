package staff

import (
	"context"
	"fmt"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) GetEmployee(ctx context.Context, id string) (Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, full_name, email, role, monthly_hours, overtime_balance, created_at
    FROM employees
    WHERE id = $1
  `, id).Scan(&emp.ID, &emp.FullName, &emp.Email, &emp.Role, &emp.MonthlyHours, &emp.OvertimeBalance, &emp.CreatedAt)
	if querier.IsNoRows(err) {
		return Employee{}, apperr.NotFound("employee not found")
	}
	if err != nil {
		return Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, full_name, email, role, monthly_hours, overtime_balance, created_at
    FROM employees
    ORDER BY full_name, id
  `)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.ID, &emp.FullName, &emp.Email, &emp.Role, &emp.MonthlyHours, &emp.OvertimeBalance, &emp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, emp Employee, passwordHash string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employees (id, full_name, email, role, monthly_hours, overtime_balance, password_hash, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, emp.ID, emp.FullName, emp.Email, emp.Role, emp.MonthlyHours, emp.OvertimeBalance, passwordHash, emp.CreatedAt)
	if querier.IsUniqueViolation(err, "") {
		return apperr.Conflict("email already registered")
	}
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}
