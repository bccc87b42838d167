package staff

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/platform/logging"
)

type Service struct {
	Store  StoreAPI
	Now    func() time.Time
	Logger *zap.Logger
}

func NewService(store StoreAPI, logger *zap.Logger) *Service {
	return &Service{Store: store, Now: time.Now, Logger: logging.OrNop(logger)}
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return s.Store.GetEmployee(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	return s.Store.ListEmployees(ctx)
}

// Create provisions an employee with login credentials. Owners only.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in NewEmployee) (Employee, error) {
	if !actor.IsOwner() {
		return Employee{}, apperr.PermissionDenied("only owners can provision staff")
	}
	return s.Provision(ctx, in)
}

// Provision creates the employee without an actor check; used by seeding.
func (s *Service) Provision(ctx context.Context, in NewEmployee) (Employee, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = auth.RoleEmployee
	}
	if in.FullName == "" {
		return Employee{}, apperr.InvalidRange("full name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return Employee{}, apperr.InvalidRange("email is invalid")
	}
	if !auth.ValidRole(in.Role) {
		return Employee{}, apperr.InvalidRange("role must be Employee, Manager or Owner")
	}
	if in.MonthlyHours < 0 {
		return Employee{}, apperr.InvalidRange("monthly hours cannot be negative")
	}
	if len(in.Password) < 8 {
		return Employee{}, apperr.InvalidRange("password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Employee{}, err
	}

	emp := Employee{
		ID:           uuid.NewString(),
		FullName:     in.FullName,
		Email:        in.Email,
		Role:         in.Role,
		MonthlyHours: in.MonthlyHours,
		CreatedAt:    s.Now().UTC(),
	}
	if err := s.Store.CreateEmployee(ctx, emp, hash); err != nil {
		return Employee{}, err
	}
	s.Logger.Info("employee provisioned", zap.String("employee_id", emp.ID), zap.String("role", emp.Role))
	return emp, nil
}

// Balances lists every employee's overtime balance for the manager overview.
func (s *Service) Balances(ctx context.Context, actor auth.Actor) ([]Balance, error) {
	if !actor.CanManage() {
		return nil, apperr.PermissionDenied("only managers can view all balances")
	}
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Balance, 0, len(employees))
	for _, emp := range employees {
		out = append(out, Balance{
			EmployeeID:      emp.ID,
			FullName:        emp.FullName,
			MonthlyHours:    emp.MonthlyHours,
			OvertimeBalance: emp.OvertimeBalance,
		})
	}
	return out, nil
}

// Directory maps employee ids to display names.
func (s *Service) Directory(ctx context.Context) (map[string]string, error) {
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(employees))
	for _, emp := range employees {
		out[emp.ID] = emp.FullName
	}
	return out, nil
}
