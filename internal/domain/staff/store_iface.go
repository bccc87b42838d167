package staff

import "context"

type StoreAPI interface {
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	CreateEmployee(ctx context.Context, emp Employee, passwordHash string) error
}
