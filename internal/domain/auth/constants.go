package auth

const (
	RoleEmployee = "Employee"
	RoleManager  = "Manager"
	RoleOwner    = "Owner"
)

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleOwner:
		return true
	}
	return false
}
