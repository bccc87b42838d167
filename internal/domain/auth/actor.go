package auth

// Actor is the authenticated caller every domain operation is evaluated against.
type Actor struct {
	EmployeeID string `json:"employeeId"`
	Role       string `json:"role"`
}

// CanManage reports whether the actor holds a scheduling role.
func (a Actor) CanManage() bool {
	return a.Role == RoleManager || a.Role == RoleOwner
}

func (a Actor) IsOwner() bool {
	return a.Role == RoleOwner
}

// Acts reports whether the actor may act on employeeID's own records.
func (a Actor) Acts(employeeID string) bool {
	return a.EmployeeID == employeeID || a.CanManage()
}
