package auth

import "context"

const (
	PermStaffRead         = "staff.read"
	PermStaffWrite        = "staff.write"
	PermStaffBalances     = "staff.balances"
	PermAvailabilityRead  = "availability.read"
	PermAvailabilityWrite = "availability.write"
	PermRosterRead        = "roster.read"
	PermRosterWrite       = "roster.write"
	PermSwapRequest       = "swap.request"
	PermSwapDecide        = "swap.decide"
	PermTimeClock         = "timebank.clock"
	PermLeaveRequest      = "timebank.leave.request"
	PermLeaveDecide       = "timebank.leave.decide"
	PermBalanceAdjust     = "timebank.balance.adjust"
	PermReportsRead       = "reports.read"
	PermAuditRead         = "audit.read"
	PermNotificationsRead = "notifications.read"
)

var DefaultPermissions = []string{
	PermStaffRead,
	PermStaffWrite,
	PermStaffBalances,
	PermAvailabilityRead,
	PermAvailabilityWrite,
	PermRosterRead,
	PermRosterWrite,
	PermSwapRequest,
	PermSwapDecide,
	PermTimeClock,
	PermLeaveRequest,
	PermLeaveDecide,
	PermBalanceAdjust,
	PermReportsRead,
	PermAuditRead,
	PermNotificationsRead,
}

var employeePermissions = []string{
	PermStaffRead,
	PermAvailabilityRead,
	PermAvailabilityWrite,
	PermRosterRead,
	PermSwapRequest,
	PermTimeClock,
	PermLeaveRequest,
	PermNotificationsRead,
}

var managerPermissions = append(append([]string{}, employeePermissions...),
	PermStaffBalances,
	PermRosterWrite,
	PermSwapDecide,
	PermLeaveDecide,
	PermBalanceAdjust,
	PermReportsRead,
)

var RolePermissions = map[string][]string{
	RoleEmployee: employeePermissions,
	RoleManager:  managerPermissions,
	RoleOwner:    append(append([]string{}, managerPermissions...), PermStaffWrite, PermAuditRead),
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct {
	index map[string]map[string]struct{}
}

func NewStaticPermissions() *StaticPermissions {
	index := make(map[string]map[string]struct{}, len(RolePermissions))
	for role, perms := range RolePermissions {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		index[role] = set
	}
	return &StaticPermissions{index: index}
}

func (p *StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	_, ok := p.index[role][permission]
	return ok, nil
}
