package notifications

const (
	TypeSwapOffered     = "swap_offered"
	TypeSwapClaimed     = "swap_claimed"
	TypeSwapPending     = "swap_pending_approval"
	TypeSwapApproved    = "swap_approved"
	TypeSwapRejected    = "swap_rejected"
	TypeLeaveSubmitted  = "leave_submitted"
	TypeLeaveApproved   = "leave_approved"
	TypeLeaveRejected   = "leave_rejected"
	TypeShiftAssigned   = "shift_assigned"
	TypeShiftRemoved    = "shift_removed"
	TypeBalanceAdjusted = "balance_adjusted"
)
