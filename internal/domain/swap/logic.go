package swap

// transitions lists the states each decision may start from.
var transitions = map[string][]string{
	StatusPendingApproval: {StatusOpen},
	StatusApproved:        {StatusPendingApproval},
	StatusRejected:        {StatusOpen, StatusPendingApproval},
}

// CanTransition reports whether an offer in from may move to to.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[to] {
		if allowed == from {
			return true
		}
	}
	return false
}

// SourceStates returns the states an offer must be in to move to target.
func SourceStates(target string) []string {
	return append([]string(nil), transitions[target]...)
}
