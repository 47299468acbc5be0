package request

// Balance is the state of one balance-tracked leave type for one owner.
type Balance struct {
	LeaveType   LeaveType `json:"leaveType"`
	Entitlement int       `json:"entitlement"`
	Used        int       `json:"used"`
	Remaining   int       `json:"remaining"`
}

// UsedDays sums the days of ownerID's non-rejected leave requests of type lt,
// skipping excludeID. Balances are always derived from the request set and
// never stored on their own.
func UsedDays(requests []Request, ownerID string, lt LeaveType, excludeID string) int {
	used := 0
	for _, req := range requests {
		if req.OwnerID != ownerID || req.Status == StatusRejected {
			continue
		}
		if excludeID != "" && req.ID == excludeID {
			continue
		}
		leave, ok := req.Payload.(Leave)
		if !ok || leave.LeaveType != lt {
			continue
		}
		used += leave.Days
	}
	return used
}

// RemainingBalance is the entitlement of lt minus UsedDays. Untracked types
// have no entitlement and report zero.
func RemainingBalance(requests []Request, ownerID string, lt LeaveType, excludeID string) int {
	entitlement, ok := Entitlements[lt]
	if !ok {
		return 0
	}
	return entitlement - UsedDays(requests, ownerID, lt, excludeID)
}

// Balances reports every tracked type in types, in the order given.
func Balances(requests []Request, ownerID string, types []LeaveType) []Balance {
	out := make([]Balance, 0, len(types))
	for _, lt := range types {
		entitlement, ok := Entitlements[lt]
		if !ok {
			continue
		}
		used := UsedDays(requests, ownerID, lt, "")
		out = append(out, Balance{
			LeaveType:   lt,
			Entitlement: entitlement,
			Used:        used,
			Remaining:   entitlement - used,
		})
	}
	return out
}
