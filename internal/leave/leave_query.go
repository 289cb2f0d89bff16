package leave

import (
	"sort"
	"strings"
)

const (
	SortAppliedDate  = "appliedDate"
	SortStartDate    = "startDate"
	SortEmployeeName = "employeeName"
	SortStatus       = "status"
	SortDuration     = "duration"
)

// Filter narrows and orders an already-fetched list for display. It never
// widens what the server returned.
type Filter struct {
	Search    string
	Status    Status
	LeaveType string
	SortBy    string
	Desc      bool
}

func (f Filter) Apply(leaves []LeaveApplication) []LeaveApplication {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	leaveType := strings.TrimSpace(f.LeaveType)

	out := make([]LeaveApplication, 0, len(leaves))
	for _, l := range leaves {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if leaveType != "" && !strings.EqualFold(l.LeaveType, leaveType) {
			continue
		}
		if search != "" && !matches(l, search) {
			continue
		}
		out = append(out, l)
	}

	less := lessFunc(f.SortBy)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func matches(l LeaveApplication, search string) bool {
	return strings.Contains(strings.ToLower(l.EmployeeName), search) ||
		strings.Contains(strings.ToLower(l.EmployeeID.String()), search) ||
		strings.Contains(strings.ToLower(l.LeaveType), search)
}

func lessFunc(field string) func(a, b LeaveApplication) bool {
	switch field {
	case SortAppliedDate:
		return func(a, b LeaveApplication) bool { return dateKey(a.AppliedDate) < dateKey(b.AppliedDate) }
	case SortStartDate:
		return func(a, b LeaveApplication) bool { return dateKey(a.StartDate) < dateKey(b.StartDate) }
	case SortEmployeeName:
		return func(a, b LeaveApplication) bool {
			return strings.ToLower(a.EmployeeName) < strings.ToLower(b.EmployeeName)
		}
	case SortStatus:
		return func(a, b LeaveApplication) bool { return a.Status < b.Status }
	case SortDuration:
		return func(a, b LeaveApplication) bool { return a.Days() < b.Days() }
	default:
		return nil
	}
}

// dateKey sorts unparsable dates first.
func dateKey(s string) int64 {
	t, ok := ParseDate(s)
	if !ok {
		return -1 << 62
	}
	return t.Unix()
}
