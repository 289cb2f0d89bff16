package leave

import "time"

// Summarize computes the dashboard counters. Days used only counts approved
// leaves starting in now's year.
func Summarize(leaves []LeaveApplication, now time.Time) Summary {
	today := civilDate(now)
	var s Summary
	s.Total = len(leaves)
	for _, l := range leaves {
		switch l.Status {
		case StatusPending:
			s.Pending++
		case StatusApproved:
			s.Approved++
			if d, ok := ParseDate(l.ApprovedDate); ok && d.Equal(today) {
				s.ApprovedToday++
			}
			if start, ok := ParseDate(l.StartDate); ok && start.Year() == today.Year() {
				s.DaysUsedThisYear += l.Days()
			}
		case StatusRejected:
			s.Rejected++
		}
	}
	return s
}
