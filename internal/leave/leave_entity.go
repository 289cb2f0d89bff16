package leave

import (
	"strings"

	"leave-portal/internal/domain"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsTerminal reports whether s can no longer change. PENDING is the only
// state a leave can leave.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, true
	default:
		return "", false
	}
}

// LeaveApplication is the backend's record. The client only caches it.
type LeaveApplication struct {
	ID               domain.ID `json:"id"`
	EmployeeID       domain.ID `json:"employeeId,omitempty"`
	UserID           domain.ID `json:"userId,omitempty"`
	EmployeeName     string    `json:"employeeName,omitempty"`
	EmployeeEmail    string    `json:"employeeEmail,omitempty"`
	Department       string    `json:"department,omitempty"`
	LeaveTypeID      domain.ID `json:"leaveTypeId,omitempty"`
	LeaveType        string    `json:"leaveType"`
	StartDate        string    `json:"startDate"`
	EndDate          string    `json:"endDate"`
	HalfDay          bool      `json:"halfDay,omitempty"`
	Reason           string    `json:"reason"`
	EmergencyContact string    `json:"emergencyContact,omitempty"`
	HandoverNotes    string    `json:"handoverNotes,omitempty"`
	Status           Status    `json:"status"`
	AppliedDate      string    `json:"appliedDate,omitempty"`
	ApprovedBy       string    `json:"approvedBy,omitempty"`
	ApprovedDate     string    `json:"approvedDate,omitempty"`
	RejectionReason  string    `json:"rejectionReason,omitempty"`
}

// Days is the leave's length as shown in every view.
func (l LeaveApplication) Days() float64 {
	return DurationDaysFromStrings(l.StartDate, l.EndDate, l.HalfDay)
}

// OwnedBy reports whether userID is the applicant.
func (l LeaveApplication) OwnedBy(userID string) bool {
	if userID == "" {
		return false
	}
	return l.EmployeeID.String() == userID || l.UserID.String() == userID
}
