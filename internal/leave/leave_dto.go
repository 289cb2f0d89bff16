package leave

import (
	"fmt"
	"strings"

	"leave-portal/internal/domain"
	leaveerrors "leave-portal/internal/leave/errors"
)

// LeaveRequest is the body of both create and update calls.
type LeaveRequest struct {
	UserID           domain.ID `json:"userId,omitempty"`
	LeaveTypeID      domain.ID `json:"leaveTypeId,omitempty"`
	LeaveType        string    `json:"leaveType,omitempty"`
	StartDate        string    `json:"startDate" validate:"required"`
	EndDate          string    `json:"endDate" validate:"required"`
	Reason           string    `json:"reason" validate:"required,max=1000"`
	HalfDay          bool      `json:"halfDay,omitempty"`
	EmergencyContact string    `json:"emergencyContact,omitempty" validate:"max=100"`
	HandoverNotes    string    `json:"handoverNotes,omitempty" validate:"max=1000"`
}

type (
	CreateLeaveRequest = LeaveRequest
	UpdateLeaveRequest = LeaveRequest
)

func (r LeaveRequest) normalized() LeaveRequest {
	r.LeaveType = strings.TrimSpace(r.LeaveType)
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = strings.TrimSpace(r.EndDate)
	r.Reason = strings.TrimSpace(r.Reason)
	r.EmergencyContact = strings.TrimSpace(r.EmergencyContact)
	r.HandoverNotes = strings.TrimSpace(r.HandoverNotes)
	return r
}

const (
	MinRejectReason = 10
	MaxRejectReason = 500
)

type RejectLeaveRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=500"`
}

type ScopeKind string

const (
	ScopeAll     ScopeKind = "all"
	ScopeUser    ScopeKind = "mine"
	ScopeManager ScopeKind = "team"
)

// Scope picks which list endpoint a refresh reads from. The server decides
// what each one contains.
type Scope struct {
	Kind ScopeKind
	ID   string
}

func AllScope() Scope               { return Scope{Kind: ScopeAll} }
func UserScope(userID string) Scope { return Scope{Kind: ScopeUser, ID: userID} }
func ManagerScope(id string) Scope  { return Scope{Kind: ScopeManager, ID: id} }

// ParseScope maps the ?scope= query value; mine and team need the caller's
// user id.
func ParseScope(kind, userID string) (Scope, error) {
	switch ScopeKind(strings.ToLower(strings.TrimSpace(kind))) {
	case "", ScopeAll:
		return AllScope(), nil
	case ScopeUser:
		if userID == "" {
			return Scope{}, leaveerrors.ErrMissingUserID
		}
		return UserScope(userID), nil
	case ScopeManager:
		if userID == "" {
			return Scope{}, leaveerrors.ErrMissingUserID
		}
		return ManagerScope(userID), nil
	default:
		return Scope{}, leaveerrors.ErrInvalidScope
	}
}

func (s Scope) String() string {
	if s.ID == "" {
		return string(s.Kind)
	}
	return fmt.Sprintf("%s:%s", s.Kind, s.ID)
}

type Summary struct {
	Total            int     `json:"total"`
	Pending          int     `json:"pending"`
	Approved         int     `json:"approved"`
	Rejected         int     `json:"rejected"`
	ApprovedToday    int     `json:"approvedToday"`
	DaysUsedThisYear float64 `json:"daysUsedThisYear"`
}
