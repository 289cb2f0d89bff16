package leavetype

import (
	"strings"

	"leave-portal/internal/shared/apperror"
)

// LeaveTypeRequest is the create and update body. New types start active and
// approval-gated unless the caller says otherwise.
type LeaveTypeRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=50"`
	Description      string `json:"description,omitempty" validate:"max=500"`
	MaxDaysPerYear   *int   `json:"maxDaysPerYear,omitempty" validate:"omitempty,min=1,max=365"`
	Color            string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Category         string `json:"category,omitempty" validate:"omitempty,oneof=general medical vacation personal emergency maternity paternity"`
	Priority         string `json:"priority,omitempty" validate:"omitempty,oneof=high medium low"`
	IsActive         *bool  `json:"isActive,omitempty"`
	RequiresApproval *bool  `json:"requiresApproval,omitempty"`
	CarryForward     bool   `json:"carryForward"`
}

type (
	CreateLeaveTypeRequest = LeaveTypeRequest
	UpdateLeaveTypeRequest = LeaveTypeRequest
)

// Validate trims the text fields and checks the form rules.
func (r *LeaveTypeRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.Priority = strings.ToLower(strings.TrimSpace(r.Priority))
	if err := apperror.Validator().Struct(r); err != nil {
		return apperror.MapValidationError(err)
	}
	return nil
}

func (r LeaveTypeRequest) withDefaults() LeaveTypeRequest {
	yes := true
	if r.IsActive == nil {
		r.IsActive = &yes
	}
	if r.RequiresApproval == nil {
		r.RequiresApproval = &yes
	}
	return r
}
