package leavetype

import "leave-portal/internal/domain"

type LeaveType struct {
	ID               domain.ID `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	MaxDaysPerYear   *int      `json:"maxDaysPerYear,omitempty"`
	Color            string    `json:"color,omitempty"`
	Category         string    `json:"category,omitempty"`
	Priority         string    `json:"priority,omitempty"`
	IsActive         bool      `json:"isActive"`
	RequiresApproval bool      `json:"requiresApproval"`
	CarryForward     bool      `json:"carryForward"`
}
