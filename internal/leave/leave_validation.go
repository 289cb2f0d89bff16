package leave

import (
	"strings"
	"time"

	"leave-portal/internal/shared/apperror"
)

// IsEmergencyType reports whether a leave type name needs an emergency
// contact.
func IsEmergencyType(name string) bool {
	return strings.Contains(strings.ToLower(name), "emergency")
}

// ValidateLeaveRequest checks a create or update body before anything is
// sent. typeName is the resolved leave type name, used for the emergency
// contact rule. now decides what "today" is.
func ValidateLeaveRequest(req LeaveRequest, typeName string, now time.Time) error {
	req = req.normalized()

	fields := apperror.FieldErrors(apperror.Validator().Struct(req))
	if fields == nil {
		fields = map[string]string{}
	}

	start, startOK := ParseDate(req.StartDate)
	end, endOK := ParseDate(req.EndDate)
	if req.StartDate != "" && !startOK {
		fields["startDate"] = "Start date must be a valid date (YYYY-MM-DD)"
	}
	if req.EndDate != "" && !endOK {
		fields["endDate"] = "End date must be a valid date (YYYY-MM-DD)"
	}
	if startOK && endOK && end.Before(start) {
		fields["endDate"] = "End date cannot be before start date"
	}
	if startOK && start.Before(civilDate(now)) {
		fields["startDate"] = "Start date cannot be in the past"
	}

	if typeName == "" {
		typeName = req.LeaveType
	}
	if IsEmergencyType(typeName) && req.EmergencyContact == "" {
		fields["emergencyContact"] = "Emergency contact is required"
	}

	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

// ValidateRejectReason enforces the 10 to 500 character rule on the trimmed
// reason and returns it trimmed.
func ValidateRejectReason(reason string) (string, error) {
	req := RejectLeaveRequest{Reason: strings.TrimSpace(reason)}
	if err := apperror.Validator().Struct(req); err != nil {
		return "", apperror.MapValidationError(err)
	}
	return req.Reason, nil
}
