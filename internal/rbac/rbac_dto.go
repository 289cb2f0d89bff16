package rbac

const (
	ResourceLeave     = "leave"
	ResourceLeaveType = "leave-type"

	ActionRead      = "read"
	ActionCreate    = "create"
	ActionUpdateOwn = "update-own"
	ActionUpdate    = "update"
	ActionApprove   = "approve"
	ActionReject    = "reject"
	ActionDelete    = "delete"
	ActionWrite     = "write"
)

type EnforceRequest struct {
	Role     string `json:"role"`
	Resource string `json:"resource" validate:"required"`
	Action   string `json:"action" validate:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

type Permission struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}
