package rbac

import (
	"leave-portal/internal/domain"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// DefaultPolicy is the action table each role adds on top of the roles it
// inherits from.
var DefaultPolicy = map[domain.Role][]Permission{
	domain.RoleEmployee: {
		{ResourceLeave, ActionRead},
		{ResourceLeave, ActionCreate},
		{ResourceLeave, ActionUpdateOwn},
		{ResourceLeaveType, ActionRead},
	},
	domain.RoleManager: {
		{ResourceLeave, ActionApprove},
		{ResourceLeave, ActionReject},
	},
	domain.RoleAdmin: {
		{ResourceLeave, ActionUpdate},
		{ResourceLeave, ActionDelete},
		{ResourceLeaveType, ActionWrite},
	},
}

// NewEnforcer builds an in-memory enforcer holding DefaultPolicy with
// ADMIN inheriting MANAGER and MANAGER inheriting EMPLOYEE.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for role, perms := range DefaultPolicy {
		for _, p := range perms {
			if _, err := e.AddPolicy(role.String(), p.Resource, p.Action); err != nil {
				return nil, err
			}
		}
	}
	for i := len(domain.Roles) - 1; i > 0; i-- {
		if _, err := e.AddGroupingPolicy(domain.Roles[i].String(), domain.Roles[i-1].String()); err != nil {
			return nil, err
		}
	}
	return e, nil
}
