package domain_test

import (
	"encoding/json"
	"testing"

	"leave-portal/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := map[string]domain.Role{
		"ADMIN":         domain.RoleAdmin,
		"manager":       domain.RoleManager,
		" Employee ":    domain.RoleEmployee,
		"ROLE_MANAGER":  domain.RoleManager,
		"role_employee": domain.RoleEmployee,
	}
	for in, want := range cases {
		got, ok := domain.ParseRole(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := domain.ParseRole("SUPERUSER")
	assert.False(t, ok)
}

func TestRole_Satisfies(t *testing.T) {
	for _, have := range domain.Roles {
		for _, required := range domain.Roles {
			want := have.Rank() >= required.Rank()
			assert.Equal(t, want, have.Satisfies(required), "%s satisfies %s", have, required)
		}
	}

	// higher roles satisfy lower requirements, not just equal ones
	assert.True(t, domain.RoleAdmin.Satisfies(domain.RoleEmployee))
	assert.False(t, domain.RoleEmployee.Satisfies(domain.RoleManager))
	assert.False(t, domain.Role("GUEST").Satisfies(domain.RoleEmployee))
}

func TestID_UnmarshalJSON(t *testing.T) {
	var v struct {
		A domain.ID `json:"a"`
		B domain.ID `json:"b"`
		C domain.ID `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a":42,"b":"lv-7","c":null}`), &v)

	assert.NoError(t, err)
	assert.Equal(t, domain.ID("42"), v.A)
	assert.Equal(t, domain.ID("lv-7"), v.B)
	assert.True(t, v.C.IsZero())
}
