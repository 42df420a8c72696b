package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role   Role
		target Role
		want   bool
	}{
		{RoleMember, RoleMember, true},
		{RoleMember, RoleModerator, false},
		{RoleMember, RoleAdmin, false},
		{RoleModerator, RoleMember, true},
		{RoleModerator, RoleModerator, true},
		{RoleModerator, RoleAdmin, false},
		{RoleAdmin, RoleMember, true},
		{RoleAdmin, RoleModerator, true},
		{RoleAdmin, RoleAdmin, true},
		{Role("owner"), RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+">="+string(tt.target), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.target))
		})
	}
}

func TestParseEnums(t *testing.T) {
	for _, st := range AllAccountStatuses {
		got, ok := ParseAccountStatus(string(st))
		assert.True(t, ok)
		assert.Equal(t, st, got)
	}
	_, ok := ParseAccountStatus("deleted")
	assert.False(t, ok)

	for _, r := range AllRoles {
		got, ok := ParseRole(string(r))
		assert.True(t, ok)
		assert.Equal(t, r, got)
	}
	_, ok = ParseRole("superuser")
	assert.False(t, ok)

	_, ok = ParseAttendanceStatus("late")
	assert.False(t, ok)
	_, ok = ParseProfileVisibility("friends")
	assert.False(t, ok)
}
