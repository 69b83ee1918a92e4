package authz

import (
	"testing"

	"github.com/hsvida/incident-workflow/internal/domain/entity"
)

func TestHasRole(t *testing.T) {
	tests := []struct {
		name     string
		user     *entity.User
		role     string
		expected bool
	}{
		{"nil user", nil, entity.RoleExecutor, false},
		{"inactive user", &entity.User{Roles: []string{entity.RoleExecutor}, Active: false}, entity.RoleExecutor, false},
		{"exact role", &entity.User{Roles: []string{entity.RoleExecutor}, Active: true}, entity.RoleExecutor, true},
		{"missing role", &entity.User{Roles: []string{entity.RoleExecutor}, Active: true}, entity.RoleApprover, false},
		{"admin satisfies any role", &entity.User{Roles: []string{entity.RoleAdmin}, Active: true}, entity.RoleClassifier, true},
		{"no roles", &entity.User{Roles: nil, Active: true}, entity.RoleExecutor, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasRole(tt.user, tt.role); got != tt.expected {
				t.Errorf("HasRole() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFilterByRole(t *testing.T) {
	users := []*entity.User{
		{ID: 1, Roles: []string{entity.RoleExecutor}, Active: true},
		{ID: 2, Roles: []string{entity.RoleExecutor}, Active: false},
		{ID: 3, Roles: []string{entity.RoleAdmin}, Active: true},
		{ID: 4, Roles: []string{entity.RoleExecutor, entity.RoleApprover}, Active: true},
	}

	got := FilterByRole(users, entity.RoleExecutor)
	if len(got) != 2 {
		t.Fatalf("FilterByRole() returned %d users, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 4 {
		t.Errorf("FilterByRole() returned ids %d, %d; want 1, 4", got[0].ID, got[1].ID)
	}
}
