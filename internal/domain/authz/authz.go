// Package authz centralizes the role capability check. Admin implicitly
// satisfies every role; keep that rule here instead of repeating it per call
// site.
package authz

import "github.com/hsvida/incident-workflow/internal/domain/entity"

// HasRole reports whether the user holds the required role. Admins pass any
// check. Inactive users hold no roles.
func HasRole(user *entity.User, role string) bool {
	if user == nil || !user.Active {
		return false
	}
	for _, r := range user.Roles {
		if r == role || r == entity.RoleAdmin {
			return true
		}
	}
	return false
}

// FilterByRole returns the active users holding the given role. Unlike
// HasRole, admin is not implicit here: assignment lists (executors, approvers)
// only offer users explicitly carrying the role.
func FilterByRole(users []*entity.User, role string) []*entity.User {
	var out []*entity.User
	for _, u := range users {
		if u == nil || !u.Active {
			continue
		}
		for _, r := range u.Roles {
			if r == role {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
