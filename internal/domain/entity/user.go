package entity

import "time"

// Role names recognized by the capability check.
const (
	RoleAdmin      = "admin"
	RoleClassifier = "classificador"
	RoleExecutor   = "executor"
	RoleApprover   = "aprovador"
)

// User is a staff account. Authentication is handled outside this module;
// users exist here for role checks and executor/approver binding.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
