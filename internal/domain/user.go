package domain

import "time"

// Role distinguishes end-users from support operators.
type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
)

// User is the domain model for ticket requesters and operators.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}
