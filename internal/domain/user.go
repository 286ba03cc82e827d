package domain

import "time"

// UserRole is a flat classification. Admin does not inherit User; guards
// compare roles by strict equality.
type UserRole string

const (
	RoleAdmin UserRole = "Admin"
	RoleUser  UserRole = "User"
)

// ValidRole reports whether the value is a known role.
func ValidRole(role UserRole) bool {
	return role == RoleAdmin || role == RoleUser
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "Active"
	UserStatusInactive UserStatus = "Inactive"
	UserStatusBanned   UserStatus = "Banned"
)

// User is the domain model for accounts. PasswordHash never leaves the
// process through any API surface.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       UserStatus
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
