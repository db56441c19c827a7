package domain

import "time"

// User roles.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// User is an account that can sign in to the tracker.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleViewer
}
