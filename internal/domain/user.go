package domain

import "time"

// Roles assigned to users. Registration always produces RoleUser;
// RoleAdmin only exists through the bootstrap path.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an end user account. PasswordHash is the only
// credential material ever stored; plaintext passwords never leave
// the use-case layer.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
