package domain

import "time"

// SigningKey stores the JWT signing secret. Only one key is active at
// a time; rotation deactivates the previous key.
type SigningKey struct {
	ID        int64
	KID       string
	Secret    []byte
	Algorithm string
	IsActive  bool
	CreatedAt time.Time
	RotatedAt *time.Time
}
