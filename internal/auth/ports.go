package auth

import "context"

// PasswordHasher is a one-way salted hash primitive. Hashes are opaque
// strings; the use cases never inspect them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// Identity is the authenticated principal carried by a token.
type Identity struct {
	UserID int64
	Role   string
}

// TokenProvider issues and decodes signed identity tokens. Expiration
// is enforced by the provider; token format is opaque to the use cases.
type TokenProvider interface {
	Issue(ctx context.Context, identity Identity) (string, error)
	Decode(ctx context.Context, token string) (Identity, error)
}
