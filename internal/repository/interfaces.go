package repository

import (
	"context"
	"errors"

	"github.com/zahel-sys/sigc-auth/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an insert violates the unique
// email constraint. The pre-insert existence check is not atomic, so
// this signal is the source of truth for uniqueness.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository exposes persistence for user accounts.
type UserRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID int64) (domain.User, error)
	// Save inserts when user.ID is zero, assigning the ID, and
	// updates otherwise. Inserts fail with ErrDuplicateEmail when the
	// email is already taken.
	Save(ctx context.Context, user domain.User) (domain.User, error)
}

// KeyRepository stores JWT signing keys.
type KeyRepository interface {
	GetActiveKey(ctx context.Context) (domain.SigningKey, error)
	CreateKey(ctx context.Context, key domain.SigningKey) (domain.SigningKey, error)
}

// LoginAttemptStore tracks consecutive failed logins per email so the
// transport layer can lock accounts out temporarily.
type LoginAttemptStore interface {
	RecordFailure(ctx context.Context, email string) (int64, error)
	Reset(ctx context.Context, email string) error
	Locked(ctx context.Context, email string) (bool, error)
}
