package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/zahel-sys/sigc-auth/internal/repository"
)

// ChangePasswordResult reports the outcome of a password change.
// Business failures are Success=false with a message rather than an
// error: this operation is invoked from a context that already expects
// a structured yes/no answer.
type ChangePasswordResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ChangePasswordUseCase replaces a user's password after
// re-authenticating the current one.
type ChangePasswordUseCase struct {
	users  repository.UserRepository
	hasher PasswordHasher
	policy PasswordPolicy
}

// NewChangePasswordUseCase wires dependencies.
func NewChangePasswordUseCase(users repository.UserRepository, hasher PasswordHasher, policy PasswordPolicy) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{users: users, hasher: hasher, policy: policy}
}

// Execute changes the password for userID. The caller must have
// derived userID from an already-validated token; this use case does
// not decode tokens. A non-nil error means an infrastructure fault,
// never a business failure.
func (uc *ChangePasswordUseCase) Execute(ctx context.Context, userID int64, currentPassword, newPassword, confirmPassword string) (ChangePasswordResult, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return failed("user not found"), nil
		}
		return ChangePasswordResult{}, fmt.Errorf("load user: %w", err)
	}

	valid, err := uc.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil || !valid {
		return failed("current password incorrect"), nil
	}

	if result := ValidateRegistrationCredentials(user.Email, newPassword, confirmPassword, uc.policy); !result.Valid {
		return failed(result.Message), nil
	}

	if newPassword == currentPassword {
		return failed("new password must be different from the current password"), nil
	}

	hashed, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return ChangePasswordResult{}, fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hashed
	if _, err := uc.users.Save(ctx, user); err != nil {
		return ChangePasswordResult{}, fmt.Errorf("save user: %w", err)
	}

	return ChangePasswordResult{Success: true, Message: "password updated"}, nil
}

func failed(message string) ChangePasswordResult {
	return ChangePasswordResult{Success: false, Message: message}
}
