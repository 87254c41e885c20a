package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/zahel-sys/sigc-auth/internal/domain"
	"github.com/zahel-sys/sigc-auth/internal/repository"
)

// RegisterResult confirms account creation. Token is always empty:
// registration never authenticates automatically.
type RegisterResult struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
	Role   string `json:"role"`
}

// RegisterUseCase creates a new user account.
type RegisterUseCase struct {
	users  repository.UserRepository
	hasher PasswordHasher
	policy PasswordPolicy
}

// NewRegisterUseCase wires dependencies.
func NewRegisterUseCase(users repository.UserRepository, hasher PasswordHasher, policy PasswordPolicy) *RegisterUseCase {
	return &RegisterUseCase{users: users, hasher: hasher, policy: policy}
}

// Execute validates the credentials, checks email uniqueness, hashes
// the password, and persists the account with role USER.
//
// The existence check and the insert are not one atomic step. The
// storage layer's unique constraint is the source of truth: a
// duplicate-email violation at insert time is reported the same way
// as a failed pre-check.
func (uc *RegisterUseCase) Execute(ctx context.Context, email, password string) (RegisterResult, error) {
	// This entry point does not collect a separate confirmation field,
	// so the password doubles as its own confirmation.
	if result := ValidateRegistrationCredentials(email, password, password, uc.policy); !result.Valid {
		return RegisterResult{}, newError(KindValidation, result.Message)
	}

	normalized := normalizeEmail(email)

	exists, err := uc.users.ExistsByEmail(ctx, normalized)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return RegisterResult{}, newError(KindEmailTaken, "email already registered")
	}

	hashed, err := uc.hasher.Hash(password)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := uc.users.Save(ctx, domain.User{
		Email:        normalized,
		PasswordHash: hashed,
		Role:         domain.RoleUser,
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return RegisterResult{}, newError(KindEmailTaken, "email already registered")
		}
		return RegisterResult{}, fmt.Errorf("create user: %w", err)
	}

	return RegisterResult{
		UserID: created.ID,
		Email:  created.Email,
		Token:  "",
		Role:   created.Role,
	}, nil
}
