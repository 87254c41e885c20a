package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zahel-sys/sigc-auth/internal/repository"
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
	Role   string `json:"role"`
}

// LoginUseCase authenticates an email/password pair and issues a token.
type LoginUseCase struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenProvider
}

// NewLoginUseCase wires dependencies.
func NewLoginUseCase(users repository.UserRepository, hasher PasswordHasher, tokens TokenProvider) *LoginUseCase {
	return &LoginUseCase{users: users, hasher: hasher, tokens: tokens}
}

// Execute validates the credential shape, verifies the password against
// the stored hash, and issues a token. Unknown email, wrong password,
// and inactive account all fail with the same invalid-credentials kind
// and message so account existence never leaks.
func (uc *LoginUseCase) Execute(ctx context.Context, email, password string) (LoginResult, error) {
	if result := ValidateLoginCredentials(email, password); !result.Valid {
		return LoginResult{}, errInvalidCredentials()
	}

	user, err := uc.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, errInvalidCredentials()
		}
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}

	valid, err := uc.hasher.Verify(password, user.PasswordHash)
	if err != nil || !valid {
		return LoginResult{}, errInvalidCredentials()
	}

	if !user.Active {
		return LoginResult{}, errInvalidCredentials()
	}

	token, err := uc.tokens.Issue(ctx, Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	return LoginResult{
		UserID: user.ID,
		Email:  user.Email,
		Token:  token,
		Role:   user.Role,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
