package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/zahel-sys/sigc-auth/internal/auth"
	"github.com/zahel-sys/sigc-auth/internal/config"
	"github.com/zahel-sys/sigc-auth/internal/domain"
	"github.com/zahel-sys/sigc-auth/internal/repository"
)

// EnsureAdmin creates a default admin user for dev/e2e if missing.
// Skipped entirely when ADMIN_EMAIL/ADMIN_PASSWORD are unset.
func EnsureAdmin(lc fx.Lifecycle, cfg config.Config, users repository.UserRepository, hasher auth.PasswordHasher, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureAdmin(ctx, cfg, users, hasher, logger)
		},
	})
}

func ensureAdmin(ctx context.Context, cfg config.Config, users repository.UserRepository, hasher auth.PasswordHasher, logger *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || strings.TrimSpace(cfg.AdminPassword) == "" {
		return nil
	}

	if exists, err := users.ExistsByEmail(ctx, email); err != nil {
		return fmt.Errorf("bootstrap lookup user: %w", err)
	} else if exists {
		return nil
	}

	hashed, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap hash password: %w", err)
	}

	created, err := users.Save(ctx, domain.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         domain.RoleAdmin,
		Active:       true,
	})
	if err != nil {
		// A concurrent replica may have created the admin first.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("bootstrap create user: %w", err)
	}

	if logger != nil {
		logger.Info("bootstrap admin user created",
			zap.String("email", created.Email),
			zap.Int64("user_id", created.ID),
		)
	}
	return nil
}
