package jwt_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zahel-sys/sigc-auth/internal/auth"
	"github.com/zahel-sys/sigc-auth/internal/domain"
	"github.com/zahel-sys/sigc-auth/internal/jwt"
	"github.com/zahel-sys/sigc-auth/internal/repository"
)

type memoryKeyRepo struct {
	key domain.SigningKey
}

func (m *memoryKeyRepo) GetActiveKey(ctx context.Context) (domain.SigningKey, error) {
	if m.key.ID == 0 {
		return domain.SigningKey{}, fmt.Errorf("get active key: %w", repository.ErrNotFound)
	}
	return m.key, nil
}

func (m *memoryKeyRepo) CreateKey(ctx context.Context, key domain.SigningKey) (domain.SigningKey, error) {
	key.ID = 1
	m.key = key
	return key, nil
}

func TestIssueAndDecode(t *testing.T) {
	ctx := context.Background()
	keys := jwt.NewKeyManager(&memoryKeyRepo{})
	provider := jwt.NewProvider(keys, "sigc-auth-test", time.Minute)

	token, err := provider.Issue(ctx, auth.Identity{UserID: 42, Role: domain.RoleUser})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := provider.Decode(ctx, token)
	require.NoError(t, err)
	require.Equal(t, int64(42), identity.UserID)
	require.Equal(t, domain.RoleUser, identity.Role)
}

func TestDecodeRejectsExpired(t *testing.T) {
	ctx := context.Background()
	keys := jwt.NewKeyManager(&memoryKeyRepo{})
	provider := jwt.NewProvider(keys, "sigc-auth-test", -time.Minute)

	token, err := provider.Issue(ctx, auth.Identity{UserID: 42, Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = provider.Decode(ctx, token)
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestDecodeRejectsWrongIssuer(t *testing.T) {
	ctx := context.Background()
	repo := &memoryKeyRepo{}
	issuing := jwt.NewProvider(jwt.NewKeyManager(repo), "issuer-a", time.Minute)
	decoding := jwt.NewProvider(jwt.NewKeyManager(repo), "issuer-b", time.Minute)

	token, err := issuing.Issue(ctx, auth.Identity{UserID: 42, Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = decoding.Decode(ctx, token)
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestDecodeRejectsForgedToken(t *testing.T) {
	ctx := context.Background()
	issuing := jwt.NewProvider(jwt.NewKeyManager(&memoryKeyRepo{}), "sigc-auth-test", time.Minute)
	decoding := jwt.NewProvider(jwt.NewKeyManager(&memoryKeyRepo{}), "sigc-auth-test", time.Minute)

	token, err := issuing.Issue(ctx, auth.Identity{UserID: 42, Role: domain.RoleUser})
	require.NoError(t, err)

	// Force the decoder to own a different signing key.
	_, err = decoding.Issue(ctx, auth.Identity{UserID: 1, Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = decoding.Decode(ctx, token)
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	keys := jwt.NewKeyManager(&memoryKeyRepo{})
	provider := jwt.NewProvider(keys, "sigc-auth-test", time.Minute)

	// Materialize a key first so Decode has something to verify against.
	_, err := provider.Issue(ctx, auth.Identity{UserID: 1, Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = provider.Decode(ctx, "not.a.jwt")
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}
