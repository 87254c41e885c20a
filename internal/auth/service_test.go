package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zahel-sys/sigc-auth/internal/auth"
	"github.com/zahel-sys/sigc-auth/internal/domain"
	"github.com/zahel-sys/sigc-auth/internal/jwt"
	"github.com/zahel-sys/sigc-auth/internal/password"
	"github.com/zahel-sys/sigc-auth/internal/repository"
)

func newTestService(t *testing.T, users repository.UserRepository) *auth.Service {
	t.Helper()
	keys := jwt.NewKeyManager(&memoryKeyRepo{})
	tokens := jwt.NewProvider(keys, "sigc-auth-test", time.Minute)
	return auth.NewService(users, password.NewHasher(), tokens, auth.PasswordPolicy{MinLength: 8}, zap.NewNop())
}

func TestRegisterLoginChangePasswordFlow(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	service := newTestService(t, users)

	registered, err := service.Register(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	require.NotZero(t, registered.UserID)
	require.Equal(t, "a@x.com", registered.Email)
	require.Empty(t, registered.Token)
	require.Equal(t, domain.RoleUser, registered.Role)

	logged, err := service.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	require.Equal(t, registered.UserID, logged.UserID)
	require.Equal(t, registered.Email, logged.Email)
	require.Equal(t, domain.RoleUser, logged.Role)
	require.NotEmpty(t, logged.Token)

	_, err = service.Login(ctx, "a@x.com", "wrong")
	require.True(t, auth.IsKind(err, auth.KindInvalidCredentials))

	changed, err := service.ChangePassword(ctx, logged.UserID, "Secret123", "NewPass456", "NewPass456")
	require.NoError(t, err)
	require.True(t, changed.Success)

	_, err = service.Login(ctx, "a@x.com", "Secret123")
	require.True(t, auth.IsKind(err, auth.KindInvalidCredentials))

	relogged, err := service.Login(ctx, "a@x.com", "NewPass456")
	require.NoError(t, err)
	require.Equal(t, registered.UserID, relogged.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	service := newTestService(t, users)

	_, err := service.Register(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	_, err = service.Register(ctx, "a@x.com", "Secret123")
	require.True(t, auth.IsKind(err, auth.KindEmailTaken))

	// Regardless of the password value.
	_, err = service.Register(ctx, "a@x.com", "TotallyOther99")
	require.True(t, auth.IsKind(err, auth.KindEmailTaken))

	// Email normalization applies before the uniqueness check.
	_, err = service.Register(ctx, "  A@X.COM  ", "Secret123")
	require.True(t, auth.IsKind(err, auth.KindEmailTaken))
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, newMemoryUserRepo())

	_, err := service.Register(ctx, "a@x.com", "short")
	require.True(t, auth.IsKind(err, auth.KindValidation))

	_, err = service.Register(ctx, "not-an-email", "Secret123")
	require.True(t, auth.IsKind(err, auth.KindValidation))
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	service := newTestService(t, users)

	_, err := service.Register(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	_, wrongPassword := service.Login(ctx, "a@x.com", "wrong")
	_, unknownEmail := service.Login(ctx, "nobody@x.com", "Secret123")

	require.True(t, auth.IsKind(wrongPassword, auth.KindInvalidCredentials))
	require.True(t, auth.IsKind(unknownEmail, auth.KindInvalidCredentials))
	// Identical message text so callers cannot tell the cases apart.
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginInactiveAccount(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	service := newTestService(t, users)

	registered, err := service.Register(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	user := users.byID[registered.UserID]
	user.Active = false
	users.byID[registered.UserID] = user
	users.byEmail[user.Email] = user

	_, err = service.Login(ctx, "a@x.com", "Secret123")
	require.True(t, auth.IsKind(err, auth.KindInvalidCredentials))
}

func TestLoginMalformedInputSkipsStorage(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	service := newTestService(t, users)

	_, err := service.Login(ctx, "not-an-email", "whatever")
	require.True(t, auth.IsKind(err, auth.KindInvalidCredentials))
	require.Zero(t, users.lookups)
}

func TestRegisterTranslatesInsertRace(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	// Simulate a concurrent registration landing between the existence
	// check and the insert.
	users.duplicateOnSave = true
	service := newTestService(t, users)

	_, err := service.Register(ctx, "a@x.com", "Secret123")
	require.True(t, auth.IsKind(err, auth.KindEmailTaken))
}

func TestChangePasswordFailures(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	service := newTestService(t, users)

	registered, err := service.Register(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	originalHash := users.byID[registered.UserID].PasswordHash

	result, err := service.ChangePassword(ctx, 999, "Secret123", "NewPass456", "NewPass456")
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, "user not found", result.Message)

	result, err = service.ChangePassword(ctx, registered.UserID, "wrong", "NewPass456", "NewPass456")
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, "current password incorrect", result.Message)

	result, err = service.ChangePassword(ctx, registered.UserID, "Secret123", "NewPass456", "Other789")
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, "passwords do not match", result.Message)

	result, err = service.ChangePassword(ctx, registered.UserID, "Secret123", "short", "short")
	require.NoError(t, err)
	require.False(t, result.Success)

	result, err = service.ChangePassword(ctx, registered.UserID, "Secret123", "Secret123", "Secret123")
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, "new password must be different from the current password", result.Message)

	// None of the failures touched the stored hash.
	require.Equal(t, originalHash, users.byID[registered.UserID].PasswordHash)
}

type memoryUserRepo struct {
	byID            map[int64]domain.User
	byEmail         map[string]domain.User
	nextID          int64
	lookups         int
	duplicateOnSave bool
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		byID:    make(map[int64]domain.User),
		byEmail: make(map[string]domain.User),
		nextID:  1,
	}
}

func (m *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.lookups++
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.lookups++
	user, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, userID int64) (domain.User, error) {
	m.lookups++
	user, ok := m.byID[userID]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) Save(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == 0 {
		if m.duplicateOnSave {
			return domain.User{}, repository.ErrDuplicateEmail
		}
		if _, ok := m.byEmail[user.Email]; ok {
			return domain.User{}, repository.ErrDuplicateEmail
		}
		user.ID = m.nextID
		m.nextID++
	}
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user
	return user, nil
}

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
