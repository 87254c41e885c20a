package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zahel-sys/sigc-auth/internal/domain"
)

// Compile-time interface assertions.
var (
	_ UserRepository = (*PostgresUserRepo)(nil)
	_ KeyRepository  = (*PostgresKeyRepo)(nil)
)

// PostgresUserRepo implements UserRepository on pgx. IDs are assigned
// here, not by the use cases: storage owns identity.
type PostgresUserRepo struct {
	db   *pgxpool.Pool
	node *snowflake.Node
}

func NewPostgresUserRepo(pool *pgxpool.Pool, node *snowflake.Node) *PostgresUserRepo {
	return &PostgresUserRepo{db: pool, node: node}
}

const userColumns = "id, email, password_hash, role, active, created_at, updated_at"

func (r *PostgresUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}
	return exists, nil
}

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, email), "get user by email")
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, userID int64) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, userID), "get user by id")
}

const insertUserSQL = `INSERT INTO users (id, email, password_hash, role, active)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns

const updateUserSQL = `UPDATE users
SET email = $2, password_hash = $3, role = $4, active = $5, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *PostgresUserRepo) Save(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == 0 {
		row := r.db.QueryRow(ctx, insertUserSQL,
			r.node.Generate().Int64(),
			user.Email,
			user.PasswordHash,
			user.Role,
			user.Active,
		)
		saved, err := r.scanUser(row, "create user")
		if err != nil {
			if isUniqueViolation(err) {
				return domain.User{}, ErrDuplicateEmail
			}
			return domain.User{}, err
		}
		return saved, nil
	}

	row := r.db.QueryRow(ctx, updateUserSQL,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Active,
	)
	saved, err := r.scanUser(row, "update user")
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, err
	}
	return saved, nil
}

func (r *PostgresUserRepo) scanUser(row pgx.Row, op string) (domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// PostgresKeyRepo implements KeyRepository.
type PostgresKeyRepo struct {
	db   *pgxpool.Pool
	node *snowflake.Node
}

func NewPostgresKeyRepo(pool *pgxpool.Pool, node *snowflake.Node) *PostgresKeyRepo {
	return &PostgresKeyRepo{db: pool, node: node}
}

func (r *PostgresKeyRepo) GetActiveKey(ctx context.Context) (domain.SigningKey, error) {
	const query = `SELECT id, kid, secret, algorithm, is_active, created_at, rotated_at
FROM signing_keys WHERE is_active LIMIT 1`

	var key domain.SigningKey
	if err := r.db.QueryRow(ctx, query).Scan(
		&key.ID,
		&key.KID,
		&key.Secret,
		&key.Algorithm,
		&key.IsActive,
		&key.CreatedAt,
		&key.RotatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SigningKey{}, fmt.Errorf("get active key: %w", ErrNotFound)
		}
		return domain.SigningKey{}, fmt.Errorf("get active key: %w", err)
	}
	return key, nil
}

func (r *PostgresKeyRepo) CreateKey(ctx context.Context, key domain.SigningKey) (domain.SigningKey, error) {
	const query = `INSERT INTO signing_keys (id, kid, secret, algorithm, is_active)
VALUES ($1, $2, $3, $4, true)
RETURNING id, created_at`

	key.IsActive = true
	if err := r.db.QueryRow(ctx, query,
		r.node.Generate().Int64(),
		key.KID,
		key.Secret,
		key.Algorithm,
	).Scan(&key.ID, &key.CreatedAt); err != nil {
		return domain.SigningKey{}, fmt.Errorf("insert key: %w", err)
	}
	return key, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
