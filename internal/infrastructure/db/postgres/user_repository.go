package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shopcore/storefront-api/internal/core/domain"
)

const userColumns = `id, email, password, name, avatar_url, phone_number, created_at, updated_at`

// UserRepository implements ports.UserRepository on the users table.
type UserRepository struct {
	pool PgxPool
}

func NewUserRepository(pool PgxPool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (email, password, name, avatar_url, phone_number, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	created := *user
	err := r.pool.QueryRow(ctx, q,
		user.Email,
		nullable(user.PasswordHash),
		user.Name,
		user.AvatarURL,
		user.PhoneNumber,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&created.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, q, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, q, id)
}

// Update applies patch and returns the stored row. An empty avatar or phone
// number is written as NULL.
func (r *UserRepository) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	const q = `
UPDATE users SET
    name         = COALESCE($2, name),
    avatar_url   = CASE WHEN $3::text IS NULL THEN avatar_url ELSE NULLIF($3::text, '') END,
    phone_number = CASE WHEN $4::text IS NULL THEN phone_number ELSE NULLIF($4::text, '') END,
    password     = COALESCE($5, password),
    updated_at   = $6
WHERE id = $1
RETURNING ` + userColumns

	return r.findOne(ctx, q,
		id,
		patch.Name,
		patch.AvatarURL,
		patch.PhoneNumber,
		patch.PasswordHash,
		patch.UpdatedAt,
	)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *UserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *UserRepository) findOne(ctx context.Context, q string, args ...any) (*domain.User, error) {
	var (
		u        domain.User
		password *string
	)
	err := r.pool.QueryRow(ctx, q, args...).Scan(
		&u.ID,
		&u.Email,
		&password,
		&u.Name,
		&u.AvatarURL,
		&u.PhoneNumber,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if password != nil {
		u.PasswordHash = *password
	}
	return &u, nil
}

// nullable maps "" to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
