package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/clean-auth/internal/domain/entity"
	"github.com/oksasatya/clean-auth/internal/domain/repository"
)

const userColumns = `
	id, email, username, password_hash, date_of_birth, gender,
	is_email_confirmed, email_confirmation_code, email_confirmation_code_expire_time,
	refresh_token, refresh_token_expire_time, version, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	code, codeExp := nullable(u.EmailConfirmation)
	refresh, refreshExp := nullable(u.RefreshToken)

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, date_of_birth, gender,
			is_email_confirmed, email_confirmation_code, email_confirmation_code_expire_time,
			refresh_token, refresh_token_expire_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, version, created_at, updated_at
	`, u.Email, u.Username, u.PasswordHash, u.DateOfBirth, string(u.Gender),
		u.IsEmailConfirmed, code, codeExp, refresh, refreshExp)

	if err := row.Scan(&u.ID, &u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	// The id column is a uuid; anything else cannot match and would fail the cast.
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*entity.User, error) {
	return r.queryOne(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE username = $1 OR lower(email) = lower($1)
		LIMIT 1`, usernameOrEmail)
}

func (r *UserRepository) GetByRefreshToken(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE refresh_token = $1`, token)
}

func (r *UserRepository) GetByConfirmationCode(ctx context.Context, code string) (*entity.User, error) {
	if code == "" {
		return nil, nil
	}
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email_confirmation_code = $1`, code)
}

// Save writes the mutable fields guarded by the version read alongside u.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	code, codeExp := nullable(u.EmailConfirmation)
	refresh, refreshExp := nullable(u.RefreshToken)
	// a revoked refresh token keeps its pinned expiry
	if refreshExp == nil && !u.RefreshToken.ExpiresAt.IsZero() {
		t := u.RefreshToken.ExpiresAt
		refreshExp = &t
	}

	var updatedAt time.Time
	err := r.pool.QueryRow(ctx, `
		UPDATE users
		SET email = $1, username = $2, password_hash = $3,
			is_email_confirmed = $4,
			email_confirmation_code = $5, email_confirmation_code_expire_time = $6,
			refresh_token = $7, refresh_token_expire_time = $8,
			version = version + 1, updated_at = now()
		WHERE id = $9 AND version = $10
		RETURNING updated_at
	`, u.Email, u.Username, u.PasswordHash, u.IsEmailConfirmed,
		code, codeExp, refresh, refreshExp, u.ID, u.Version).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrStaleUser
		}
		return fmt.Errorf("update user: %w", err)
	}
	u.Version++
	u.UpdatedAt = updatedAt
	return nil
}

func (r *UserRepository) queryOne(ctx context.Context, sql string, args ...any) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u                   entity.User
		gender              string
		code, refresh       *string
		codeExp, refreshExp *time.Time
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.DateOfBirth, &gender,
		&u.IsEmailConfirmed, &code, &codeExp, &refresh, &refreshExp,
		&u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Gender = entity.Gender(gender)
	u.EmailConfirmation = expiring(code, codeExp)
	u.RefreshToken = expiring(refresh, refreshExp)
	return &u, nil
}

func nullable(e entity.Expiring) (*string, *time.Time) {
	if e.IsZero() {
		return nil, nil
	}
	v, t := e.Value, e.ExpiresAt
	return &v, &t
}

func expiring(v *string, t *time.Time) entity.Expiring {
	var e entity.Expiring
	if v != nil {
		e.Value = *v
	}
	if t != nil {
		e.ExpiresAt = *t
	}
	return e
}

// isUniqueViolation detects PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ repository.UserRepository = (*UserRepository)(nil)
