package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate")

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// User is an account row.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository provides access to the users table.
type UserRepository struct {
	q Querier
}

// NewUserRepository constructs a UserRepository backed by the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{q: pool}
}

// NewUserRepositoryWithQuerier constructs a UserRepository with a custom Querier (for tests).
func NewUserRepositoryWithQuerier(q Querier) *UserRepository {
	return &UserRepository{q: q}
}

// CreateUser inserts a user and returns the stored row.
// Returns ErrDuplicate when the email is already registered.
func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	const q = `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id::text, email, password_hash, created_at
	`

	var u User
	err := r.q.QueryRow(ctx, q, email, passwordHash).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("inserting user %s: %w", email, err)
	}

	return &u, nil
}

// GetUserByEmail looks a user up by email. Returns ErrNotFound when absent.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	const q = `
		SELECT id::text, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	var u User
	err := r.q.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user %s: %w", email, err)
	}

	return &u, nil
}
