package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"genba_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker is the database model for a field worker account.
type Worker struct {
	ID           uuid.UUID `db:"id"`
	CompanyID    uuid.UUID `db:"company_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	DisplayName  string    `db:"display_name"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const workerNotFoundMsg = "worker not found"

const workerColumns = `id, company_id, email, password_hash, display_name, role, created_at, updated_at`

// Repository provides database operations for worker accounts and
// refresh tokens.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new auth repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetWorkerByEmail retrieves a worker account by email.
func (r *Repository) GetWorkerByEmail(ctx context.Context, email string) (*Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE email = $1`
	return r.scanWorker(r.pool.QueryRow(ctx, query, email))
}

// GetWorkerByID retrieves a worker account by ID.
func (r *Repository) GetWorkerByID(ctx context.Context, id uuid.UUID) (*Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE id = $1`
	return r.scanWorker(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) scanWorker(row pgx.Row) (*Worker, error) {
	var w Worker
	err := row.Scan(
		&w.ID, &w.CompanyID, &w.Email, &w.PasswordHash,
		&w.DisplayName, &w.Role, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(workerNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return &w, nil
}

// CreateRefreshToken stores a hashed refresh token for a worker.
func (r *Repository) CreateRefreshToken(ctx context.Context, workerID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (token_hash, worker_id, expires_at, created_at)
		VALUES ($1, $2, $3, now())`

	if _, err := r.pool.Exec(ctx, query, tokenHash, workerID, expiresAt); err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken looks up a stored refresh token by its hash.
func (r *Repository) GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error) {
	var workerID uuid.UUID
	var expiresAt time.Time
	query := `SELECT worker_id, expires_at FROM refresh_tokens WHERE token_hash = $1`

	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(&workerID, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, time.Time{}, apperr.NotFound("refresh token not found")
		}
		return uuid.Nil, time.Time{}, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return workerID, expiresAt, nil
}

// RevokeRefreshToken deletes a stored refresh token. Revoking an unknown
// token is not an error.
func (r *Repository) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllRefreshTokens deletes every refresh token for a worker.
func (r *Repository) RevokeAllRefreshTokens(ctx context.Context, workerID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE worker_id = $1`, workerID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}
