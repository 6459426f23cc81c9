package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists telemetry events to Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a telemetry repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes one telemetry event row. Properties are stored as JSONB.
func (r *Repository) Insert(ctx context.Context, event Event) error {
	properties, err := json.Marshal(event.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode telemetry properties: %w", err)
	}

	query := `
		INSERT INTO telemetry_events (id, name, user_id, site_id, properties, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.pool.Exec(ctx, query,
		uuid.New(), event.Name, event.UserID, event.SiteID, properties, event.OccurredAt,
	); err != nil {
		return fmt.Errorf("failed to insert telemetry event: %w", err)
	}
	return nil
}

var _ Store = (*Repository)(nil)
