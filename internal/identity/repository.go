package identity

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createOwnersTableSQL = `
CREATE TABLE IF NOT EXISTS owners (
  owner_id text PRIMARY KEY,
  created_at timestamptz NOT NULL,
  last_seen_at timestamptz NOT NULL
)`

const upsertOwnerSQL = `
INSERT INTO owners (owner_id, created_at, last_seen_at)
VALUES ($1, $2, $2)
ON CONFLICT (owner_id) DO UPDATE
SET last_seen_at = EXCLUDED.last_seen_at
`

// OwnerRepository records anonymous owners in Postgres.
type OwnerRepository struct {
	Pool *pgxpool.Pool
}

func NewOwnerRepository(pool *pgxpool.Pool) *OwnerRepository {
	return &OwnerRepository{Pool: pool}
}

func (r *OwnerRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.Pool.Exec(ctx, createOwnersTableSQL)
	return err
}

func (r *OwnerRepository) EnsureOwner(ctx context.Context, ownerID string, seenAt time.Time) error {
	_, err := r.Pool.Exec(ctx, upsertOwnerSQL, ownerID, seenAt)
	return err
}
