package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtside/league-system/models"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository is append-only: snapshots are never updated or
// deleted, they exist solely for rank-trend comparisons.
type SnapshotRepository interface {
	Create(ctx context.Context, exec SQLExecutor, snapshot *models.Snapshot) error
	// GetPrevious returns the most recent snapshot strictly before the
	// newest one, which is what trend comparison needs right after a
	// recompute appended a fresh snapshot.
	GetPrevious(ctx context.Context, tierID int) (*models.Snapshot, error)
	GetLatest(ctx context.Context, tierID int) (*models.Snapshot, error)
}

type postgresSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &postgresSnapshotRepository{db: db}
}

func (r *postgresSnapshotRepository) Create(ctx context.Context, exec SQLExecutor, snapshot *models.Snapshot) error {
	rowsJSON, err := json.Marshal(snapshot.Rows)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot rows: %w", err)
	}

	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `
		INSERT INTO standings_snapshots (tier_id, rows)
		VALUES ($1, $2)
		RETURNING id, created_at`
	err = executor.QueryRowContext(ctx, query, snapshot.TierID, rowsJSON).
		Scan(&snapshot.ID, &snapshot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create snapshot for tier %d: %w", snapshot.TierID, err)
	}
	return nil
}

func (r *postgresSnapshotRepository) getByOffset(ctx context.Context, tierID, offset int) (*models.Snapshot, error) {
	query := `
		SELECT id, tier_id, rows, created_at
		FROM standings_snapshots
		WHERE tier_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1 OFFSET $2`

	snapshot := &models.Snapshot{}
	var rowsJSON []byte
	err := r.db.QueryRowContext(ctx, query, tierID, offset).Scan(
		&snapshot.ID, &snapshot.TierID, &rowsJSON, &snapshot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to scan snapshot for tier %d: %w", tierID, err)
	}
	if err := json.Unmarshal(rowsJSON, &snapshot.Rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows for snapshot %d: %w", snapshot.ID, err)
	}
	return snapshot, nil
}

func (r *postgresSnapshotRepository) GetPrevious(ctx context.Context, tierID int) (*models.Snapshot, error) {
	return r.getByOffset(ctx, tierID, 1)
}

func (r *postgresSnapshotRepository) GetLatest(ctx context.Context, tierID int) (*models.Snapshot, error) {
	return r.getByOffset(ctx, tierID, 0)
}
