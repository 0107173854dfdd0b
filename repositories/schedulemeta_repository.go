package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtside/league-system/models"
)

var ErrScheduleMetaNotFound = errors.New("schedule meta not found")

type ScheduleMetaRepository interface {
	// Replace deletes any prior record for the tier and inserts the new one.
	Replace(ctx context.Context, exec SQLExecutor, meta *models.ScheduleMeta) error
	GetByTier(ctx context.Context, tierID int) (*models.ScheduleMeta, error)
}

type postgresScheduleMetaRepository struct {
	db *sql.DB
}

func NewPostgresScheduleMetaRepository(db *sql.DB) ScheduleMetaRepository {
	return &postgresScheduleMetaRepository{db: db}
}

func (r *postgresScheduleMetaRepository) Replace(ctx context.Context, exec SQLExecutor, meta *models.ScheduleMeta) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}

	if _, err := executor.ExecContext(ctx,
		`DELETE FROM schedule_meta WHERE tier_id = $1`, meta.TierID); err != nil {
		return fmt.Errorf("failed to delete prior schedule meta for tier %d: %w", meta.TierID, err)
	}

	conflictsJSON, err := json.Marshal(meta.Conflicts)
	if err != nil {
		return fmt.Errorf("failed to marshal conflicts: %w", err)
	}

	query := `
		INSERT INTO schedule_meta (tier_id, feasibility_score, schedule_quality, conflicts)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err = executor.QueryRowContext(ctx, query,
		meta.TierID, meta.FeasibilityScore, meta.ScheduleQuality, conflictsJSON,
	).Scan(&meta.ID, &meta.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert schedule meta for tier %d: %w", meta.TierID, err)
	}
	return nil
}

func (r *postgresScheduleMetaRepository) GetByTier(ctx context.Context, tierID int) (*models.ScheduleMeta, error) {
	query := `
		SELECT id, tier_id, feasibility_score, schedule_quality, conflicts, created_at
		FROM schedule_meta
		WHERE tier_id = $1`

	meta := &models.ScheduleMeta{}
	var conflictsJSON []byte
	err := r.db.QueryRowContext(ctx, query, tierID).Scan(
		&meta.ID, &meta.TierID, &meta.FeasibilityScore, &meta.ScheduleQuality,
		&conflictsJSON, &meta.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleMetaNotFound
		}
		return nil, fmt.Errorf("failed to scan schedule meta for tier %d: %w", tierID, err)
	}
	if err := json.Unmarshal(conflictsJSON, &meta.Conflicts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conflicts for tier %d: %w", tierID, err)
	}
	return meta, nil
}
