package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/league-system/models"
	"github.com/lib/pq"
)

var ErrSlateNotFound = errors.New("slate not found")

type SlateRepository interface {
	Create(ctx context.Context, exec SQLExecutor, slate *models.Slate) error
	ListByTier(ctx context.Context, tierID int) ([]*models.Slate, error)
	DeleteByTier(ctx context.Context, exec SQLExecutor, tierID int) error
}

type postgresSlateRepository struct {
	db *sql.DB
}

func NewPostgresSlateRepository(db *sql.DB) SlateRepository {
	return &postgresSlateRepository{db: db}
}

func (r *postgresSlateRepository) Create(ctx context.Context, exec SQLExecutor, slate *models.Slate) error {
	query := `
		INSERT INTO slates (tier_id, week_index, match_ids)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		slate.TierID, slate.WeekIndex, pq.Array(slate.MatchIDs),
	).Scan(&slate.ID, &slate.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create slate for tier %d week %d: %w", slate.TierID, slate.WeekIndex, err)
	}
	return nil
}

func (r *postgresSlateRepository) ListByTier(ctx context.Context, tierID int) ([]*models.Slate, error) {
	query := `
		SELECT id, tier_id, week_index, match_ids, created_at
		FROM slates
		WHERE tier_id = $1
		ORDER BY week_index`

	rows, err := r.db.QueryContext(ctx, query, tierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slates for tier %d: %w", tierID, err)
	}
	defer rows.Close()

	slates := make([]*models.Slate, 0)
	for rows.Next() {
		slate := &models.Slate{}
		var matchIDs pq.Int64Array
		if err := rows.Scan(&slate.ID, &slate.TierID, &slate.WeekIndex, &matchIDs, &slate.CreatedAt); err != nil {
			return nil, err
		}
		slate.MatchIDs = make([]int, len(matchIDs))
		for i, id := range matchIDs {
			slate.MatchIDs[i] = int(id)
		}
		slates = append(slates, slate)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return slates, nil
}

func (r *postgresSlateRepository) DeleteByTier(ctx context.Context, exec SQLExecutor, tierID int) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `DELETE FROM slates WHERE tier_id = $1`
	if _, err := executor.ExecContext(ctx, query, tierID); err != nil {
		return fmt.Errorf("failed to delete slates for tier %d: %w", tierID, err)
	}
	return nil
}
