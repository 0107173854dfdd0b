package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/courtside/league-system/models"
)

var ErrStandingNotFound = errors.New("standing row not found")

type StandingRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, rows []*models.StandingRow) error
	ListByTier(ctx context.Context, exec SQLExecutor, tierID int) ([]*models.StandingRow, error)
	DeleteByTier(ctx context.Context, exec SQLExecutor, tierID int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) executor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) BatchCreate(ctx context.Context, exec SQLExecutor, standingRows []*models.StandingRow) error {
	executor := r.executor(exec)
	query := `
		INSERT INTO standings (tier_id, player_id, matches_played, set_points, game_points, pct_game_win, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	for _, row := range standingRows {
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = time.Now()
		}
		err := executor.QueryRowContext(ctx, query,
			row.TierID, row.PlayerID, row.MatchesPlayed, row.SetPoints,
			row.GamePoints, row.PctGameWin, row.UpdatedAt,
		).Scan(&row.ID)
		if err != nil {
			return fmt.Errorf("failed to insert standing for player %d in tier %d: %w", row.PlayerID, row.TierID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) ListByTier(ctx context.Context, exec SQLExecutor, tierID int) ([]*models.StandingRow, error) {
	query := `
		SELECT id, tier_id, player_id, matches_played, set_points, game_points, pct_game_win, updated_at
		FROM standings
		WHERE tier_id = $1
		ORDER BY set_points DESC, pct_game_win DESC, player_id ASC`

	rows, err := r.executor(exec).QueryContext(ctx, query, tierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for tier %d: %w", tierID, err)
	}
	defer rows.Close()

	out := make([]*models.StandingRow, 0)
	for rows.Next() {
		row := &models.StandingRow{}
		if err := rows.Scan(
			&row.ID, &row.TierID, &row.PlayerID, &row.MatchesPlayed,
			&row.SetPoints, &row.GamePoints, &row.PctGameWin, &row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *postgresStandingRepository) DeleteByTier(ctx context.Context, exec SQLExecutor, tierID int) error {
	query := `DELETE FROM standings WHERE tier_id = $1`
	if _, err := r.executor(exec).ExecContext(ctx, query, tierID); err != nil {
		return fmt.Errorf("failed to delete standings for tier %d: %w", tierID, err)
	}
	return nil
}
