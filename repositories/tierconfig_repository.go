package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/league-system/models"
)

var ErrTierConfigNotFound = errors.New("tier configuration not found")

// TierConfigRepository reads the season configuration the surrounding CRUD
// layer maintains. The core only consumes it.
type TierConfigRepository interface {
	GetByTier(ctx context.Context, tierID int) (*models.TierConfig, error)
}

type postgresTierConfigRepository struct {
	db *sql.DB
}

func NewPostgresTierConfigRepository(db *sql.DB) TierConfigRepository {
	return &postgresTierConfigRepository{db: db}
}

func (r *postgresTierConfigRepository) GetByTier(ctx context.Context, tierID int) (*models.TierConfig, error) {
	query := `
		SELECT tier_id, season_length, minimize_repeat_partners
		FROM tier_configs
		WHERE tier_id = $1`

	cfg := &models.TierConfig{}
	err := r.db.QueryRowContext(ctx, query, tierID).Scan(
		&cfg.TierID, &cfg.SeasonLength, &cfg.MinimizeRepeatPartners,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTierConfigNotFound
		}
		return nil, fmt.Errorf("failed to scan tier config for tier %d: %w", tierID, err)
	}
	return cfg, nil
}
