package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/league-system/models"
	"github.com/lib/pq"
)

type AvailabilityRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, availability *models.Availability) error
	GetByPlayer(ctx context.Context, playerID int) (*models.Availability, error)
}

type postgresAvailabilityRepository struct {
	db *sql.DB
}

func NewPostgresAvailabilityRepository(db *sql.DB) AvailabilityRepository {
	return &postgresAvailabilityRepository{db: db}
}

func (r *postgresAvailabilityRepository) executor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert replaces the player's whole window set. Last write wins.
func (r *postgresAvailabilityRepository) Upsert(ctx context.Context, exec SQLExecutor, availability *models.Availability) error {
	query := `
		INSERT INTO availabilities (player_id, windows)
		VALUES ($1, $2)
		ON CONFLICT (player_id) DO UPDATE SET windows = EXCLUDED.windows`
	_, err := r.executor(exec).ExecContext(ctx, query,
		availability.PlayerID, pq.Array(availability.Windows))
	if err != nil {
		return fmt.Errorf("failed to upsert availability for player %d: %w", availability.PlayerID, err)
	}
	return nil
}

// GetByPlayer returns an empty window set for unknown players instead of an
// error, so missing availability never blocks scheduling.
func (r *postgresAvailabilityRepository) GetByPlayer(ctx context.Context, playerID int) (*models.Availability, error) {
	query := `SELECT player_id, windows FROM availabilities WHERE player_id = $1`

	availability := &models.Availability{}
	var windows pq.StringArray
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(&availability.PlayerID, &windows)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Availability{PlayerID: playerID, Windows: []string{}}, nil
		}
		return nil, fmt.Errorf("failed to scan availability for player %d: %w", playerID, err)
	}
	availability.Windows = windows
	return availability, nil
}
