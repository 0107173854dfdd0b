package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtside/league-system/models"
)

var ErrOverrideNotFound = errors.New("partner override not found")

type OverrideRepository interface {
	Create(ctx context.Context, exec SQLExecutor, override *models.PartnerOverride) error
	GetLatestByMatch(ctx context.Context, matchID int) (*models.PartnerOverride, error)
	AddConfirmation(ctx context.Context, exec SQLExecutor, overrideID, playerID int) error
	SetLocked(ctx context.Context, exec SQLExecutor, overrideID int) error
}

type postgresOverrideRepository struct {
	db *sql.DB
}

func NewPostgresOverrideRepository(db *sql.DB) OverrideRepository {
	return &postgresOverrideRepository{db: db}
}

func (r *postgresOverrideRepository) Create(ctx context.Context, exec SQLExecutor, override *models.PartnerOverride) error {
	setsJSON, err := json.Marshal(override.Sets)
	if err != nil {
		return fmt.Errorf("failed to marshal override sets: %w", err)
	}

	query := `
		INSERT INTO partner_overrides (match_id, sets, proposed_by, locked)
		VALUES ($1, $2, $3, false)
		RETURNING id, created_at`

	err = exec.QueryRowContext(ctx, query, override.MatchID, setsJSON, override.ProposedBy).
		Scan(&override.ID, &override.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create partner override for match %d: %w", override.MatchID, err)
	}

	// The proposer is pre-confirmed.
	return r.AddConfirmation(ctx, exec, override.ID, override.ProposedBy)
}

func (r *postgresOverrideRepository) GetLatestByMatch(ctx context.Context, matchID int) (*models.PartnerOverride, error) {
	query := `
		SELECT id, match_id, sets, proposed_by, locked, created_at
		FROM partner_overrides
		WHERE match_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	override := &models.PartnerOverride{}
	var setsJSON []byte
	err := r.db.QueryRowContext(ctx, query, matchID).Scan(
		&override.ID, &override.MatchID, &setsJSON, &override.ProposedBy, &override.Locked, &override.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOverrideNotFound
		}
		return nil, fmt.Errorf("failed to scan partner override for match %d: %w", matchID, err)
	}
	if err := json.Unmarshal(setsJSON, &override.Sets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sets for override %d: %w", override.ID, err)
	}

	override.Confirmations, err = r.confirmations(ctx, override.ID)
	if err != nil {
		return nil, err
	}
	return override, nil
}

func (r *postgresOverrideRepository) AddConfirmation(ctx context.Context, exec SQLExecutor, overrideID, playerID int) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `
		INSERT INTO override_confirmations (override_id, player_id)
		VALUES ($1, $2)
		ON CONFLICT (override_id, player_id) DO NOTHING`
	if _, err := executor.ExecContext(ctx, query, overrideID, playerID); err != nil {
		return fmt.Errorf("failed to confirm override %d for player %d: %w", overrideID, playerID, err)
	}
	return nil
}

func (r *postgresOverrideRepository) SetLocked(ctx context.Context, exec SQLExecutor, overrideID int) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	result, err := executor.ExecContext(ctx,
		`UPDATE partner_overrides SET locked = true WHERE id = $1`, overrideID)
	if err != nil {
		return fmt.Errorf("failed to lock override %d: %w", overrideID, err)
	}
	return checkAffectedRows(result, ErrOverrideNotFound)
}

func (r *postgresOverrideRepository) confirmations(ctx context.Context, overrideID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id FROM override_confirmations WHERE override_id = $1 ORDER BY player_id`, overrideID)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmations for override %d: %w", overrideID, err)
	}
	defer rows.Close()

	ids := make([]int, 0, 4)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
