package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTierInvalid = errors.New("match tier conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTier(ctx context.Context, tierID int) ([]*models.Match, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	UpdateToss(ctx context.Context, exec SQLExecutor, id int, winnerID int, choice string) error
	UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, scheduledAt sql.NullTime, venue *string) error
	DeleteByTier(ctx context.Context, exec SQLExecutor, tierID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tier_id, week_index, player_ids, status, scheduled_at, scheduled_venue,
	toss_winner_id, toss_choice, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (tier_id, week_index, player_ids, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TierID,
		match.WeekIndex,
		pq.Array(match.PlayerIDs),
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return ErrMatchTierInvalid
		}
		return fmt.Errorf("failed to create match for tier %d week %d: %w", match.TierID, match.WeekIndex, err)
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	match := &models.Match{}
	var playerIDs pq.Int64Array
	err := row.Scan(
		&match.ID,
		&match.TierID,
		&match.WeekIndex,
		&playerIDs,
		&match.Status,
		&match.ScheduledAt,
		&match.ScheduledVenue,
		&match.TossWinnerID,
		&match.TossChoice,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	match.PlayerIDs = make([]int, len(playerIDs))
	for i, id := range playerIDs {
		match.PlayerIDs[i] = int(id)
	}
	return match, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := r.scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTier(ctx context.Context, tierID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tier_id = $1 ORDER BY week_index, id`

	rows, err := r.db.QueryContext(ctx, query, tierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tier %d: %w", tierID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2`
	result, err := r.execOrPool(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateToss(ctx context.Context, exec SQLExecutor, id int, winnerID int, choice string) error {
	query := `UPDATE matches SET toss_winner_id = $1, toss_choice = $2 WHERE id = $3`
	result, err := r.execOrPool(exec).ExecContext(ctx, query, winnerID, choice, id)
	if err != nil {
		return fmt.Errorf("failed to record toss for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, scheduledAt sql.NullTime, venue *string) error {
	query := `UPDATE matches SET status = $1, scheduled_at = $2, scheduled_venue = $3 WHERE id = $4`
	result, err := r.execOrPool(exec).ExecContext(ctx, query, status, scheduledAt, venue, id)
	if err != nil {
		return fmt.Errorf("failed to update schedule for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTier(ctx context.Context, exec SQLExecutor, tierID int) error {
	query := `DELETE FROM matches WHERE tier_id = $1`
	_, err := r.execOrPool(exec).ExecContext(ctx, query, tierID)
	if err != nil {
		return fmt.Errorf("failed to delete matches for tier %d: %w", tierID, err)
	}
	return nil
}

func (r *postgresMatchRepository) execOrPool(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}
