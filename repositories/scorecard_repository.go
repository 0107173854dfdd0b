package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtside/league-system/models"
	"github.com/lib/pq"
)

var ErrScorecardNotFound = errors.New("scorecard not found")

type ScorecardRepository interface {
	Create(ctx context.Context, exec SQLExecutor, card *models.Scorecard) error
	// GetLatestByMatch returns the most recently submitted scorecard.
	GetLatestByMatch(ctx context.Context, matchID int) (*models.Scorecard, error)
	// ListApprovedByMatchIDs runs on the given executor so a recompute
	// inside a transaction observes the approval it follows.
	ListApprovedByMatchIDs(ctx context.Context, exec SQLExecutor, matchIDs []int) ([]*models.Scorecard, error)
	Approve(ctx context.Context, exec SQLExecutor, id int, approvedBy int) error
}

type postgresScorecardRepository struct {
	db *sql.DB
}

func NewPostgresScorecardRepository(db *sql.DB) ScorecardRepository {
	return &postgresScorecardRepository{db: db}
}

func (r *postgresScorecardRepository) Create(ctx context.Context, exec SQLExecutor, card *models.Scorecard) error {
	setsJSON, err := json.Marshal(card.Sets)
	if err != nil {
		return fmt.Errorf("failed to marshal scorecard sets: %w", err)
	}

	query := `
		INSERT INTO scorecards (match_id, sets, submitted_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err = exec.QueryRowContext(ctx, query, card.MatchID, setsJSON, card.SubmittedBy).
		Scan(&card.ID, &card.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create scorecard for match %d: %w", card.MatchID, err)
	}
	return nil
}

func (r *postgresScorecardRepository) scanScorecard(row interface{ Scan(...interface{}) error }) (*models.Scorecard, error) {
	card := &models.Scorecard{}
	var setsJSON []byte
	err := row.Scan(&card.ID, &card.MatchID, &setsJSON, &card.SubmittedBy, &card.ApprovedBy, &card.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScorecardNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(setsJSON, &card.Sets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sets for scorecard %d: %w", card.ID, err)
	}
	return card, nil
}

func (r *postgresScorecardRepository) GetLatestByMatch(ctx context.Context, matchID int) (*models.Scorecard, error) {
	query := `
		SELECT id, match_id, sets, submitted_by, approved_by, created_at
		FROM scorecards
		WHERE match_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return r.scanScorecard(r.db.QueryRowContext(ctx, query, matchID))
}

func (r *postgresScorecardRepository) ListApprovedByMatchIDs(ctx context.Context, exec SQLExecutor, matchIDs []int) ([]*models.Scorecard, error) {
	if len(matchIDs) == 0 {
		return []*models.Scorecard{}, nil
	}
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `
		SELECT id, match_id, sets, submitted_by, approved_by, created_at
		FROM scorecards
		WHERE approved_by IS NOT NULL AND match_id = ANY($1)
		ORDER BY created_at, id`

	ids := make([]int64, len(matchIDs))
	for i, id := range matchIDs {
		ids[i] = int64(id)
	}
	rows, err := executor.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list approved scorecards: %w", err)
	}
	defer rows.Close()

	cards := make([]*models.Scorecard, 0)
	for rows.Next() {
		card, errScan := r.scanScorecard(rows)
		if errScan != nil {
			return nil, errScan
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (r *postgresScorecardRepository) Approve(ctx context.Context, exec SQLExecutor, id int, approvedBy int) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `UPDATE scorecards SET approved_by = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, approvedBy, id)
	if err != nil {
		return fmt.Errorf("failed to approve scorecard %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrScorecardNotFound)
}
