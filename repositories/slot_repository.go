package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/league-system/models"
)

var ErrSlotNotFound = errors.New("slot not found")

type SlotRepository interface {
	Create(ctx context.Context, exec SQLExecutor, slot *models.Slot) error
	GetByID(ctx context.Context, id int) (*models.Slot, error)
	ListByMatch(ctx context.Context, matchID int) ([]*models.Slot, error)
	CountByMatch(ctx context.Context, matchID int) (int, error)
	// AddConfirmation records the player on the slot; duplicates are no-ops.
	AddConfirmation(ctx context.Context, exec SQLExecutor, slotID, playerID int) error
}

type postgresSlotRepository struct {
	db *sql.DB
}

func NewPostgresSlotRepository(db *sql.DB) SlotRepository {
	return &postgresSlotRepository{db: db}
}

func (r *postgresSlotRepository) Create(ctx context.Context, exec SQLExecutor, slot *models.Slot) error {
	query := `
		INSERT INTO slots (match_id, proposed_by, start_at, venue_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		slot.MatchID, slot.ProposedBy, slot.Start, slot.VenueName,
	).Scan(&slot.ID, &slot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create slot for match %d: %w", slot.MatchID, err)
	}
	return nil
}

func (r *postgresSlotRepository) GetByID(ctx context.Context, id int) (*models.Slot, error) {
	query := `
		SELECT id, match_id, proposed_by, start_at, venue_name, created_at
		FROM slots
		WHERE id = $1`

	slot := &models.Slot{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&slot.ID, &slot.MatchID, &slot.ProposedBy, &slot.Start, &slot.VenueName, &slot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to scan slot %d: %w", id, err)
	}

	slot.Confirmations, err = r.confirmations(ctx, id)
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *postgresSlotRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.Slot, error) {
	query := `
		SELECT id, match_id, proposed_by, start_at, venue_name, created_at
		FROM slots
		WHERE match_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots for match %d: %w", matchID, err)
	}
	defer rows.Close()

	slots := make([]*models.Slot, 0)
	for rows.Next() {
		slot := &models.Slot{}
		if err := rows.Scan(&slot.ID, &slot.MatchID, &slot.ProposedBy, &slot.Start, &slot.VenueName, &slot.CreatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, slot := range slots {
		slot.Confirmations, err = r.confirmations(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
	}
	return slots, nil
}

func (r *postgresSlotRepository) CountByMatch(ctx context.Context, matchID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM slots WHERE match_id = $1`, matchID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count slots for match %d: %w", matchID, err)
	}
	return count, nil
}

func (r *postgresSlotRepository) AddConfirmation(ctx context.Context, exec SQLExecutor, slotID, playerID int) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `
		INSERT INTO slot_confirmations (slot_id, player_id)
		VALUES ($1, $2)
		ON CONFLICT (slot_id, player_id) DO NOTHING`
	if _, err := executor.ExecContext(ctx, query, slotID, playerID); err != nil {
		return fmt.Errorf("failed to confirm slot %d for player %d: %w", slotID, playerID, err)
	}
	return nil
}

func (r *postgresSlotRepository) confirmations(ctx context.Context, slotID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id FROM slot_confirmations WHERE slot_id = $1 ORDER BY player_id`, slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmations for slot %d: %w", slotID, err)
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
