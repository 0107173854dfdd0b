package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/courtside/league-system/events"
	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
)

const maxSlotsPerMatch = 3

// tossChoices are the two options a toss winner picks between when no
// explicit choice is supplied.
var tossChoices = []string{"serve", "court"}

// SlotProposal is one datetime+venue put forward for a match.
type SlotProposal struct {
	Start     string  `json:"start"` // RFC 3339
	VenueName *string `json:"venue_name,omitempty"`
}

// TossResult is the permanent outcome of a match toss.
type TossResult struct {
	WinnerID int    `json:"winner_id"`
	Choice   string `json:"choice"`
}

// ConfirmSlotResult reports whether this confirmation locked the match.
type ConfirmSlotResult struct {
	Slot   *models.Slot `json:"slot"`
	Locked bool         `json:"locked"`
}

type MatchService interface {
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListByTier(ctx context.Context, tierID int) ([]*models.Match, error)
	Toss(ctx context.Context, matchID int, byPlayerID int, choice *string) (*TossResult, error)
	ProposeSlots(ctx context.Context, matchID int, byPlayerID int, proposals []SlotProposal) ([]*models.Slot, error)
	ConfirmSlot(ctx context.Context, slotID int, playerID int) (*ConfirmSlotResult, error)
	Dispute(ctx context.Context, matchID int, byPlayerID int) (*models.Match, error)
	ProposeOverride(ctx context.Context, matchID int, byPlayerID int, sets []models.OverridePairing) (*models.PartnerOverride, error)
	ConfirmOverride(ctx context.Context, matchID int, playerID int) (*models.PartnerOverride, error)
}

type matchService struct {
	db           repositories.Database
	matchRepo    repositories.MatchRepository
	slotRepo     repositories.SlotRepository
	overrideRepo repositories.OverrideRepository
	publisher    events.Publisher
	logger       *slog.Logger
	rng          *rand.Rand
}

func NewMatchService(
	db repositories.Database,
	matchRepo repositories.MatchRepository,
	slotRepo repositories.SlotRepository,
	overrideRepo repositories.OverrideRepository,
	publisher events.Publisher,
	logger *slog.Logger,
	rng *rand.Rand,
) MatchService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &matchService{
		db:           db,
		matchRepo:    matchRepo,
		slotRepo:     slotRepo,
		overrideRepo: overrideRepo,
		publisher:    publisher,
		logger:       logger,
		rng:          rng,
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	slots, err := s.slotRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	match.Slots = make([]models.Slot, len(slots))
	for i, slot := range slots {
		match.Slots[i] = *slot
	}
	return match, nil
}

func (s *matchService) ListByTier(ctx context.Context, tierID int) ([]*models.Match, error) {
	return s.matchRepo.ListByTier(ctx, tierID)
}

// Toss picks a uniformly random winner among the four players and honors an
// explicit choice when given, otherwise flips for one. Allowed once per
// match; the result is permanent.
func (s *matchService) Toss(ctx context.Context, matchID int, byPlayerID int, choice *string) (*TossResult, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(byPlayerID) {
		return nil, ErrPlayerNotInMatch
	}
	if match.TossWinnerID != nil {
		return nil, ErrTossAlreadyDone
	}

	winnerID := match.PlayerIDs[s.rng.Intn(len(match.PlayerIDs))]
	picked := tossChoices[s.rng.Intn(len(tossChoices))]
	if choice != nil {
		valid := false
		for _, c := range tossChoices {
			if *choice == c {
				valid = true
				break
			}
		}
		if !valid {
			return nil, ErrInvalidTossChoice
		}
		picked = *choice
	}

	if err := s.matchRepo.UpdateToss(ctx, nil, matchID, winnerID, picked); err != nil {
		return nil, err
	}

	s.logger.Info("toss recorded",
		slog.Int("match_id", matchID),
		slog.Int("winner_id", winnerID),
		slog.String("choice", picked))
	return &TossResult{WinnerID: winnerID, Choice: picked}, nil
}

// ProposeSlots creates up to three proposed slots in one call. The 3-slot
// cap holds across the whole match, not per call.
func (s *matchService) ProposeSlots(ctx context.Context, matchID int, byPlayerID int, proposals []SlotProposal) ([]*models.Slot, error) {
	if len(proposals) == 0 || len(proposals) > maxSlotsPerMatch {
		return nil, ErrTooManySlots
	}
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(byPlayerID) {
		return nil, ErrPlayerNotInMatch
	}

	existing, err := s.slotRepo.CountByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if existing+len(proposals) > maxSlotsPerMatch {
		return nil, ErrTooManySlots
	}

	starts := make([]time.Time, len(proposals))
	for i, p := range proposals {
		start, parseErr := time.Parse(time.RFC3339, p.Start)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSlotTime, p.Start)
		}
		starts[i] = start
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	slots := make([]*models.Slot, 0, len(proposals))
	for i, p := range proposals {
		slot := &models.Slot{
			MatchID:    matchID,
			ProposedBy: byPlayerID,
			Start:      starts[i],
			VenueName:  p.VenueName,
		}
		if err := s.slotRepo.Create(ctx, tx, slot); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		slot.Confirmations = []int{}
		slots = append(slots, slot)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit slot proposals: %w", err)
	}
	return slots, nil
}

// ConfirmSlot idempotently records the player on the slot. The first slot
// whose confirmations cover all four players locks the match with its
// time and venue; once locked, confirmations on other slots change nothing.
func (s *matchService) ConfirmSlot(ctx context.Context, slotID int, playerID int) (*ConfirmSlotResult, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, repositories.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	match, err := s.loadMatch(ctx, slot.MatchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(playerID) {
		return nil, ErrPlayerNotInMatch
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if txErr = s.slotRepo.AddConfirmation(ctx, tx, slotID, playerID); txErr != nil {
		return nil, txErr
	}
	if !slot.ConfirmedBy(playerID) {
		slot.Confirmations = append(slot.Confirmations, playerID)
	}

	locked := false
	if match.Status == models.MatchStatusProposed && coversAllPlayers(slot.Confirmations, match.PlayerIDs) {
		scheduledAt := sql.NullTime{Time: slot.Start, Valid: true}
		if txErr = s.matchRepo.UpdateSchedule(ctx, tx, match.ID, models.MatchStatusConfirmed, scheduledAt, slot.VenueName); txErr != nil {
			return nil, txErr
		}
		locked = true
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit slot confirmation: %w", txErr)
	}

	if locked {
		s.logger.Info("match confirmed",
			slog.Int("match_id", match.ID),
			slog.Int("slot_id", slotID))
		s.publisher.Publish(events.New(events.TypeMatchConfirmed, match.TierID, map[string]interface{}{
			"match_id": match.ID,
			"slot_id":  slotID,
		}))
	}
	return &ConfirmSlotResult{Slot: slot, Locked: locked}, nil
}

// Dispute flips the match to disputed. Intentionally minimal: any player id
// may dispute and there is no un-dispute path.
func (s *matchService) Dispute(ctx context.Context, matchID int, byPlayerID int) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := s.matchRepo.UpdateStatus(ctx, nil, matchID, models.MatchStatusDisputed); err != nil {
		return nil, err
	}
	match.Status = models.MatchStatusDisputed

	s.logger.Info("match disputed", slog.Int("match_id", matchID), slog.Int("by", byPlayerID))
	s.publisher.Publish(events.New(events.TypeMatchDisputed, match.TierID, map[string]interface{}{
		"match_id": matchID,
		"by":       byPlayerID,
	}))
	return match, nil
}

// ProposeOverride stores a three-set partner override with the proposer
// pre-confirmed. Each set must split the match's four players into two
// pairs of two.
func (s *matchService) ProposeOverride(ctx context.Context, matchID int, byPlayerID int, sets []models.OverridePairing) (*models.PartnerOverride, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(byPlayerID) {
		return nil, ErrPlayerNotInMatch
	}
	if len(sets) != 3 {
		return nil, ErrInvalidOverridePairing
	}
	for _, set := range sets {
		if !partitionsMatchPlayers(set, match.PlayerIDs) {
			return nil, ErrInvalidOverridePairing
		}
	}

	override := &models.PartnerOverride{
		MatchID:    matchID,
		Sets:       sets,
		ProposedBy: byPlayerID,
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.overrideRepo.Create(ctx, tx, override); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit override proposal: %w", err)
	}
	override.Confirmations = []int{byPlayerID}
	return override, nil
}

// ConfirmOverride records one player's confirmation on the match's pending
// override; duplicates are no-ops. All four confirmations lock it.
func (s *matchService) ConfirmOverride(ctx context.Context, matchID int, playerID int) (*models.PartnerOverride, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(playerID) {
		return nil, ErrPlayerNotInMatch
	}

	override, err := s.overrideRepo.GetLatestByMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrOverrideNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if txErr = s.overrideRepo.AddConfirmation(ctx, tx, override.ID, playerID); txErr != nil {
		return nil, txErr
	}
	if !override.ConfirmedBy(playerID) {
		override.Confirmations = append(override.Confirmations, playerID)
	}

	if !override.Locked && coversAllPlayers(override.Confirmations, match.PlayerIDs) {
		if txErr = s.overrideRepo.SetLocked(ctx, tx, override.ID); txErr != nil {
			return nil, txErr
		}
		override.Locked = true
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit override confirmation: %w", txErr)
	}
	return override, nil
}

func (s *matchService) loadMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

// coversAllPlayers reports whether every match player appears among the
// confirming ids.
func coversAllPlayers(confirmations []int, playerIDs []int) bool {
	confirmed := make(map[int]bool, len(confirmations))
	for _, id := range confirmations {
		confirmed[id] = true
	}
	for _, id := range playerIDs {
		if !confirmed[id] {
			return false
		}
	}
	return true
}

// partitionsMatchPlayers reports whether the pairing's two pairs cover
// exactly the match's four players, each once.
func partitionsMatchPlayers(pairing models.OverridePairing, playerIDs []int) bool {
	if len(pairing.Pair1) != 2 || len(pairing.Pair2) != 2 {
		return false
	}
	seen := make(map[int]int, 4)
	for _, id := range append(append([]int{}, pairing.Pair1...), pairing.Pair2...) {
		seen[id]++
	}
	if len(seen) != 4 {
		return false
	}
	for _, id := range playerIDs {
		if seen[id] != 1 {
			return false
		}
	}
	return true
}
