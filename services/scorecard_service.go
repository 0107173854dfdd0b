package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/courtside/league-system/events"
	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
)

type ScorecardService interface {
	// Submit stores a scorecard pending approval; the match status does
	// not change yet.
	Submit(ctx context.Context, matchID int, byPlayerID int, sets []models.SetScore) (*models.Scorecard, error)
	// Approve finalizes the most recently submitted scorecard, marks the
	// match played, recomputes the tier's standings, and appends a
	// snapshot, all in one transaction.
	Approve(ctx context.Context, matchID int, approverID int) (*models.Scorecard, error)
	GetLatest(ctx context.Context, matchID int) (*models.Scorecard, error)
}

type scorecardService struct {
	db            repositories.Database
	matchRepo     repositories.MatchRepository
	scorecardRepo repositories.ScorecardRepository
	snapshotRepo  repositories.SnapshotRepository
	standings     StandingsService
	publisher     events.Publisher
	logger        *slog.Logger
}

func NewScorecardService(
	db repositories.Database,
	matchRepo repositories.MatchRepository,
	scorecardRepo repositories.ScorecardRepository,
	snapshotRepo repositories.SnapshotRepository,
	standings StandingsService,
	publisher events.Publisher,
	logger *slog.Logger,
) ScorecardService {
	return &scorecardService{
		db:            db,
		matchRepo:     matchRepo,
		scorecardRepo: scorecardRepo,
		snapshotRepo:  snapshotRepo,
		standings:     standings,
		publisher:     publisher,
		logger:        logger,
	}
}

func (s *scorecardService) Submit(ctx context.Context, matchID int, byPlayerID int, sets []models.SetScore) (*models.Scorecard, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(byPlayerID) {
		return nil, ErrPlayerNotInMatch
	}
	if match.Status == models.MatchStatusPlayed {
		return nil, ErrMatchAlreadyPlayed
	}
	if err := validateSets(sets, match.PlayerIDs); err != nil {
		return nil, err
	}

	card := &models.Scorecard{
		MatchID:     matchID,
		Sets:        sets,
		SubmittedBy: byPlayerID,
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.scorecardRepo.Create(ctx, tx, card); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit scorecard: %w", err)
	}

	s.logger.Info("scorecard submitted",
		slog.Int("match_id", matchID),
		slog.Int("by", byPlayerID))
	return card, nil
}

func (s *scorecardService) Approve(ctx context.Context, matchID int, approverID int) (*models.Scorecard, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	// A played match already has an approved card; approving another would
	// double-credit it in the standings.
	if match.Status == models.MatchStatusPlayed {
		return nil, ErrMatchAlreadyPlayed
	}

	card, err := s.scorecardRepo.GetLatestByMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrScorecardNotFound) {
			return nil, ErrNoPendingScorecard
		}
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if txErr = s.scorecardRepo.Approve(ctx, tx, card.ID, approverID); txErr != nil {
		return nil, txErr
	}
	if txErr = s.matchRepo.UpdateStatus(ctx, tx, matchID, models.MatchStatusPlayed); txErr != nil {
		return nil, txErr
	}

	rows, recomputeErr := s.standings.Recompute(ctx, tx, match.TierID)
	if recomputeErr != nil {
		txErr = recomputeErr
		return nil, txErr
	}

	snapshotRows := make([]models.StandingRow, len(rows))
	for i, row := range rows {
		snapshotRows[i] = *row
	}
	snapshot := &models.Snapshot{TierID: match.TierID, Rows: snapshotRows}
	if txErr = s.snapshotRepo.Create(ctx, tx, snapshot); txErr != nil {
		return nil, txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", txErr)
	}

	card.ApprovedBy = &approverID
	s.logger.Info("scorecard approved",
		slog.Int("match_id", matchID),
		slog.Int("scorecard_id", card.ID),
		slog.Int("approver", approverID))

	s.publisher.Publish(events.New(events.TypeScorecardApproved, match.TierID, map[string]interface{}{
		"match_id":     matchID,
		"scorecard_id": card.ID,
	}))
	s.publisher.Publish(events.New(events.TypeStandingsUpdated, match.TierID, nil))
	return card, nil
}

func (s *scorecardService) GetLatest(ctx context.Context, matchID int) (*models.Scorecard, error) {
	card, err := s.scorecardRepo.GetLatestByMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrScorecardNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return card, nil
}

func (s *scorecardService) loadMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

// validateSets enforces the scorecard shape: exactly three sets, games in
// [0,7], no equal game counts, and winners/losers forming two disjoint
// pairs that cover exactly the match's four players.
func validateSets(sets []models.SetScore, playerIDs []int) error {
	if len(sets) != 3 {
		return ErrInvalidSetCount
	}
	for _, set := range sets {
		if set.Team1Games < 0 || set.Team1Games > 7 || set.Team2Games < 0 || set.Team2Games > 7 {
			return ErrInvalidSetScore
		}
		if set.Team1Games == set.Team2Games {
			return ErrTiedSetScore
		}
		if !validSetPlayers(set, playerIDs) {
			return ErrInvalidSetPlayers
		}
	}
	return nil
}

func validSetPlayers(set models.SetScore, playerIDs []int) bool {
	if len(set.Winners) != 2 || len(set.Losers) != 2 {
		return false
	}
	seen := make(map[int]int, 4)
	for _, id := range set.Winners {
		seen[id]++
	}
	for _, id := range set.Losers {
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
