package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/courtside/league-system/events"
	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
	"github.com/courtside/league-system/scheduling"
)

// ScheduleSeasonInput drives one full-season scheduling run for a tier.
// WeekWindows optionally pins a desired availability window per week index.
// Seed, when non-nil, makes the run deterministic.
type ScheduleSeasonInput struct {
	TierID      int
	PlayerIDs   []int
	WeekWindows map[int]string
	Seed        *int64
}

// ScheduleSeasonResult reports what a run produced.
type ScheduleSeasonResult struct {
	Slates []*models.Slate      `json:"slates"`
	Meta   *models.ScheduleMeta `json:"meta"`
}

type ScheduleService interface {
	// ScheduleSeason deletes the tier's existing matches and slates and
	// regenerates the whole season. Safe to re-run at any time.
	ScheduleSeason(ctx context.Context, input ScheduleSeasonInput) (*ScheduleSeasonResult, error)
	GetMeta(ctx context.Context, tierID int) (*models.ScheduleMeta, error)
	ListSlates(ctx context.Context, tierID int) ([]*models.Slate, error)
}

type scheduleService struct {
	db               repositories.Database
	tierConfigRepo   repositories.TierConfigRepository
	availabilityRepo repositories.AvailabilityRepository
	matchRepo        repositories.MatchRepository
	slateRepo        repositories.SlateRepository
	metaRepo         repositories.ScheduleMetaRepository
	publisher        events.Publisher
	logger           *slog.Logger
}

func NewScheduleService(
	db repositories.Database,
	tierConfigRepo repositories.TierConfigRepository,
	availabilityRepo repositories.AvailabilityRepository,
	matchRepo repositories.MatchRepository,
	slateRepo repositories.SlateRepository,
	metaRepo repositories.ScheduleMetaRepository,
	publisher events.Publisher,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		db:               db,
		tierConfigRepo:   tierConfigRepo,
		availabilityRepo: availabilityRepo,
		matchRepo:        matchRepo,
		slateRepo:        slateRepo,
		metaRepo:         metaRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

// availabilityIndex preloads the pool's window sets so the scheduler's
// inner loops never touch the database.
type availabilityIndex map[int]*models.Availability

func (idx availabilityIndex) IsCompatible(playerID int, desired *string) bool {
	availability, ok := idx[playerID]
	if !ok {
		return true
	}
	return availability.IsCompatible(desired)
}

// distinctPlayers drops duplicate ids from a pool, keeping first-seen order.
// A duplicated id would otherwise let the scheduler seat the same player on
// both sides of a match.
func distinctPlayers(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *scheduleService) ScheduleSeason(ctx context.Context, input ScheduleSeasonInput) (*ScheduleSeasonResult, error) {
	pool := distinctPlayers(input.PlayerIDs)
	if len(pool) < 4 {
		return nil, ErrNotEnoughPlayers
	}

	cfg, err := s.tierConfigRepo.GetByTier(ctx, input.TierID)
	if err != nil {
		if errors.Is(err, repositories.ErrTierConfigNotFound) {
			return nil, ErrTierNotConfigured
		}
		return nil, fmt.Errorf("failed to load tier config: %w", err)
	}

	index := make(availabilityIndex, len(pool))
	for _, playerID := range pool {
		availability, err := s.availabilityRepo.GetByPlayer(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load availability for player %d: %w", playerID, err)
		}
		index[playerID] = availability
	}

	var rng *rand.Rand
	if input.Seed != nil {
		rng = rand.New(rand.NewSource(*input.Seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	weekly := &scheduling.WeeklyScheduler{
		Availability:         index,
		Rand:                 rng,
		IgnorePartnerHistory: !cfg.MinimizeRepeatPartners,
	}

	// Pairing state is rebuilt fresh per run; the prior matches are about
	// to be deleted, so there is nothing to replay.
	state := scheduling.NewPairingState()

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

	// Idempotent re-run: drop everything the previous run persisted.
	if txErr = s.matchRepo.DeleteByTier(ctx, tx, input.TierID); txErr != nil {
		return nil, txErr
	}
	if txErr = s.slateRepo.DeleteByTier(ctx, tx, input.TierID); txErr != nil {
		return nil, txErr
	}

	conflicts := make(map[int][]int)
	slates := make([]*models.Slate, 0, cfg.SeasonLength)
	created := make([][4]int, 0)

	for week := 0; week < cfg.SeasonLength; week++ {
		var desired *string
		if window, ok := input.WeekWindows[week]; ok && window != "" {
			w := window
			desired = &w
		}

		weekResult := weekly.Run(pool, desired, state)
		weekMatches := weekResult.Matches

		// Local repair: try to seat stranded pairs with opponents drawn
		// from the full season pool.
		leftover := weekResult.Infeasible
		repaired := make(map[int]bool)
		for i := 0; i < len(leftover); i++ {
			if repaired[leftover[i]] {
				continue
			}
			for j := i + 1; j < len(leftover); j++ {
				if repaired[leftover[j]] {
					continue
				}
				a, b := leftover[i], leftover[j]
				c, d, ok := scheduling.FindRepairOpponents(state, weekly, pool, a, b, desired)
				if !ok {
					continue
				}
				match := [4]int{a, b, c, d}
				state.RecordMatch(match)
				weekMatches = append(weekMatches, match)
				repaired[a] = true
				repaired[b] = true
				break
			}
		}

		stillStranded := make([]int, 0)
		for _, p := range leftover {
			if !repaired[p] {
				stillStranded = append(stillStranded, p)
			}
		}
		if len(stillStranded) > 0 {
			conflicts[week] = stillStranded
		}

		slate := &models.Slate{TierID: input.TierID, WeekIndex: week}
		for _, m := range weekMatches {
			match := &models.Match{
				TierID:    input.TierID,
				WeekIndex: week,
				PlayerIDs: []int{m[0], m[1], m[2], m[3]},
				Status:    models.MatchStatusProposed,
			}
			if txErr = s.matchRepo.Create(ctx, tx, match); txErr != nil {
				return nil, txErr
			}
			slate.MatchIDs = append(slate.MatchIDs, match.ID)
			created = append(created, m)
		}
		if txErr = s.slateRepo.Create(ctx, tx, slate); txErr != nil {
			return nil, txErr
		}
		slates = append(slates, slate)
	}

	// Quality is scored against the final accumulated counts, not the
	// counts at match-creation time.
	quality := 0
	for _, m := range created {
		quality += scheduling.MatchQuality(state, m)
	}

	meta := &models.ScheduleMeta{
		TierID:           input.TierID,
		FeasibilityScore: len(created),
		ScheduleQuality:  quality,
		Conflicts:        conflicts,
	}
	if txErr = s.metaRepo.Replace(ctx, tx, meta); txErr != nil {
		return nil, txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit schedule: %w", txErr)
	}

	s.logger.Info("season scheduled",
		slog.Int("tier_id", input.TierID),
		slog.Int("weeks", cfg.SeasonLength),
		slog.Int("matches", len(created)),
		slog.Int("quality", quality),
		slog.Int("conflict_weeks", len(conflicts)))

	s.publisher.Publish(events.New(events.TypeTierRescheduled, input.TierID, meta))

	return &ScheduleSeasonResult{Slates: slates, Meta: meta}, nil
}

func (s *scheduleService) GetMeta(ctx context.Context, tierID int) (*models.ScheduleMeta, error) {
	meta, err := s.metaRepo.GetByTier(ctx, tierID)
	if err != nil {
		if errors.Is(err, repositories.ErrScheduleMetaNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return meta, nil
}

func (s *scheduleService) ListSlates(ctx context.Context, tierID int) ([]*models.Slate, error) {
	return s.slateRepo.ListByTier(ctx, tierID)
}
