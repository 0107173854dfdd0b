package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
	"golang.org/x/sync/errgroup"
)

// StandingsView is the ranked, badge- and trend-annotated table served at
// read time. Top8 is simply the first eight rows of the sorted list.
type StandingsView struct {
	TierID int                        `json:"tier_id"`
	Rows   []models.RankedStandingRow `json:"rows"`
	Top8   []models.RankedStandingRow `json:"top8"`
}

type StandingsService interface {
	// Recompute replaces the tier's StandingRows from the full history of
	// approved scorecards. Runs inside the caller's transaction so a
	// just-approved scorecard is visible.
	Recompute(ctx context.Context, exec repositories.SQLExecutor, tierID int) ([]*models.StandingRow, error)
	GetStandings(ctx context.Context, tierID int) (*StandingsView, error)
}

type standingsService struct {
	matchRepo     repositories.MatchRepository
	scorecardRepo repositories.ScorecardRepository
	standingRepo  repositories.StandingRepository
	snapshotRepo  repositories.SnapshotRepository
}

func NewStandingsService(
	matchRepo repositories.MatchRepository,
	scorecardRepo repositories.ScorecardRepository,
	standingRepo repositories.StandingRepository,
	snapshotRepo repositories.SnapshotRepository,
) StandingsService {
	return &standingsService{
		matchRepo:     matchRepo,
		scorecardRepo: scorecardRepo,
		standingRepo:  standingRepo,
		snapshotRepo:  snapshotRepo,
	}
}

func (s *standingsService) Recompute(ctx context.Context, exec repositories.SQLExecutor, tierID int) ([]*models.StandingRow, error) {
	matches, err := s.matchRepo.ListByTier(ctx, tierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for recompute: %w", err)
	}

	matchByID := make(map[int]*models.Match, len(matches))
	matchIDs := make([]int, 0, len(matches))
	for _, match := range matches {
		matchByID[match.ID] = match
		matchIDs = append(matchIDs, match.ID)
	}

	cards, err := s.scorecardRepo.ListApprovedByMatchIDs(ctx, exec, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved scorecards: %w", err)
	}

	type tally struct {
		matchesPlayed int
		setPoints     int
		gamesWon      int
		gamesLost     int
	}
	tallies := make(map[int]*tally)
	get := func(playerID int) *tally {
		t, ok := tallies[playerID]
		if !ok {
			t = &tally{}
			tallies[playerID] = t
		}
		return t
	}

	credited := make(map[int]bool, len(cards))
	for _, card := range cards {
		match, ok := matchByID[card.MatchID]
		if !ok {
			continue
		}
		// Match participation is credited once per match, not per set or
		// per card, so a backfilled duplicate card cannot inflate it.
		if !credited[card.MatchID] {
			credited[card.MatchID] = true
			for _, playerID := range match.PlayerIDs {
				get(playerID).matchesPlayed++
			}
		}
		for _, set := range card.Sets {
			for _, winnerID := range set.Winners {
				t := get(winnerID)
				t.setPoints++
				t.gamesWon += set.WinnerGames()
				t.gamesLost += set.LoserGames()
			}
			for _, loserID := range set.Losers {
				t := get(loserID)
				t.gamesWon += set.LoserGames()
				t.gamesLost += set.WinnerGames()
			}
		}
	}

	rows := make([]*models.StandingRow, 0, len(tallies))
	for playerID, t := range tallies {
		rows = append(rows, &models.StandingRow{
			TierID:        tierID,
			PlayerID:      playerID,
			MatchesPlayed: t.matchesPlayed,
			SetPoints:     t.setPoints,
			GamePoints:    t.gamesWon,
			PctGameWin:    pctGameWin(t.gamesWon, t.gamesLost),
		})
	}
	sortStandingRows(rows)

	// Full replace, never merge: correctness survives any backfill.
	if err := s.standingRepo.DeleteByTier(ctx, exec, tierID); err != nil {
		return nil, err
	}
	if err := s.standingRepo.BatchCreate(ctx, exec, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *standingsService) GetStandings(ctx context.Context, tierID int) (*StandingsView, error) {
	var (
		rows     []*models.StandingRow
		matches  []*models.Match
		previous *models.Snapshot
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.standingRepo.ListByTier(gCtx, nil, tierID)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTier(gCtx, tierID)
		return err
	})
	g.Go(func() error {
		snapshot, err := s.snapshotRepo.GetPrevious(gCtx, tierID)
		if err != nil {
			if errors.Is(err, repositories.ErrSnapshotNotFound) {
				return nil
			}
			return err
		}
		previous = snapshot
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to assemble standings for tier %d: %w", tierID, err)
	}

	sortStandingRows(rows)

	weeks := make(map[int]bool)
	for _, match := range matches {
		weeks[match.WeekIndex] = true
	}
	totalWeeks := len(weeks)

	previousRanks := make(map[int]int)
	if previous != nil {
		snapshotRows := make([]*models.StandingRow, len(previous.Rows))
		for i := range previous.Rows {
			snapshotRows[i] = &previous.Rows[i]
		}
		sortStandingRows(snapshotRows)
		for i, row := range snapshotRows {
			previousRanks[row.PlayerID] = i + 1
		}
	}

	ranked := make([]models.RankedStandingRow, len(rows))
	for i, row := range rows {
		rank := i + 1
		annotated := models.RankedStandingRow{
			StandingRow: *row,
			Rank:        rank,
			Badges:      badgesFor(row, totalWeeks),
		}
		if prevRank, ok := previousRanks[row.PlayerID]; ok {
			trend := prevRank - rank // positive = moved up
			annotated.Trend = &trend
		}
		ranked[i] = annotated
	}

	top8 := ranked
	if len(top8) > 8 {
		top8 = top8[:8]
	}
	return &StandingsView{TierID: tierID, Rows: ranked, Top8: top8}, nil
}

// pctGameWin rounds to four decimals; zero when no games were played.
func pctGameWin(won, lost int) float64 {
	total := won + lost
	if total == 0 {
		return 0
	}
	return math.Round(float64(won)/float64(total)*10000) / 10000
}

// sortStandingRows orders descending by (set_points, pct_game_win), with
// player id as a stable final tiebreak.
func sortStandingRows(rows []*models.StandingRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SetPoints != rows[j].SetPoints {
			return rows[i].SetPoints > rows[j].SetPoints
		}
		if rows[i].PctGameWin != rows[j].PctGameWin {
			return rows[i].PctGameWin > rows[j].PctGameWin
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
}

func badgesFor(row *models.StandingRow, totalWeeks int) []string {
	badges := make([]string, 0, 2)
	if row.MatchesPlayed >= 1 {
		badges = append(badges, models.BadgeFirstMatch)
	}
	if totalWeeks > 0 && row.MatchesPlayed >= totalWeeks {
		badges = append(badges, models.BadgeFinishedAll)
	}
	return badges
}
