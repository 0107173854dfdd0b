package services

import (
	"context"
	"testing"

	"github.com/courtside/league-system/models"
)

func approvedCard(t *testing.T, repo *fakeScorecardRepo, matchID int, sets []models.SetScore) {
	t.Helper()
	card := &models.Scorecard{MatchID: matchID, Sets: sets, SubmittedBy: sets[0].Winners[0]}
	if err := repo.Create(context.Background(), nil, card); err != nil {
		t.Fatalf("create scorecard: %v", err)
	}
	if err := repo.Approve(context.Background(), nil, card.ID, sets[0].Winners[0]); err != nil {
		t.Fatalf("approve scorecard: %v", err)
	}
}

func seedMatch(t *testing.T, repo *fakeMatchRepo, tierID, weekIndex int, players []int) *models.Match {
	t.Helper()
	match := &models.Match{
		TierID:    tierID,
		WeekIndex: weekIndex,
		PlayerIDs: players,
		Status:    models.MatchStatusConfirmed,
	}
	if err := repo.Create(context.Background(), nil, match); err != nil {
		t.Fatalf("create match: %v", err)
	}
	return match
}

func TestRecomputeSingleMatch(t *testing.T) {
	matchRepo := newFakeMatchRepo()
	scorecardRepo := newFakeScorecardRepo()
	standingRepo := newFakeStandingRepo()
	snapshotRepo := newFakeSnapshotRepo()
	svc := NewStandingsService(matchRepo, scorecardRepo, standingRepo, snapshotRepo)

	match := seedMatch(t, matchRepo, 1, 0, []int{1, 2, 3, 4})
	approvedCard(t, scorecardRepo, match.ID, []models.SetScore{
		{Team1Games: 6, Team2Games: 4, Winners: []int{1, 2}, Losers: []int{3, 4}},
		{Team1Games: 4, Team2Games: 6, Winners: []int{3, 4}, Losers: []int{1, 2}},
		{Team1Games: 6, Team2Games: 4, Winners: []int{1, 2}, Losers: []int{3, 4}},
	})

	rows, err := svc.Recompute(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	byPlayer := make(map[int]*models.StandingRow)
	for _, row := range rows {
		byPlayer[row.PlayerID] = row
	}

	p1 := byPlayer[1]
	if p1.MatchesPlayed != 1 {
		t.Errorf("player 1 matches_played = %d, want 1", p1.MatchesPlayed)
	}
	if p1.SetPoints != 2 {
		t.Errorf("player 1 set_points = %d, want 2", p1.SetPoints)
	}
	// Games: won 6+4+6=16, lost 4+6+4=14, so 16/30.
	if p1.GamePoints != 16 {
		t.Errorf("player 1 game_points = %d, want 16", p1.GamePoints)
	}
	if p1.PctGameWin != 0.5333 {
		t.Errorf("player 1 pct_game_win = %v, want 0.5333", p1.PctGameWin)
	}

	p3 := byPlayer[3]
	if p3.SetPoints != 1 {
		t.Errorf("player 3 set_points = %d, want 1", p3.SetPoints)
	}
	if p3.GamePoints != 14 {
		t.Errorf("player 3 game_points = %d, want 14", p3.GamePoints)
	}
	if p3.PctGameWin != 0.4667 {
		t.Errorf("player 3 pct_game_win = %v, want 0.4667", p3.PctGameWin)
	}

	// Winners sort ahead of losers.
	if rows[0].PlayerID != 1 || rows[1].PlayerID != 2 {
		t.Errorf("expected players 1,2 at the top, got %d,%d", rows[0].PlayerID, rows[1].PlayerID)
	}

	// One approved card credits exactly its four players once each.
	totalPlayed := 0
	for _, row := range rows {
		totalPlayed += row.MatchesPlayed
	}
	if totalPlayed != 4 {
		t.Errorf("sum(matches_played) = %d, want 4 for one approved scorecard", totalPlayed)
	}
}

func TestRecomputeIgnoresUnapprovedCards(t *testing.T) {
	matchRepo := newFakeMatchRepo()
	scorecardRepo := newFakeScorecardRepo()
	svc := NewStandingsService(matchRepo, scorecardRepo, newFakeStandingRepo(), newFakeSnapshotRepo())

	match := seedMatch(t, matchRepo, 1, 0, []int{1, 2, 3, 4})
	pending := &models.Scorecard{MatchID: match.ID, SubmittedBy: 1, Sets: []models.SetScore{
		{Team1Games: 6, Team2Games: 0, Winners: []int{1, 2}, Losers: []int{3, 4}},
		{Team1Games: 6, Team2Games: 0, Winners: []int{1, 2}, Losers: []int{3, 4}},
		{Team1Games: 6, Team2Games: 0, Winners: []int{1, 2}, Losers: []int{3, 4}},
	}}
	if err := scorecardRepo.Create(context.Background(), nil, pending); err != nil {
		t.Fatalf("create scorecard: %v", err)
	}

	rows, err := svc.Recompute(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("pending scorecards must not score; got %d rows", len(rows))
	}
}

func TestRecomputeCreditsMatchesOncePerMatch(t *testing.T) {
	matchRepo := newFakeMatchRepo()
	scorecardRepo := newFakeScorecardRepo()
	svc := NewStandingsService(matchRepo, scorecardRepo, newFakeStandingRepo(), newFakeSnapshotRepo())

	// Two approved cards on one match, as a backfill could produce. The
	// match must still count once per player.
	match := seedMatch(t, matchRepo, 1, 0, []int{1, 2, 3, 4})
	sets := []models.SetScore{
		{Team1Games: 6, Team2Games: 4, Winners: []int{1, 2}, Losers: []int{3, 4}},
		{Team1Games: 6, Team2Games: 3, Winners: []int{1, 2}, Losers: []int{3, 4}},
		{Team1Games: 6, Team2Games: 2, Winners: []int{1, 2}, Losers: []int{3, 4}},
	}
	approvedCard(t, scorecardRepo, match.ID, sets)
	approvedCard(t, scorecardRepo, match.ID, sets)

	rows, err := svc.Recompute(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	for _, row := range rows {
		if row.MatchesPlayed != 1 {
			t.Errorf("player %d matches_played = %d, want 1", row.PlayerID, row.MatchesPlayed)
		}
	}
}

func TestRecomputeReplacesStaleRows(t *testing.T) {
	matchRepo := newFakeMatchRepo()
	scorecardRepo := newFakeScorecardRepo()
	standingRepo := newFakeStandingRepo()
	svc := NewStandingsService(matchRepo, scorecardRepo, standingRepo, newFakeSnapshotRepo())

	// A stale row for a player who no longer appears in any scorecard.
	stale := &models.StandingRow{TierID: 1, PlayerID: 99, SetPoints: 30}
	if err := standingRepo.BatchCreate(context.Background(), nil, []*models.StandingRow{stale}); err != nil {
		t.Fatalf("seed stale row: %v", err)
	}

	match := seedMatch(t, matchRepo, 1, 0, []int{1, 2, 3, 4})
	approvedCard(t, scorecardRepo, match.ID, []models.SetScore{
		{Team1Games: 6, Team2Games: 3, Winners: []int{1, 2}, Losers: []int{3, 4}},
		{Team1Games: 6, Team2Games: 3, Winners: []int{1, 2}, Losers: []int{3, 4}},
		{Team1Games: 3, Team2Games: 6, Winners: []int{3, 4}, Losers: []int{1, 2}},
	})

	if _, err := svc.Recompute(context.Background(), nil, 1); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	rows, err := standingRepo.ListByTier(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("list rows: %v", err)
	}
	for _, row := range rows {
		if row.PlayerID == 99 {
			t.Fatal("stale row survived recompute; rows must be replaced, not merged")
		}
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows after replace, got %d", len(rows))
	}
}

func TestGetStandingsRanksBadgesAndTrend(t *testing.T) {
	matchRepo := newFakeMatchRepo()
	scorecardRepo := newFakeScorecardRepo()
	standingRepo := newFakeStandingRepo()
	snapshotRepo := newFakeSnapshotRepo()
	svc := NewStandingsService(matchRepo, scorecardRepo, standingRepo, snapshotRepo)

	// Two weeks on the calendar; player 4 sat out week 1.
	seedMatch(t, matchRepo, 1, 0, []int{1, 2, 3, 4})
	seedMatch(t, matchRepo, 1, 1, []int{1, 2, 3, 5})

	current := []*models.StandingRow{
		{TierID: 1, PlayerID: 1, MatchesPlayed: 2, SetPoints: 5, PctGameWin: 0.7},
		{TierID: 1, PlayerID: 2, MatchesPlayed: 2, SetPoints: 4, PctGameWin: 0.6},
		{TierID: 1, PlayerID: 3, MatchesPlayed: 2, SetPoints: 2, PctGameWin: 0.4},
		{TierID: 1, PlayerID: 4, MatchesPlayed: 1, SetPoints: 1, PctGameWin: 0.3},
		{TierID: 1, PlayerID: 5, MatchesPlayed: 1, SetPoints: 0, PctGameWin: 0.2},
	}
	if err := standingRepo.BatchCreate(context.Background(), nil, current); err != nil {
		t.Fatalf("seed rows: %v", err)
	}

	// The older snapshot had players 1 and 2 swapped; the newest snapshot
	// matches the current table and must not drive the trend.
	older := &models.Snapshot{TierID: 1, Rows: []models.StandingRow{
		{TierID: 1, PlayerID: 2, SetPoints: 4, PctGameWin: 0.6},
		{TierID: 1, PlayerID: 1, SetPoints: 3, PctGameWin: 0.5},
		{TierID: 1, PlayerID: 3, SetPoints: 2, PctGameWin: 0.4},
	}}
	newest := &models.Snapshot{TierID: 1, Rows: []models.StandingRow{
		{TierID: 1, PlayerID: 1, SetPoints: 5, PctGameWin: 0.7},
		{TierID: 1, PlayerID: 2, SetPoints: 4, PctGameWin: 0.6},
	}}
	for _, snapshot := range []*models.Snapshot{older, newest} {
		if err := snapshotRepo.Create(context.Background(), nil, snapshot); err != nil {
			t.Fatalf("seed snapshot: %v", err)
		}
	}

	view, err := svc.GetStandings(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetStandings: %v", err)
	}
	if len(view.Rows) != 5 {
		t.Fatalf("expected 5 ranked rows, got %d", len(view.Rows))
	}

	for i, row := range view.Rows {
		if row.Rank != i+1 {
			t.Errorf("row %d rank = %d, want %d", i, row.Rank, i+1)
		}
	}
	if view.Rows[0].PlayerID != 1 {
		t.Errorf("rank 1 is player %d, want 1", view.Rows[0].PlayerID)
	}

	// In the older snapshot player 1 was ranked 2nd; now 1st.
	if view.Rows[0].Trend == nil || *view.Rows[0].Trend != 1 {
		t.Errorf("player 1 trend = %v, want 1", view.Rows[0].Trend)
	}
	if view.Rows[1].Trend == nil || *view.Rows[1].Trend != -1 {
		t.Errorf("player 2 trend = %v, want -1", view.Rows[1].Trend)
	}
	// Player 4 has no row in the older snapshot.
	if view.Rows[3].Trend != nil {
		t.Errorf("player 4 trend = %v, want nil", *view.Rows[3].Trend)
	}

	hasBadge := func(row models.RankedStandingRow, badge string) bool {
		for _, b := range row.Badges {
			if b == badge {
				return true
			}
		}
		return false
	}
	if !hasBadge(view.Rows[0], models.BadgeFirstMatch) || !hasBadge(view.Rows[0], models.BadgeFinishedAll) {
		t.Errorf("player 1 badges = %v, want first_match and finished_all", view.Rows[0].Badges)
	}
	if !hasBadge(view.Rows[3], models.BadgeFirstMatch) {
		t.Errorf("player 4 badges = %v, want first_match", view.Rows[3].Badges)
	}
	if hasBadge(view.Rows[3], models.BadgeFinishedAll) {
		t.Errorf("player 4 played 1 of 2 weeks but got finished_all")
	}

	if len(view.Top8) != 5 {
		t.Errorf("top8 of 5 players has %d entries, want 5", len(view.Top8))
	}
}

func TestGetStandingsTopEightCapped(t *testing.T) {
	matchRepo := newFakeMatchRepo()
	standingRepo := newFakeStandingRepo()
	svc := NewStandingsService(matchRepo, newFakeScorecardRepo(), standingRepo, newFakeSnapshotRepo())

	rows := make([]*models.StandingRow, 0, 10)
	for i := 1; i <= 10; i++ {
		rows = append(rows, &models.StandingRow{TierID: 1, PlayerID: i, SetPoints: 20 - i})
	}
	if err := standingRepo.BatchCreate(context.Background(), nil, rows); err != nil {
		t.Fatalf("seed rows: %v", err)
	}

	view, err := svc.GetStandings(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetStandings: %v", err)
	}
	if len(view.Top8) != 8 {
		t.Fatalf("top8 has %d entries, want 8", len(view.Top8))
	}
	if view.Top8[0].PlayerID != 1 || view.Top8[7].PlayerID != 8 {
		t.Errorf("top8 spans players %d..%d, want 1..8", view.Top8[0].PlayerID, view.Top8[7].PlayerID)
	}
}

func TestPctGameWin(t *testing.T) {
	cases := []struct {
		won, lost int
		want      float64
	}{
		{0, 0, 0},
		{1, 3, 0.25},
		{2, 1, 0.6667},
		{16, 14, 0.5333},
		{7, 0, 1},
	}
	for _, tc := range cases {
		if got := pctGameWin(tc.won, tc.lost); got != tc.want {
			t.Errorf("pctGameWin(%d, %d) = %v, want %v", tc.won, tc.lost, got, tc.want)
		}
	}
}

func TestSortStandingRowsTiebreaks(t *testing.T) {
	rows := []*models.StandingRow{
		{PlayerID: 3, SetPoints: 4, PctGameWin: 0.5},
		{PlayerID: 1, SetPoints: 4, PctGameWin: 0.5},
		{PlayerID: 2, SetPoints: 4, PctGameWin: 0.6},
		{PlayerID: 4, SetPoints: 6, PctGameWin: 0.1},
	}
	sortStandingRows(rows)

	got := []int{rows[0].PlayerID, rows[1].PlayerID, rows[2].PlayerID, rows[3].PlayerID}
	want := []int{4, 2, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", got, want)
		}
	}
}
