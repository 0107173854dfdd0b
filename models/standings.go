package models

import "time"

// Badge names derived at read time, never stored.
const (
	BadgeFirstMatch  = "first_match"
	BadgeFinishedAll = "finished_all"
)

// StandingRow is one player's season statistics within a tier. Rows are
// fully recomputed from every approved scorecard on each approval, never
// incrementally merged, so retroactive changes stay consistent.
type StandingRow struct {
	ID            int       `json:"id"`
	TierID        int       `json:"tier_id"`
	PlayerID      int       `json:"player_id"`
	MatchesPlayed int       `json:"matches_played"`
	SetPoints     int       `json:"set_points"`
	GamePoints    int       `json:"game_points"`
	PctGameWin    float64   `json:"pct_game_win"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RankedStandingRow is a StandingRow annotated for the standings view.
// Trend is previous rank minus current rank (positive means the player
// moved up); nil when the player has no entry in the prior snapshot.
type RankedStandingRow struct {
	StandingRow
	Rank   int      `json:"rank"`
	Badges []string `json:"badges"`
	Trend  *int     `json:"trend,omitempty"`
}

// Snapshot is an append-only copy of a tier's standings taken right after a
// recompute; used solely for rank-trend deltas.
type Snapshot struct {
	ID        int           `json:"id"`
	TierID    int           `json:"tier_id"`
	Rows      []StandingRow `json:"rows"`
	CreatedAt time.Time     `json:"created_at"`
}

// ScheduleMeta summarizes the outcome of a season scheduling run.
// Conflicts maps week index to the players left unscheduled that week.
type ScheduleMeta struct {
	ID               int           `json:"id"`
	TierID           int           `json:"tier_id"`
	FeasibilityScore int           `json:"feasibility_score"`
	ScheduleQuality  int           `json:"schedule_quality"`
	Conflicts        map[int][]int `json:"conflicts"`
	CreatedAt        time.Time     `json:"created_at"`
}
