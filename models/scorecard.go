package models

import "time"

// SetScore is one of the three sets on a scorecard. Winners and Losers are
// two disjoint pairs drawn from the match's four players. Equal game counts
// are invalid; a 7-6 set is recorded as-is with the tiebreak loser's points
// optionally kept alongside (standings ignore the tiebreak detail).
type SetScore struct {
	Team1Games          int   `json:"team1_games"`
	Team2Games          int   `json:"team2_games"`
	Winners             []int `json:"winners"`
	Losers              []int `json:"losers"`
	TiebreakLoserPoints *int  `json:"tiebreak_loser_points,omitempty"`
}

// WinnerGames returns the game count earned by the winning pair, which is
// the higher of the two regardless of which literal team slot held it.
func (s SetScore) WinnerGames() int {
	if s.Team1Games > s.Team2Games {
		return s.Team1Games
	}
	return s.Team2Games
}

// LoserGames returns the game count earned by the losing pair.
func (s SetScore) LoserGames() int {
	if s.Team1Games < s.Team2Games {
		return s.Team1Games
	}
	return s.Team2Games
}

// Scorecard records the three sets of a played match. It is stored pending
// until an approver finalizes it; approval is terminal for the match.
type Scorecard struct {
	ID          int        `json:"id"`
	MatchID     int        `json:"match_id"`
	Sets        []SetScore `json:"sets"`
	SubmittedBy int        `json:"submitted_by"`
	ApprovedBy  *int       `json:"approved_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Approved reports whether the scorecard has been finalized.
func (c *Scorecard) Approved() bool {
	return c.ApprovedBy != nil
}

// OverridePairing is one set's proposed partnership split: two pairs of two
// covering exactly the match's four players.
type OverridePairing struct {
	Pair1 []int `json:"pair1"`
	Pair2 []int `json:"pair2"`
}

// PartnerOverride is a proposed alternative pairing for all three sets,
// pending until every match player has confirmed it.
type PartnerOverride struct {
	ID            int               `json:"id"`
	MatchID       int               `json:"match_id"`
	Sets          []OverridePairing `json:"sets"`
	ProposedBy    int               `json:"proposed_by"`
	Confirmations []int             `json:"confirmations"`
	Locked        bool              `json:"locked"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ConfirmedBy reports whether the player already confirmed this override.
func (o *PartnerOverride) ConfirmedBy(playerID int) bool {
	for _, id := range o.Confirmations {
		if id == playerID {
			return true
		}
	}
	return false
}
