package models

import "time"

// MatchStatus mirrors the match_status ENUM in the database.
type MatchStatus string

const (
	MatchStatusProposed  MatchStatus = "proposed"
	MatchStatusConfirmed MatchStatus = "confirmed"
	MatchStatusPlayed    MatchStatus = "played"
	MatchStatusDisputed  MatchStatus = "disputed"
)

// Match is one doubles match within a tier's week. PlayerIDs always holds
// exactly four distinct players for the whole match lifetime; the first two
// are the seeded partnership, the last two the opposing pair.
type Match struct {
	ID             int         `json:"id"`
	TierID         int         `json:"tier_id"`
	WeekIndex      int         `json:"week_index"`
	PlayerIDs      []int       `json:"player_ids"`
	Status         MatchStatus `json:"status"`
	ScheduledAt    *time.Time  `json:"scheduled_at,omitempty"`
	ScheduledVenue *string     `json:"scheduled_venue,omitempty"`
	TossWinnerID   *int        `json:"toss_winner_id,omitempty"`
	TossChoice     *string     `json:"toss_choice,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`

	// Optional linked data, populated by services, not mapped directly.
	Slots []Slot `json:"slots,omitempty"`
}

// HasPlayer reports whether id is one of the match's four players.
func (m *Match) HasPlayer(id int) bool {
	for _, p := range m.PlayerIDs {
		if p == id {
			return true
		}
	}
	return false
}

// Slate groups the matches scheduled for one (tier, week). Replaced
// wholesale whenever the tier is rescheduled.
type Slate struct {
	ID        int       `json:"id"`
	TierID    int       `json:"tier_id"`
	WeekIndex int       `json:"week_index"`
	MatchIDs  []int     `json:"match_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// Slot is one proposed datetime+venue for a match. A match carries at most
// three live slots; the first slot whose confirmations cover all four
// players locks the match.
type Slot struct {
	ID            int       `json:"id"`
	MatchID       int       `json:"match_id"`
	ProposedBy    int       `json:"proposed_by"`
	Start         time.Time `json:"start"`
	VenueName     *string   `json:"venue_name,omitempty"`
	Confirmations []int     `json:"confirmations"`
	CreatedAt     time.Time `json:"created_at"`
}

// ConfirmedBy reports whether the player already confirmed this slot.
func (s *Slot) ConfirmedBy(playerID int) bool {
	for _, id := range s.Confirmations {
		if id == playerID {
			return true
		}
	}
	return false
}
