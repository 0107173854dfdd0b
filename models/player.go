package models

// Player is an external entity owned by the account system. The core only
// reads ids and ratings; it never mutates player records.
type Player struct {
	ID          int     `json:"id"`
	RatingLevel float64 `json:"rating_level"`
}

// TierConfig is the season configuration that must exist before any
// scheduling or subgroup generation runs for a tier.
type TierConfig struct {
	TierID                 int  `json:"tier_id"`
	SeasonLength           int  `json:"season_length"`
	MinimizeRepeatPartners bool `json:"minimize_repeat_partners"`
}
