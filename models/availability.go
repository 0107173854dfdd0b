package models

// Availability holds the set of time windows a player can play in.
// Window labels are opaque strings ("Mon AM", "Thu PM"); only set
// membership matters. One record per player, last write wins.
type Availability struct {
	PlayerID int      `json:"player_id"`
	Windows  []string `json:"windows"`
}

// IsCompatible reports whether the player can play in the desired window.
// A nil desired window means no constraint was requested, and an empty
// window set means the player recorded no constraint; both are compatible,
// so new players without availability data stay schedulable.
func (a Availability) IsCompatible(desired *string) bool {
	if desired == nil || *desired == "" {
		return true
	}
	if len(a.Windows) == 0 {
		return true
	}
	for _, w := range a.Windows {
		if w == *desired {
			return true
		}
	}
	return false
}
