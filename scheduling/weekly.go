package scheduling

import "math/rand"

// AvailabilityLookup answers whether a player can play in the desired
// window. A nil window always passes.
type AvailabilityLookup interface {
	IsCompatible(playerID int, desired *string) bool
}

// WeeklyResult is the outcome of partitioning one week's pool.
// Matches hold [a,b,c,d] with a-b partnered against c-d. Infeasible lists
// every player the greedy pass could not place this week.
type WeeklyResult struct {
	Matches    [][4]int
	Infeasible []int
}

// WeeklyScheduler partitions a week's eligible pool into 4-player matches,
// greedily minimizing repeat partnerships and opponent exposure against the
// season's running PairingState. The pool order is shuffled first to avoid
// positional bias; with a fixed rand source the result is deterministic.
type WeeklyScheduler struct {
	Availability AvailabilityLookup
	Rand         *rand.Rand

	// IgnorePartnerHistory takes partners in pool order instead of by
	// lowest teammate count. Set for tiers that opt out of repeat-partner
	// minimization. Opponent selection still minimizes exposure.
	IgnorePartnerHistory bool
}

// Run consumes the pool and mutates state with every match it emits.
func (w *WeeklyScheduler) Run(pool []int, desiredWindow *string, state *PairingState) WeeklyResult {
	remaining := make([]int, len(pool))
	copy(remaining, pool)
	if w.Rand != nil {
		w.Rand.Shuffle(len(remaining), func(i, j int) {
			remaining[i], remaining[j] = remaining[j], remaining[i]
		})
	}

	var result WeeklyResult
	for len(remaining) >= 4 {
		// Anchor: first remaining player compatible with the window.
		anchorIdx := -1
		for i, p := range remaining {
			if w.compatible(p, desiredWindow) {
				anchorIdx = i
				break
			}
		}
		if anchorIdx == -1 {
			result.Infeasible = append(result.Infeasible, remaining...)
			return result
		}
		a := remaining[anchorIdx]
		remaining = append(remaining[:anchorIdx], remaining[anchorIdx+1:]...)

		candidates := w.compatibleOf(remaining, desiredWindow)
		if len(candidates) < 3 {
			// Not enough players left to seat a full match around the anchor.
			result.Infeasible = append(result.Infeasible, a)
			result.Infeasible = append(result.Infeasible, remaining...)
			return result
		}

		// Partner: lowest teammate count, ties broken by pool order.
		b := candidates[0]
		if !w.IgnorePartnerHistory {
			for _, p := range candidates[1:] {
				if state.PartnerCount(a, p) < state.PartnerCount(a, b) {
					b = p
				}
			}
		}
		remaining = removePlayer(remaining, b)

		candidates = w.compatibleOf(remaining, desiredWindow)
		if len(candidates) < 2 {
			result.Infeasible = append(result.Infeasible, a, b)
			result.Infeasible = append(result.Infeasible, remaining...)
			return result
		}

		// Opponents: exhaustive pairwise search over the remaining
		// candidates. Pools are tens of players at most, so O(n²) per
		// match is fine.
		bestC, bestD := candidates[0], candidates[1]
		bestCost := state.OpponentCost(a, b, bestC, bestD)
		for i := 0; i < len(candidates); i++ {
			for j := i + 1; j < len(candidates); j++ {
				cost := state.OpponentCost(a, b, candidates[i], candidates[j])
				if cost < bestCost {
					bestC, bestD = candidates[i], candidates[j]
					bestCost = cost
				}
			}
		}
		remaining = removePlayer(remaining, bestC)
		remaining = removePlayer(remaining, bestD)

		match := [4]int{a, b, bestC, bestD}
		state.RecordMatch(match)
		result.Matches = append(result.Matches, match)
	}

	result.Infeasible = append(result.Infeasible, remaining...)
	return result
}

func (w *WeeklyScheduler) compatible(playerID int, desired *string) bool {
	if desired == nil || *desired == "" {
		return true
	}
	if w.Availability == nil {
		return true
	}
	return w.Availability.IsCompatible(playerID, desired)
}

func (w *WeeklyScheduler) compatibleOf(players []int, desired *string) []int {
	out := make([]int, 0, len(players))
	for _, p := range players {
		if w.compatible(p, desired) {
			out = append(out, p)
		}
	}
	return out
}

func removePlayer(players []int, id int) []int {
	for i, p := range players {
		if p == id {
			return append(players[:i], players[i+1:]...)
		}
	}
	return players
}
