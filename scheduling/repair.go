package scheduling

// FindRepairOpponents searches the full season pool for two players, other
// than a and b and compatible with the window, that minimize combined
// opponent cost against the stranded pair (a,b). It recovers matches the
// single greedy pass missed due to pool ordering, without backtracking.
// Returns false when fewer than two candidates exist.
func FindRepairOpponents(state *PairingState, w *WeeklyScheduler, pool []int, a, b int, desiredWindow *string) (int, int, bool) {
	candidates := make([]int, 0, len(pool))
	for _, p := range pool {
		if p == a || p == b {
			continue
		}
		if !w.compatible(p, desiredWindow) {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) < 2 {
		return 0, 0, false
	}

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
	return bestC, bestD, true
}

// MatchQuality scores one created match against the final accumulated
// counts: repeat partnerships and repeat opponents eat into a flat reward
// of 5 per term, floored at zero.
func MatchQuality(state *PairingState, match [4]int) int {
	a, b, c, d := match[0], match[1], match[2], match[3]
	q := clampReward(5 - state.PartnerCount(a, b))
	q += clampReward(5 - state.OpponentCount(a, c) - state.OpponentCount(a, d))
	q += clampReward(5 - state.OpponentCount(b, c) - state.OpponentCount(b, d))
	return q
}

func clampReward(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
