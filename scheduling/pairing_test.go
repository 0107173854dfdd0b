package scheduling

import "testing"

func TestPairingStateSymmetry(t *testing.T) {
	s := NewPairingState()
	s.RecordMatch([4]int{1, 2, 3, 4})
	s.RecordMatch([4]int{1, 3, 2, 4})
	s.AddPartners(5, 6)
	s.AddOpponents(5, 1)

	players := []int{1, 2, 3, 4, 5, 6}
	for _, a := range players {
		for _, b := range players {
			if s.PartnerCount(a, b) != s.PartnerCount(b, a) {
				t.Errorf("partner count asymmetric for (%d,%d): %d vs %d",
					a, b, s.PartnerCount(a, b), s.PartnerCount(b, a))
			}
			if s.OpponentCount(a, b) != s.OpponentCount(b, a) {
				t.Errorf("opponent count asymmetric for (%d,%d): %d vs %d",
					a, b, s.OpponentCount(a, b), s.OpponentCount(b, a))
			}
		}
	}
}

func TestRecordMatchCounters(t *testing.T) {
	s := NewPairingState()
	s.RecordMatch([4]int{1, 2, 3, 4})

	if got := s.PartnerCount(1, 2); got != 1 {
		t.Errorf("PartnerCount(1,2) = %d, want 1", got)
	}
	for _, pair := range [][2]int{{1, 3}, {1, 4}, {2, 3}, {2, 4}} {
		if got := s.OpponentCount(pair[0], pair[1]); got != 1 {
			t.Errorf("OpponentCount(%d,%d) = %d, want 1", pair[0], pair[1], got)
		}
	}
	if got := s.OpponentCount(1, 2); got != 0 {
		t.Errorf("partners counted as opponents: OpponentCount(1,2) = %d", got)
	}
	if got := s.OpponentCount(3, 4); got != 0 {
		t.Errorf("opposing pair counted against each other: OpponentCount(3,4) = %d", got)
	}
}

func TestOpponentCost(t *testing.T) {
	s := NewPairingState()
	s.RecordMatch([4]int{1, 2, 3, 4})
	s.RecordMatch([4]int{1, 2, 3, 5})

	// 1 and 2 faced 3 twice, 4 once, 5 once.
	if got := s.OpponentCost(1, 2, 3, 4); got != 6 {
		t.Errorf("OpponentCost(1,2 vs 3,4) = %d, want 6", got)
	}
	if got := s.OpponentCost(1, 2, 4, 5); got != 4 {
		t.Errorf("OpponentCost(1,2 vs 4,5) = %d, want 4", got)
	}
}

func TestMatchQuality(t *testing.T) {
	s := NewPairingState()
	m := [4]int{1, 2, 3, 4}
	s.RecordMatch(m)

	// One recorded match: partner term 5-1, each opponent term 5-2.
	if got := MatchQuality(s, m); got != 10 {
		t.Errorf("MatchQuality = %d, want 10", got)
	}

	// Heavy repetition floors terms at zero instead of going negative.
	for i := 0; i < 10; i++ {
		s.RecordMatch(m)
	}
	if got := MatchQuality(s, m); got != 0 {
		t.Errorf("MatchQuality after heavy repeats = %d, want 0", got)
	}
}
