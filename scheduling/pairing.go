package scheduling

// PairingState tracks how often two players have been teammates and how
// often they have faced each other across a season. Counters are kept as a
// symmetric sparse matrix: every write goes to both (a,b) and (b,a), so the
// two directions can never drift apart. The state is rebuilt from the
// season's matches at the start of every scheduling run and is never
// persisted directly.
type PairingState struct {
	partners  map[int]map[int]int
	opponents map[int]map[int]int
}

// NewPairingState returns an empty state.
func NewPairingState() *PairingState {
	return &PairingState{
		partners:  make(map[int]map[int]int),
		opponents: make(map[int]map[int]int),
	}
}

func bump(m map[int]map[int]int, a, b int) {
	if m[a] == nil {
		m[a] = make(map[int]int)
	}
	if m[b] == nil {
		m[b] = make(map[int]int)
	}
	m[a][b]++
	m[b][a]++
}

// PartnerCount returns how many times a and b have been teammates.
func (s *PairingState) PartnerCount(a, b int) int {
	return s.partners[a][b]
}

// OpponentCount returns how many times a and b have been on opposing sides.
func (s *PairingState) OpponentCount(a, b int) int {
	return s.opponents[a][b]
}

// AddPartners increments the teammate counter for a and b, both directions.
func (s *PairingState) AddPartners(a, b int) {
	bump(s.partners, a, b)
}

// AddOpponents increments the opponent counter for a and b, both directions.
func (s *PairingState) AddOpponents(a, b int) {
	bump(s.opponents, a, b)
}

// RecordMatch applies one match [a,b,c,d] to the counters: a-b as the
// seeded partnership, and the four cross pairs a-c, a-d, b-c, b-d as
// opponents. Replaying a season's matches through here reconstructs the
// full state.
func (s *PairingState) RecordMatch(players [4]int) {
	a, b, c, d := players[0], players[1], players[2], players[3]
	s.AddPartners(a, b)
	s.AddOpponents(a, c)
	s.AddOpponents(a, d)
	s.AddOpponents(b, c)
	s.AddOpponents(b, d)
}

// OpponentCost is the combined opponent exposure of the pair (c,d) against
// the partnership (a,b).
func (s *PairingState) OpponentCost(a, b, c, d int) int {
	return s.OpponentCount(a, c) + s.OpponentCount(a, d) +
		s.OpponentCount(b, c) + s.OpponentCount(b, d)
}
