package events

import "github.com/google/uuid"

// Event types emitted by the core on membership and match-state changes.
const (
	TypeTierRescheduled   = "tier_rescheduled"
	TypeMatchConfirmed    = "match_confirmed"
	TypeMatchDisputed     = "match_disputed"
	TypeScorecardApproved = "scorecard_approved"
	TypeStandingsUpdated  = "standings_updated"
)

// Event is one domain notification. Delivery semantics (at-most-once,
// best-effort) belong to the Publisher implementation, not to the core.
type Event struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	TierID  int         `json:"tier_id"`
	Payload interface{} `json:"payload,omitempty"`
}

// New builds an event with a fresh id.
func New(eventType string, tierID int, payload interface{}) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		TierID:  tierID,
		Payload: payload,
	}
}

// Publisher is the core's only coupling to the pub/sub layer: services get
// one injected and call Publish on state changes. Fan-out lives elsewhere.
type Publisher interface {
	Publish(event Event)
}

// NoopPublisher discards events. Used in tests and when no hub is wired.
type NoopPublisher struct{}

func (NoopPublisher) Publish(Event) {}
