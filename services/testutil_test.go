package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/courtside/league-system/events"
	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
)

// In-memory repository fakes. They mirror the postgres implementations'
// observable behavior (id assignment, not-found sentinels, idempotent
// confirmations) without a database; the exec argument is ignored.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTx satisfies repositories.Tx. The repo fakes ignore the executor, so
// the SQLExecutor methods are never reached; only the commit/rollback
// bookkeeping matters.
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type fakeDB struct {
	txs []*fakeTx
}

func (d *fakeDB) BeginTx(context.Context, *sql.TxOptions) (repositories.Tx, error) {
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

func (d *fakeDB) lastTx() *fakeTx {
	if len(d.txs) == 0 {
		return nil
	}
	return d.txs[len(d.txs)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) byType(eventType string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	matched := make([]events.Event, 0)
	for _, e := range p.events {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.ID = r.nextID
	r.nextID++
	stored := *match
	stored.PlayerIDs = append([]int{}, match.PlayerIDs...)
	r.matches[match.ID] = &stored
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	copied.PlayerIDs = append([]int{}, match.PlayerIDs...)
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTier(_ context.Context, tierID int) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for _, match := range r.matches {
		if match.TierID == tierID {
			copied := *match
			copied.PlayerIDs = append([]int{}, match.PlayerIDs...)
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].WeekIndex != matches[j].WeekIndex {
			return matches[i].WeekIndex < matches[j].WeekIndex
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.MatchStatus) error {
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Status = status
	return nil
}

func (r *fakeMatchRepo) UpdateToss(_ context.Context, _ repositories.SQLExecutor, id int, winnerID int, choice string) error {
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.TossWinnerID = &winnerID
	match.TossChoice = &choice
	return nil
}

func (r *fakeMatchRepo) UpdateSchedule(_ context.Context, _ repositories.SQLExecutor, id int, status models.MatchStatus, scheduledAt sql.NullTime, venue *string) error {
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Status = status
	if scheduledAt.Valid {
		t := scheduledAt.Time
		match.ScheduledAt = &t
	} else {
		match.ScheduledAt = nil
	}
	match.ScheduledVenue = venue
	return nil
}

func (r *fakeMatchRepo) DeleteByTier(_ context.Context, _ repositories.SQLExecutor, tierID int) error {
	for id, match := range r.matches {
		if match.TierID == tierID {
			delete(r.matches, id)
		}
	}
	return nil
}

type fakeSlotRepo struct {
	slots  map[int]*models.Slot
	nextID int
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[int]*models.Slot), nextID: 1}
}

func (r *fakeSlotRepo) Create(_ context.Context, _ repositories.SQLExecutor, slot *models.Slot) error {
	slot.ID = r.nextID
	r.nextID++
	stored := *slot
	stored.Confirmations = append([]int{}, slot.Confirmations...)
	r.slots[slot.ID] = &stored
	return nil
}

func (r *fakeSlotRepo) GetByID(_ context.Context, id int) (*models.Slot, error) {
	slot, ok := r.slots[id]
	if !ok {
		return nil, repositories.ErrSlotNotFound
	}
	copied := *slot
	copied.Confirmations = append([]int{}, slot.Confirmations...)
	return &copied, nil
}

func (r *fakeSlotRepo) ListByMatch(_ context.Context, matchID int) ([]*models.Slot, error) {
	slots := make([]*models.Slot, 0)
	for _, slot := range r.slots {
		if slot.MatchID == matchID {
			copied := *slot
			copied.Confirmations = append([]int{}, slot.Confirmations...)
			slots = append(slots, &copied)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })
	return slots, nil
}

func (r *fakeSlotRepo) CountByMatch(_ context.Context, matchID int) (int, error) {
	count := 0
	for _, slot := range r.slots {
		if slot.MatchID == matchID {
			count++
		}
	}
	return count, nil
}

func (r *fakeSlotRepo) AddConfirmation(_ context.Context, _ repositories.SQLExecutor, slotID, playerID int) error {
	slot, ok := r.slots[slotID]
	if !ok {
		return repositories.ErrSlotNotFound
	}
	if !slot.ConfirmedBy(playerID) {
		slot.Confirmations = append(slot.Confirmations, playerID)
	}
	return nil
}

type fakeOverrideRepo struct {
	overrides map[int]*models.PartnerOverride
	nextID    int
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{overrides: make(map[int]*models.PartnerOverride), nextID: 1}
}

func (r *fakeOverrideRepo) Create(_ context.Context, _ repositories.SQLExecutor, override *models.PartnerOverride) error {
	override.ID = r.nextID
	r.nextID++
	stored := *override
	stored.Confirmations = []int{override.ProposedBy}
	r.overrides[override.ID] = &stored
	return nil
}

func (r *fakeOverrideRepo) GetLatestByMatch(_ context.Context, matchID int) (*models.PartnerOverride, error) {
	var latest *models.PartnerOverride
	for _, o := range r.overrides {
		if o.MatchID != matchID {
			continue
		}
		if latest == nil || o.ID > latest.ID {
			latest = o
		}
	}
	if latest == nil {
		return nil, repositories.ErrOverrideNotFound
	}
	copied := *latest
	copied.Confirmations = append([]int{}, latest.Confirmations...)
	return &copied, nil
}

func (r *fakeOverrideRepo) AddConfirmation(_ context.Context, _ repositories.SQLExecutor, overrideID, playerID int) error {
	override, ok := r.overrides[overrideID]
	if !ok {
		return repositories.ErrOverrideNotFound
	}
	if !override.ConfirmedBy(playerID) {
		override.Confirmations = append(override.Confirmations, playerID)
	}
	return nil
}

func (r *fakeOverrideRepo) SetLocked(_ context.Context, _ repositories.SQLExecutor, overrideID int) error {
	override, ok := r.overrides[overrideID]
	if !ok {
		return repositories.ErrOverrideNotFound
	}
	override.Locked = true
	return nil
}

type fakeScorecardRepo struct {
	cards  map[int]*models.Scorecard
	nextID int
}

func newFakeScorecardRepo() *fakeScorecardRepo {
	return &fakeScorecardRepo{cards: make(map[int]*models.Scorecard), nextID: 1}
}

func (r *fakeScorecardRepo) Create(_ context.Context, _ repositories.SQLExecutor, card *models.Scorecard) error {
	card.ID = r.nextID
	r.nextID++
	stored := *card
	stored.Sets = append([]models.SetScore{}, card.Sets...)
	r.cards[card.ID] = &stored
	return nil
}

func (r *fakeScorecardRepo) GetLatestByMatch(_ context.Context, matchID int) (*models.Scorecard, error) {
	var latest *models.Scorecard
	for _, card := range r.cards {
		if card.MatchID != matchID {
			continue
		}
		if latest == nil || card.ID > latest.ID {
			latest = card
		}
	}
	if latest == nil {
		return nil, repositories.ErrScorecardNotFound
	}
	copied := *latest
	copied.Sets = append([]models.SetScore{}, latest.Sets...)
	return &copied, nil
}

func (r *fakeScorecardRepo) ListApprovedByMatchIDs(_ context.Context, _ repositories.SQLExecutor, matchIDs []int) ([]*models.Scorecard, error) {
	wanted := make(map[int]bool, len(matchIDs))
	for _, id := range matchIDs {
		wanted[id] = true
	}
	cards := make([]*models.Scorecard, 0)
	for _, card := range r.cards {
		if card.Approved() && wanted[card.MatchID] {
			copied := *card
			copied.Sets = append([]models.SetScore{}, card.Sets...)
			cards = append(cards, &copied)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

func (r *fakeScorecardRepo) Approve(_ context.Context, _ repositories.SQLExecutor, id int, approvedBy int) error {
	card, ok := r.cards[id]
	if !ok {
		return repositories.ErrScorecardNotFound
	}
	card.ApprovedBy = &approvedBy
	return nil
}

type fakeStandingRepo struct {
	rows   map[int][]*models.StandingRow // keyed by tier
	nextID int
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{rows: make(map[int][]*models.StandingRow), nextID: 1}
}

func (r *fakeStandingRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, rows []*models.StandingRow) error {
	for _, row := range rows {
		row.ID = r.nextID
		r.nextID++
		stored := *row
		r.rows[row.TierID] = append(r.rows[row.TierID], &stored)
	}
	return nil
}

func (r *fakeStandingRepo) ListByTier(_ context.Context, _ repositories.SQLExecutor, tierID int) ([]*models.StandingRow, error) {
	rows := make([]*models.StandingRow, 0, len(r.rows[tierID]))
	for _, row := range r.rows[tierID] {
		copied := *row
		rows = append(rows, &copied)
	}
	return rows, nil
}

func (r *fakeStandingRepo) DeleteByTier(_ context.Context, _ repositories.SQLExecutor, tierID int) error {
	delete(r.rows, tierID)
	return nil
}

type fakeSnapshotRepo struct {
	snapshots map[int][]*models.Snapshot // keyed by tier, oldest first
	nextID    int
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snapshots: make(map[int][]*models.Snapshot), nextID: 1}
}

func (r *fakeSnapshotRepo) Create(_ context.Context, _ repositories.SQLExecutor, snapshot *models.Snapshot) error {
	snapshot.ID = r.nextID
	r.nextID++
	stored := *snapshot
	stored.Rows = append([]models.StandingRow{}, snapshot.Rows...)
	r.snapshots[snapshot.TierID] = append(r.snapshots[snapshot.TierID], &stored)
	return nil
}

func (r *fakeSnapshotRepo) GetPrevious(_ context.Context, tierID int) (*models.Snapshot, error) {
	history := r.snapshots[tierID]
	if len(history) < 2 {
		return nil, repositories.ErrSnapshotNotFound
	}
	return history[len(history)-2], nil
}

func (r *fakeSnapshotRepo) GetLatest(_ context.Context, tierID int) (*models.Snapshot, error) {
	history := r.snapshots[tierID]
	if len(history) == 0 {
		return nil, repositories.ErrSnapshotNotFound
	}
	return history[len(history)-1], nil
}

type fakeAvailabilityRepo struct {
	byPlayer map[int]*models.Availability
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{byPlayer: make(map[int]*models.Availability)}
}

func (r *fakeAvailabilityRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, availability *models.Availability) error {
	stored := *availability
	stored.Windows = append([]string{}, availability.Windows...)
	r.byPlayer[availability.PlayerID] = &stored
	return nil
}

func (r *fakeAvailabilityRepo) GetByPlayer(_ context.Context, playerID int) (*models.Availability, error) {
	availability, ok := r.byPlayer[playerID]
	if !ok {
		// Missing players read back as unconstrained, like the database.
		return &models.Availability{PlayerID: playerID, Windows: []string{}}, nil
	}
	copied := *availability
	copied.Windows = append([]string{}, availability.Windows...)
	return &copied, nil
}

type fakeTierConfigRepo struct {
	configs map[int]*models.TierConfig
}

func newFakeTierConfigRepo() *fakeTierConfigRepo {
	return &fakeTierConfigRepo{configs: make(map[int]*models.TierConfig)}
}

func (r *fakeTierConfigRepo) GetByTier(_ context.Context, tierID int) (*models.TierConfig, error) {
	cfg, ok := r.configs[tierID]
	if !ok {
		return nil, repositories.ErrTierConfigNotFound
	}
	return cfg, nil
}

type fakeSlateRepo struct {
	slates map[int]*models.Slate
	nextID int
}

func newFakeSlateRepo() *fakeSlateRepo {
	return &fakeSlateRepo{slates: make(map[int]*models.Slate), nextID: 1}
}

func (r *fakeSlateRepo) Create(_ context.Context, _ repositories.SQLExecutor, slate *models.Slate) error {
	slate.ID = r.nextID
	r.nextID++
	stored := *slate
	stored.MatchIDs = append([]int{}, slate.MatchIDs...)
	r.slates[slate.ID] = &stored
	return nil
}

func (r *fakeSlateRepo) ListByTier(_ context.Context, tierID int) ([]*models.Slate, error) {
	slates := make([]*models.Slate, 0)
	for _, slate := range r.slates {
		if slate.TierID == tierID {
			copied := *slate
			copied.MatchIDs = append([]int{}, slate.MatchIDs...)
			slates = append(slates, &copied)
		}
	}
	sort.Slice(slates, func(i, j int) bool { return slates[i].WeekIndex < slates[j].WeekIndex })
	return slates, nil
}

func (r *fakeSlateRepo) DeleteByTier(_ context.Context, _ repositories.SQLExecutor, tierID int) error {
	for id, slate := range r.slates {
		if slate.TierID == tierID {
			delete(r.slates, id)
		}
	}
	return nil
}

type fakeScheduleMetaRepo struct {
	byTier map[int]*models.ScheduleMeta
}

func newFakeScheduleMetaRepo() *fakeScheduleMetaRepo {
	return &fakeScheduleMetaRepo{byTier: make(map[int]*models.ScheduleMeta)}
}

func (r *fakeScheduleMetaRepo) Replace(_ context.Context, _ repositories.SQLExecutor, meta *models.ScheduleMeta) error {
	stored := *meta
	r.byTier[meta.TierID] = &stored
	return nil
}

func (r *fakeScheduleMetaRepo) GetByTier(_ context.Context, tierID int) (*models.ScheduleMeta, error) {
	meta, ok := r.byTier[tierID]
	if !ok {
		return nil, repositories.ErrScheduleMetaNotFound
	}
	return meta, nil
}
