package state

import (
	"fmt"
	"time"
)

// Season boundaries. The game opens in March and is frozen at September;
// the draft happens there and the month counter never passes it.
const (
	FirstMonth = 3
	FinalMonth = 9
)

// TrainingHistoryLimit bounds the training log kept for prompt context.
const TrainingHistoryLimit = 10

// Phase is the top-level mode of a session: scripted narrative or free chat.
type Phase string

const (
	PhaseStorybook Phase = "storybook"
	PhaseChat      Phase = "chat"
)

// PendingAction is the nested sub-state of the tournament mini-game. It
// chains the two-stage at-bat/steal sequence across requests.
type PendingAction string

const (
	ActionNone               PendingAction = ""
	ActionAwaitAtBat         PendingAction = "awaiting_at_bat"
	ActionAwaitStealDecision PendingAction = "awaiting_steal_decision"
)

// TournamentResult is the recorded outcome of the climactic tournament
// at-bat, refined by the steal attempt when one happened.
type TournamentResult string

const (
	ResultNone      TournamentResult = ""
	ResultStrikeout TournamentResult = "strikeout"
	ResultHit       TournamentResult = "hit"
	ResultHitSteal  TournamentResult = "hit_steal"
	ResultHomerun   TournamentResult = "homerun"
)

// Flags records irreversible narrative decisions. The known flags are
// typed fields; Extra is an open map for forward-extensible story state.
type Flags struct {
	BackstoryRevealed   bool              `json:"backstory_revealed"`
	TournamentResult    TournamentResult  `json:"tournament_result,omitempty"`
	StealPhobiaOvercome bool              `json:"steal_phobia_overcome"`
	Extra               map[string]string `json:"extra,omitempty"`
}

// TrainingRecord is one completed training session, kept for prompt context.
type TrainingRecord struct {
	Month         int            `json:"month"`
	Intensity     int            `json:"intensity"`
	Tier          string         `json:"tier"`
	Focuses       []string       `json:"focuses"`
	StatChanges   map[string]int `json:"stat_changes,omitempty"`
	StaminaChange int            `json:"stamina_change"`
	Summary       string         `json:"summary"`
}

// CardVisual is the generated descriptor rendered for milestone cards,
// which have no illustration of their own.
type CardVisual struct {
	Gradient  []string `json:"gradient"`
	Emoji     string   `json:"emoji"`
	Threshold int      `json:"threshold"`
}

// MomentCard is a commemorative record of a narrative beat (event card,
// with an illustration) or a threshold crossing (milestone card, with a
// generated visual). Cards are immutable once created.
type MomentCard struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`     // "event" or "milestone"
	Category      string      `json:"category"` // e.g. "home_visit", "tournament", "intimacy", "stat_combo"
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Month         int         `json:"month"`
	CreatedAt     time.Time   `json:"created_at"`
	ImageURL      string      `json:"image_url,omitempty"`
	Visual        *CardVisual `json:"visual,omitempty"`
	StatsSnapshot PlayerStats `json:"stats_snapshot"`
}

// EndingResult is the final outcome of a season, stored on the state so
// repeated queries return the same ending.
type EndingResult struct {
	ID       string           `json:"id"`
	Tier     string           `json:"tier"`
	Outcome  TournamentResult `json:"outcome"`
	Special  bool             `json:"special"`
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle,omitempty"`
}

// GameState is the full state of one coaching session, keyed by session ID.
// There is at most one live instance per session inside a process; the
// Store owns that guarantee.
type GameState struct {
	SessionID string `json:"session_id"`

	CurrentMonth int `json:"current_month"`
	CurrentDay   int `json:"current_day"`

	Stats PlayerStats `json:"stats"`
	Flags Flags       `json:"flags"`

	EventHistory    []string         `json:"event_history,omitempty"`
	SpecialMoments  []MomentCard     `json:"special_moments,omitempty"`
	TrainingHistory []TrainingRecord `json:"training_history,omitempty"`

	CurrentPhase       Phase           `json:"current_phase"`
	CurrentStorybookID string          `json:"current_storybook_id,omitempty"`
	StorybookCompleted map[string]bool `json:"storybook_completed,omitempty"`

	PreviousMonthStats *PlayerStats  `json:"previous_month_stats,omitempty"`
	NextAction         PendingAction `json:"next_action,omitempty"`

	TrainingCountThisMonth int `json:"training_count_this_month"`

	Ending *EndingResult `json:"ending,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// OpeningStorybookID is shown on first contact, before any chat.
const OpeningStorybookID = "3_opening"

// NewGameState returns a fresh session at the start of March, parked on the
// opening storybook.
func NewGameState(sessionID string) *GameState {
	return &GameState{
		SessionID:          sessionID,
		CurrentMonth:       FirstMonth,
		CurrentDay:         1,
		Stats:              NewPlayerStats(),
		CurrentPhase:       PhaseStorybook,
		CurrentStorybookID: OpeningStorybookID,
		StorybookCompleted: make(map[string]bool),
	}
}

// MonthsUntilDraft counts down to September.
func (gs *GameState) MonthsUntilDraft() int {
	return FinalMonth - gs.CurrentMonth
}

// SetChatMode leaves the scripted sequence and returns to free chat.
func (gs *GameState) SetChatMode() {
	gs.CurrentPhase = PhaseChat
	gs.CurrentStorybookID = ""
}

// SetStorybookMode enters the scripted sequence identified by id.
func (gs *GameState) SetStorybookMode(id string) {
	gs.CurrentPhase = PhaseStorybook
	gs.CurrentStorybookID = id
}

// MarkStorybookCompleted records a storybook as done. Marking twice is
// harmless; the set is the idempotency guard for completion actions.
func (gs *GameState) MarkStorybookCompleted(id string) {
	if gs.StorybookCompleted == nil {
		gs.StorybookCompleted = make(map[string]bool)
	}
	gs.StorybookCompleted[id] = true
}

// SavePreviousMonthStats snapshots the stat block at the start of a month
// transition, for before/after display only.
func (gs *GameState) SavePreviousMonthStats() {
	snap := gs.Stats.Snapshot()
	gs.PreviousMonthStats = &snap
}

// RecordTrainingSession appends to the bounded training log, dropping the
// oldest entries past the limit.
func (gs *GameState) RecordTrainingSession(rec TrainingRecord) {
	gs.TrainingHistory = append(gs.TrainingHistory, rec)
	if n := len(gs.TrainingHistory); n > TrainingHistoryLimit {
		gs.TrainingHistory = gs.TrainingHistory[n-TrainingHistoryLimit:]
	}
}

// HasConsumedEvent reports whether a one-shot narrative event already fired.
func (gs *GameState) HasConsumedEvent(key string) bool {
	for _, e := range gs.EventHistory {
		if e == key {
			return true
		}
	}
	return false
}

// ConsumeEvent appends to the event history so the event never fires again.
func (gs *GameState) ConsumeEvent(key string) {
	gs.EventHistory = append(gs.EventHistory, key)
}

// StatSummary is a compact text block injected into the reply prompt.
func (gs *GameState) StatSummary() string {
	s := gs.Stats
	return fmt.Sprintf(
		"Intimacy %d/100, Mental %d/100, Stamina %d/100, Batting %d/100, Speed %d/100, Defense %d/100",
		s.Intimacy, s.Mental, s.Stamina, s.Batting, s.Speed, s.Defense)
}

// GameInfo is a one-line progress summary for prompt context.
func (gs *GameState) GameInfo() string {
	return fmt.Sprintf("Month %d. %d months until the draft.", gs.CurrentMonth, gs.MonthsUntilDraft())
}

// IntimacyLevel describes the relationship band in words.
func (gs *GameState) IntimacyLevel() string {
	switch i := gs.Stats.Intimacy; {
	case i < 20:
		return "very low - barely willing to talk"
	case i < 40:
		return "low - defensive and distant"
	case i < 60:
		return "moderate - starting to open up"
	case i < 80:
		return "high - trusting and cooperative"
	default:
		return "very high - genuine respect and loyalty"
	}
}

// BehaviorGuide tells the reply oracle how the trainee should act at the
// current intimacy band.
func (gs *GameState) BehaviorGuide() string {
	switch i := gs.Stats.Intimacy; {
	case i < 30:
		return "Keep a cold, curt tone. Stay defensive and keep the coach at arm's length. Prefer short, blunt answers."
	case i < 60:
		return "Start opening up a little. Show honest feelings occasionally but stay guarded. Listen to the coach without conceding easily."
	default:
		return "Be cooperative and warm. Trust and respect the coach, engage actively, and show open passion for baseball."
	}
}
