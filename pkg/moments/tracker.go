package moments

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/draft-season/pkg/state"
)

// Card categories.
const (
	CategoryIntimacy  = "intimacy"
	CategoryStatCombo = "stat_combo"
)

type milestone struct {
	threshold   int
	title       string
	description string
	gradient    []string
	emoji       string
}

var intimacyMilestones = []milestone{
	{30, "First Signs of Trust", "He looked you in the eye today and didn't look away.", []string{"#fddb92", "#d1fdff"}, "🤝"},
	{50, "Opening Up", "He told you something he's never told anyone on the team.", []string{"#ff9a9e", "#fad0c4"}, "💬"},
	{70, "True Partners", "Coach and player, pulling in the same direction at last.", []string{"#a18cd1", "#fbc2eb"}, "⚾"},
	{90, "Unbreakable Bond", "Whatever September brings, this was worth the season.", []string{"#f6d365", "#fda085"}, "🔥"},
}

var comboMilestones = []milestone{
	{150, "Skills Taking Off", "The fundamentals are clicking. Other teams are starting to notice.", []string{"#84fab0", "#8fd3f4"}, "📈"},
	{200, "A Real Prospect", "The word 'draft' doesn't sound crazy anymore.", []string{"#667eea", "#764ba2"}, "⭐"},
	{250, "Scout Magnet", "Radar guns and clipboards follow him to every game.", []string{"#f093fb", "#f5576c"}, "🏆"},
}

// Tracker mints commemorative cards when the story or the numbers earn
// one. Cards are appended to the state and never removed.
type Tracker struct {
	logger *slog.Logger
}

func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// crossed reports whether a threshold was passed going up. Dropping back
// below and re-crossing is handled by the dedup check, not here.
func crossed(old, new, threshold int) bool {
	return old < threshold && new >= threshold
}

func hasMilestone(gs *state.GameState, category string, threshold int) bool {
	for _, c := range gs.SpecialMoments {
		if c.Category == category && c.Visual != nil && c.Visual.Threshold == threshold {
			return true
		}
	}
	return false
}

func (t *Tracker) mint(gs *state.GameState, category string, m milestone) state.MomentCard {
	card := state.MomentCard{
		ID:          uuid.NewString(),
		Type:        "milestone",
		Category:    category,
		Title:       m.title,
		Description: m.description,
		Month:       gs.CurrentMonth,
		CreatedAt:   time.Now().UTC(),
		Visual: &state.CardVisual{
			Gradient:  m.gradient,
			Emoji:     m.emoji,
			Threshold: m.threshold,
		},
		StatsSnapshot: gs.Stats.Snapshot(),
	}
	gs.SpecialMoments = append(gs.SpecialMoments, card)
	t.logger.Info("milestone card minted",
		"session_id", gs.SessionID,
		"category", category,
		"threshold", m.threshold,
		"title", m.title)
	return card
}

// CheckIntimacy mints cards for intimacy thresholds crossed between old
// and the current value. Each threshold is awarded at most once per
// session, even if the stat oscillates around it.
func (t *Tracker) CheckIntimacy(gs *state.GameState, old int) []state.MomentCard {
	var minted []state.MomentCard
	for _, m := range intimacyMilestones {
		if crossed(old, gs.Stats.Intimacy, m.threshold) && !hasMilestone(gs, CategoryIntimacy, m.threshold) {
			minted = append(minted, t.mint(gs, CategoryIntimacy, m))
		}
	}
	return minted
}

// CheckTechCombo mints cards for combined technical score thresholds
// crossed between oldTotal and the current TechTotal.
func (t *Tracker) CheckTechCombo(gs *state.GameState, oldTotal int) []state.MomentCard {
	var minted []state.MomentCard
	for _, m := range comboMilestones {
		if crossed(oldTotal, gs.Stats.TechTotal(), m.threshold) && !hasMilestone(gs, CategoryStatCombo, m.threshold) {
			minted = append(minted, t.mint(gs, CategoryStatCombo, m))
		}
	}
	return minted
}

// CheckAll runs every milestone check against a pre-mutation snapshot.
func (t *Tracker) CheckAll(gs *state.GameState, before state.PlayerStats) []state.MomentCard {
	minted := t.CheckIntimacy(gs, before.Intimacy)
	minted = append(minted, t.CheckTechCombo(gs, before.TechTotal())...)
	return minted
}

// NewEventCard mints a narrative event card with an illustration and
// appends it to the state.
func (t *Tracker) NewEventCard(gs *state.GameState, category, title, description, imageURL string) state.MomentCard {
	card := state.MomentCard{
		ID:            uuid.NewString(),
		Type:          "event",
		Category:      category,
		Title:         title,
		Description:   description,
		Month:         gs.CurrentMonth,
		CreatedAt:     time.Now().UTC(),
		ImageURL:      imageURL,
		StatsSnapshot: gs.Stats.Snapshot(),
	}
	gs.SpecialMoments = append(gs.SpecialMoments, card)
	t.logger.Info("event card minted",
		"session_id", gs.SessionID,
		"category", category,
		"title", title)
	return card
}
