package storybook

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/jwebster45206/draft-season/pkg/state"
)

// ErrSeasonOver is returned when the month counter is already at the
// final month and cannot advance further.
var ErrSeasonOver = errors.New("season is over: the draft month has been reached")

// ErrSeasonRunning is wrapped when an ending is requested before the
// final month. Handlers translate it to a bad-request response.
var ErrSeasonRunning = errors.New("season still running")

// Stamina recovered on entering a month. The break gets shorter as the
// season heats up.
var staminaRecovery = map[int]int{
	4: 25, 5: 25,
	6: 15, 7: 15,
	8: 10, 9: 10,
}

// GoalStatus is one month goal with the trainee's current standing.
type GoalStatus struct {
	Stat     string `json:"stat"`
	Required int    `json:"required"`
	Current  int    `json:"current"`
	Achieved bool   `json:"achieved"`
}

// GoalReport summarizes the current month's goals.
type GoalReport struct {
	Month  int          `json:"month"`
	Goals  []GoalStatus `json:"goals"`
	AllMet bool         `json:"all_met"`
}

// AdvanceResult describes a completed month transition.
type AdvanceResult struct {
	PreviousMonth    int               `json:"previous_month"`
	NewMonth         int               `json:"new_month"`
	StaminaRecovered int               `json:"stamina_recovered"`
	StorybookID      string            `json:"storybook_id"`
	Goals            []MonthGoal       `json:"goals,omitempty"`
	Guide            *MonthGuide       `json:"guide,omitempty"`
	PreviousStats    state.PlayerStats `json:"previous_stats"`
	CurrentStats     state.PlayerStats `json:"current_stats"`
}

// CompletionResult tells the client what to show after a storybook's last
// page.
type CompletionResult struct {
	StorybookID      string              `json:"storybook_id"`
	NextStep         string              `json:"next_step"` // "chat", "storybook", "at_bat", "decide_steal", "ending", "end"
	NextStorybookID  string              `json:"next_storybook_id,omitempty"`
	Ending           *state.EndingResult `json:"ending,omitempty"`
	AlreadyCompleted bool                `json:"already_completed"`
}

// Manager drives the season state machine: month advancement, goal
// checks, storybook sequencing, and the final ending draw.
type Manager struct {
	cfg         *Config
	strictGoals bool
	logger      *slog.Logger

	rngMu         sync.Mutex
	rng           *rand.Rand
	specialChance float64
}

// NewManager builds a season manager. With strictGoals set, month
// advancement is refused until every goal of the current month is met;
// the default lets the player advance regardless. A nil rng gets a
// time-seeded source; tests pass a seeded one to pin the ending draw.
// The rng must not be shared with other components.
func NewManager(cfg *Config, strictGoals bool, rng *rand.Rand, logger *slog.Logger) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		cfg:           cfg,
		strictGoals:   strictGoals,
		logger:        logger,
		rng:           rng,
		specialChance: 0.05,
	}
}

// Get exposes storybook lookup to handlers.
func (m *Manager) Get(id string) (*Storybook, error) {
	return m.cfg.Get(id)
}

// Current returns the storybook the session is parked on, or nil when the
// session is in chat mode.
func (m *Manager) Current(gs *state.GameState) (*Storybook, error) {
	if gs.CurrentPhase != state.PhaseStorybook || gs.CurrentStorybookID == "" {
		return nil, nil
	}
	return m.cfg.Get(gs.CurrentStorybookID)
}

// CheckGoals grades the trainee against the current month's goals. The
// final month has no goals and always reports all-met.
func (m *Manager) CheckGoals(gs *state.GameState) GoalReport {
	report := GoalReport{Month: gs.CurrentMonth, AllMet: true}
	if gs.CurrentMonth >= state.FinalMonth {
		return report
	}
	for _, g := range m.cfg.GoalsForMonth(gs.CurrentMonth) {
		current := gs.Stats.Get(g.Stat)
		achieved := current >= g.Threshold
		if !achieved {
			report.AllMet = false
		}
		report.Goals = append(report.Goals, GoalStatus{
			Stat:     g.Stat,
			Required: g.Threshold,
			Current:  current,
			Achieved: achieved,
		})
	}
	return report
}

// AdvanceMonth moves the season forward one month: snapshot stats for
// before/after display, recover stamina, reset the training counter and
// park the session on the transition storybook.
func (m *Manager) AdvanceMonth(gs *state.GameState) (*AdvanceResult, error) {
	if gs.CurrentMonth >= state.FinalMonth {
		return nil, ErrSeasonOver
	}
	if m.strictGoals {
		if report := m.CheckGoals(gs); !report.AllMet {
			return nil, state.Reject(fmt.Sprintf("month %d goals not met yet", gs.CurrentMonth))
		}
	}

	gs.SavePreviousMonthStats()
	prev := gs.CurrentMonth
	gs.CurrentMonth++
	gs.CurrentDay = 1
	gs.TrainingCountThisMonth = 0

	recovered := staminaRecovery[gs.CurrentMonth]
	gs.Stats.ApplyChanges(map[string]int{"stamina": recovered})

	gs.ConsumeEvent(fmt.Sprintf("month_%d_started", gs.CurrentMonth))

	sbID := fmt.Sprintf("%d_to_%d_transition", prev, gs.CurrentMonth)
	if _, err := m.cfg.Get(sbID); err != nil {
		// A missing transition is a data bug, not a client mistake; do
		// not propagate the lookup sentinel.
		return nil, fmt.Errorf("month transition has no storybook %q", sbID)
	}
	gs.SetStorybookMode(sbID)

	m.logger.Info("month advanced",
		"session_id", gs.SessionID,
		"month", gs.CurrentMonth,
		"stamina_recovered", recovered)

	return &AdvanceResult{
		PreviousMonth:    prev,
		NewMonth:         gs.CurrentMonth,
		StaminaRecovered: recovered,
		StorybookID:      sbID,
		Goals:            m.cfg.GoalsForMonth(gs.CurrentMonth),
		Guide:            GuideForMonth(gs.CurrentMonth),
		PreviousStats:    *gs.PreviousMonthStats,
		CurrentStats:     gs.Stats.Snapshot(),
	}, nil
}

// CompleteStorybook records that the client showed a storybook's last
// page and returns the next step. Completing the same storybook twice is
// harmless; the result is recomputed, side effects do not repeat.
func (m *Manager) CompleteStorybook(gs *state.GameState, id string) (*CompletionResult, error) {
	sb, err := m.cfg.Get(id)
	if err != nil {
		return nil, err
	}

	res := &CompletionResult{
		StorybookID:      id,
		AlreadyCompleted: gs.StorybookCompleted[id],
	}
	gs.MarkStorybookCompleted(id)

	switch sb.CompletionAction {
	case ActionStartChat:
		gs.SetChatMode()
		res.NextStep = "chat"
	case ActionShowNextStorybook:
		gs.SetStorybookMode(sb.NextStorybookID)
		res.NextStep = "storybook"
		res.NextStorybookID = sb.NextStorybookID
	case ActionStartAtBat:
		gs.SetChatMode()
		gs.NextAction = state.ActionAwaitAtBat
		res.NextStep = "at_bat"
	case ActionDetermineEnding:
		ending, err := m.DetermineEnding(gs)
		if err != nil {
			return nil, err
		}
		gs.SetChatMode()
		res.NextStep = "ending"
		res.Ending = ending
	case ActionGameEnd:
		gs.SetChatMode()
		res.NextStep = "end"
	}

	// A pending steal decision outranks the scripted flow: the runner is
	// standing on first and the player has to call it.
	if gs.NextAction == state.ActionAwaitStealDecision {
		res.NextStep = "decide_steal"
	}
	return res, nil
}

// DetermineEnding grades the season and stores the result on the state,
// so repeated queries return the same ending. Only callable in the final
// month.
func (m *Manager) DetermineEnding(gs *state.GameState) (*state.EndingResult, error) {
	if gs.CurrentMonth < state.FinalMonth {
		return nil, fmt.Errorf("%w: ending requested in month %d", ErrSeasonRunning, gs.CurrentMonth)
	}
	if gs.Ending != nil {
		return gs.Ending, nil
	}

	outcome := gs.Flags.TournamentResult
	if outcome == state.ResultNone {
		// Never played the tournament at-bat; scouts saw nothing.
		outcome = state.ResultStrikeout
	}

	total := gs.Stats.DraftTotal()
	var tier string
	switch {
	case total >= 320:
		tier = "S"
	case total >= 240:
		tier = "A"
	case total >= 150:
		tier = "B"
	default:
		tier = "C"
	}

	key := tier + "_" + string(outcome)
	special := false
	if tier == "S" && outcome == state.ResultHomerun && m.roll() < m.specialChance {
		key = "legend"
		special = true
	}

	display, ok := m.cfg.Endings[key]
	if !ok {
		return nil, fmt.Errorf("ending matrix missing cell %q", key)
	}

	gs.Ending = &state.EndingResult{
		ID:       key,
		Tier:     tier,
		Outcome:  outcome,
		Special:  special,
		Title:    display.Title,
		Subtitle: display.Subtitle,
	}
	m.logger.Info("season ending determined",
		"session_id", gs.SessionID,
		"ending", key,
		"draft_total", total)
	return gs.Ending, nil
}

func (m *Manager) roll() float64 {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.Float64()
}
