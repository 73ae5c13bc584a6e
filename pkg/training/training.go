package training

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jwebster45206/draft-season/pkg/state"
)

// Tier names, derived from the requested intensity.
const (
	TierRecovery      = "recovery"
	TierLight         = "light"
	TierStandard      = "standard"
	TierFocused       = "focused"
	TierHighIntensity = "high_intensity"
)

// MinTrainingStamina is the floor below which only recovery sessions are
// allowed.
const MinTrainingStamina = 20

// Months with open practice fields. May and August belong to matches and
// the tournament; March is too early.
var trainableMonths = map[int]bool{4: true, 6: true, 7: true}

// Sessions allowed per month. The schedule tightens as the season
// progresses.
var monthlyCaps = map[int]int{
	3: 5, 4: 5, 5: 5,
	6: 4, 7: 4,
	8: 3, 9: 3,
}

var focusableStats = map[string]bool{"batting": true, "speed": true, "defense": true}

type tier struct {
	name    string
	gain    int // per-focus stat gain before adjustments
	stamina int // stamina delta, positive for recovery tiers
}

func tierFor(intensity int) tier {
	switch {
	case intensity <= 20:
		return tier{TierRecovery, 0, 10}
	case intensity <= 40:
		return tier{TierLight, 2, 4}
	case intensity <= 70:
		return tier{TierStandard, 4, -6}
	case intensity <= 85:
		return tier{TierFocused, 6, -12}
	default:
		return tier{TierHighIntensity, 8, -20}
	}
}

// Outcome describes one executed training session.
type Outcome struct {
	Intensity        int               `json:"intensity"`
	Tier             string            `json:"tier"`
	Focuses          []string          `json:"focuses"`
	StatChanges      map[string]int    `json:"stat_changes,omitempty"`
	StaminaChange    int               `json:"stamina_change"`
	Summary          string            `json:"summary"`
	ConversationNote string            `json:"conversation_note"`
	SessionsUsed     int               `json:"sessions_used"`
	SessionsAllowed  int               `json:"sessions_allowed"`
	Stats            state.PlayerStats `json:"stats"`
}

// Manager executes training sessions against a game state.
type Manager struct {
	logger *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{logger: logger}
}

// Execute runs one training session, mutating the state: stat gains,
// stamina cost, session counter, and the bounded training log. Rule
// violations come back as *state.Rejection and leave the state untouched.
func (m *Manager) Execute(gs *state.GameState, intensity int, focuses []string) (*Outcome, error) {
	if !trainableMonths[gs.CurrentMonth] {
		return nil, state.Reject(fmt.Sprintf("no training in month %d: the practice fields are closed", gs.CurrentMonth))
	}
	limit := monthlyCaps[gs.CurrentMonth]
	if gs.TrainingCountThisMonth >= limit {
		return nil, state.Reject(fmt.Sprintf("monthly training limit reached (%d sessions)", limit))
	}
	if intensity < 1 || intensity > 100 {
		return nil, state.Reject(fmt.Sprintf("intensity %d out of range [1,100]", intensity))
	}

	fs, err := normalizeFocuses(focuses)
	if err != nil {
		return nil, err
	}

	t := tierFor(intensity)
	if t.name != TierRecovery && gs.Stats.Stamina < MinTrainingStamina {
		return nil, state.Reject(fmt.Sprintf("too exhausted to train (stamina %d, need %d); schedule a recovery session", gs.Stats.Stamina, MinTrainingStamina))
	}

	changes := make(map[string]int)
	if t.gain > 0 {
		gain := t.gain
		// Split attention dilutes each drill.
		if len(fs) > 1 {
			gain--
		}
		if len(fs) > 2 {
			gain--
		}
		if gain < 1 {
			gain = 1
		}
		// Full commitment to a single skill earns a bonus.
		if intensity >= 90 && len(fs) == 1 {
			gain++
		}
		for _, f := range fs {
			changes[f] = gain
		}
	}

	gs.Stats.ApplyChanges(changes)
	gs.Stats.ApplyChanges(map[string]int{"stamina": t.stamina})
	gs.TrainingCountThisMonth++

	out := &Outcome{
		Intensity:       intensity,
		Tier:            t.name,
		Focuses:         fs,
		StatChanges:     changes,
		StaminaChange:   t.stamina,
		SessionsUsed:    gs.TrainingCountThisMonth,
		SessionsAllowed: limit,
		Stats:           gs.Stats.Snapshot(),
	}
	out.Summary = summarize(t, changes, fs)
	out.ConversationNote = conversationNote(t, fs)

	gs.RecordTrainingSession(state.TrainingRecord{
		Month:         gs.CurrentMonth,
		Intensity:     intensity,
		Tier:          t.name,
		Focuses:       fs,
		StatChanges:   changes,
		StaminaChange: t.stamina,
		Summary:       out.Summary,
	})

	m.logger.Info("training executed",
		"session_id", gs.SessionID,
		"month", gs.CurrentMonth,
		"tier", t.name,
		"focuses", strings.Join(fs, ","),
		"sessions_used", out.SessionsUsed)
	return out, nil
}

// normalizeFocuses lowercases, dedupes and validates the focus list. An
// empty list means a balanced session across all three technical skills.
func normalizeFocuses(focuses []string) ([]string, error) {
	if len(focuses) == 0 {
		return []string{"batting", "speed", "defense"}, nil
	}
	seen := make(map[string]bool)
	var fs []string
	for _, f := range focuses {
		f = strings.ToLower(strings.TrimSpace(f))
		if !focusableStats[f] {
			return nil, state.Reject(fmt.Sprintf("unknown training focus %q", f))
		}
		if !seen[f] {
			seen[f] = true
			fs = append(fs, f)
		}
	}
	sort.Strings(fs)
	return fs, nil
}

func summarize(t tier, changes map[string]int, fs []string) string {
	if t.name == TierRecovery {
		return fmt.Sprintf("recovery session: stamina %+d", t.stamina)
	}
	parts := make([]string, 0, len(fs))
	for _, f := range fs {
		parts = append(parts, fmt.Sprintf("%s %+d", f, changes[f]))
	}
	return fmt.Sprintf("%s session: %s (stamina %+d)", t.name, strings.Join(parts, ", "), t.stamina)
}

func conversationNote(t tier, fs []string) string {
	switch t.name {
	case TierRecovery:
		return "The player just finished a light recovery day and is feeling rested."
	case TierHighIntensity:
		return fmt.Sprintf("The player just finished a brutal session on %s and is completely drained but proud.", strings.Join(fs, " and "))
	default:
		return fmt.Sprintf("The player just finished a %s practice session working on %s.", t.name, strings.Join(fs, " and "))
	}
}
