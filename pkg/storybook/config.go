package storybook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnknownStorybook is wrapped by lookups for ids the config does not
// define. Handlers translate it to a not-found response.
var ErrUnknownStorybook = errors.New("unknown storybook")

// Completion actions a storybook can declare. The engine interprets them
// when the client reports the last page was shown.
const (
	ActionStartChat         = "start_chat_mode"
	ActionShowNextStorybook = "show_next_storybook"
	ActionStartAtBat        = "start_at_bat"
	ActionDetermineEnding   = "determine_ending"
	ActionGameEnd           = "game_end"
)

// Page is one screen of a scripted sequence.
type Page struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
}

// Storybook is a scripted narrative sequence shown between chat phases.
type Storybook struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Pages            []Page `json:"pages"`
	CompletionAction string `json:"completion_action"`
	NextStorybookID  string `json:"next_storybook_id,omitempty"`
}

// MonthGoal is one stat threshold the trainee should reach before the
// month ends.
type MonthGoal struct {
	Stat      string `json:"stat"`
	Threshold int    `json:"threshold"`
}

// Ending is the display payload for one cell of the ending matrix, keyed
// "<tier>_<outcome>" plus the "legend" special.
type Ending struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Config is the full narrative data file, loaded once at startup.
type Config struct {
	Storybooks map[string]*Storybook  `json:"storybooks"`
	MonthGoals map[string][]MonthGoal `json:"month_goals"`
	Endings    map[string]Ending      `json:"endings"`
}

// LoadConfig reads storybooks.json from dir and validates the references
// inside it. A config that chains to a missing storybook or lacks an
// ending cell fails at startup, not mid-season.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, "storybooks.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storybook config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse storybook config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid storybook config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Storybooks) == 0 {
		return fmt.Errorf("no storybooks defined")
	}
	for id, sb := range c.Storybooks {
		if sb.ID != id {
			return fmt.Errorf("storybook %q declares mismatched id %q", id, sb.ID)
		}
		if len(sb.Pages) == 0 {
			return fmt.Errorf("storybook %q has no pages", id)
		}
		switch sb.CompletionAction {
		case ActionStartChat, ActionStartAtBat, ActionDetermineEnding, ActionGameEnd:
		case ActionShowNextStorybook:
			if _, ok := c.Storybooks[sb.NextStorybookID]; !ok {
				return fmt.Errorf("storybook %q chains to unknown storybook %q", id, sb.NextStorybookID)
			}
		default:
			return fmt.Errorf("storybook %q has unknown completion action %q", id, sb.CompletionAction)
		}
	}
	for _, tier := range []string{"S", "A", "B", "C"} {
		for _, outcome := range []string{"strikeout", "hit", "hit_steal", "homerun"} {
			key := tier + "_" + outcome
			if _, ok := c.Endings[key]; !ok {
				return fmt.Errorf("ending matrix missing cell %q", key)
			}
		}
	}
	if _, ok := c.Endings["legend"]; !ok {
		return fmt.Errorf("ending matrix missing special cell %q", "legend")
	}
	return nil
}

// Get returns the storybook for id. Unknown ids are an error; the caller
// decides whether that is a client mistake or a data bug.
func (c *Config) Get(id string) (*Storybook, error) {
	sb, ok := c.Storybooks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStorybook, id)
	}
	return sb, nil
}

// GoalsForMonth returns the stat goals for a month, nil when the month has
// none.
func (c *Config) GoalsForMonth(month int) []MonthGoal {
	return c.MonthGoals[fmt.Sprintf("%d", month)]
}
