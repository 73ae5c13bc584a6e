package storybook

import "github.com/jwebster45206/draft-season/pkg/state"

// MonthGuide is the coaching brief shown when a month begins.
type MonthGuide struct {
	Month   int      `json:"month"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Goals   []string `json:"goals,omitempty"`
	Hints   []string `json:"hints,omitempty"`
}

var monthGuides = map[int]*MonthGuide{
	3: {
		Month:   3,
		Title:   "March: First Meeting",
		Message: "The season starts with a stranger who barely looks at you. Earn enough trust to talk baseball at all, and make sure he has the stamina to survive what comes next.",
		Goals:   []string{"Build a little trust", "Keep his stamina up"},
		Hints: []string{
			"He answers short questions better than long speeches.",
			"Recovery sessions restore stamina without burning trust.",
		},
	},
	4: {
		Month:   4,
		Title:   "April: Training Begins",
		Message: "Practice fields open this month. Real training sessions are available now, but his mind is as raw as his swing. Balance drills with conversation.",
		Goals:   []string{"Keep building the relationship", "Steady his mental game"},
		Hints: []string{
			"Training intensity matters: light work is safe, heavy work costs stamina.",
			"Spreading focus across too many skills dilutes the gains.",
		},
	},
	5: {
		Month:   5,
		Title:   "May: Something Under the Surface",
		Message: "He has been flinching at something all spring. No training fields this month, only matches and talk. If you push the right way, you might learn why he freezes on the basepaths.",
		Goals:   []string{"Recover stamina for summer", "Harden his mental game", "Get close enough for him to open up"},
		Hints: []string{
			"Ask about his past when the moment feels right.",
			"What he tells you this month changes what he can do in August.",
		},
	},
	6: {
		Month:   6,
		Title:   "June: Building the Tools",
		Message: "Summer training blocks are open again. Scouts start watching regional games now, so the technical numbers begin to matter.",
		Goals:   []string{"Sharpen his batting", "Work on his speed", "Keep the bond growing"},
		Hints: []string{
			"Focused sessions on one or two skills beat scattershot drills.",
			"Watch the stamina floor: an exhausted player cannot train at all.",
		},
	},
	7: {
		Month:   7,
		Title:   "July: The Grind",
		Message: "The last full training month before the tournament. Everything you bank now is what he carries onto the field in August.",
		Goals:   []string{"Push stamina to tournament level", "Keep his head right", "Round out the bat"},
		Hints: []string{
			"High-intensity work pays the most but drains the most.",
			"Only a few sessions fit this month. Choose them deliberately.",
		},
	},
	8: {
		Month:   8,
		Title:   "August: The Tournament",
		Message: "No more drills. The summer tournament decides what the scouts write down. When his at-bat comes, the advice you give from the dugout decides everything.",
		Goals:   []string{"Arrive with every skill ready", "Trust each other completely"},
		Hints: []string{
			"Your words in the at-bat are judged on tone, concreteness, and trust.",
			"If he reaches base, a steal call is yours to make.",
		},
	},
	9: {
		Month:   9,
		Title:   "September: The Draft",
		Message: "The season is over. Whatever the two of you built is on the table now, and the scouts have seen everything they need.",
	},
}

// GuideForMonth returns the coaching brief for a month, nil for months
// outside the season.
func GuideForMonth(month int) *MonthGuide {
	return monthGuides[month]
}

// HintsFor combines the month's hints with relationship advice keyed to
// the current intimacy band.
func HintsFor(gs *state.GameState) []string {
	var hints []string
	if g := monthGuides[gs.CurrentMonth]; g != nil {
		hints = append(hints, g.Hints...)
	}
	switch i := gs.Stats.Intimacy; {
	case i < 30:
		hints = append(hints, "He still does not trust you. Small, consistent kindness beats grand gestures.")
	case i < 60:
		hints = append(hints, "He is starting to listen. Honest feedback lands better than flattery now.")
	case i < 90:
		hints = append(hints, "The bond is strong. He can handle hard truths from you.")
	default:
		hints = append(hints, "He would run through a wall for you. Do not waste that.")
	}
	return hints
}
