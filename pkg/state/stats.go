package state

// PlayerStats are the trainee's bounded attributes. Every field stays in
// [0,100] after any mutation; out-of-range deltas are clamped, never
// rejected.
type PlayerStats struct {
	Intimacy int `json:"intimacy"` // relationship with the coach
	Mental   int `json:"mental"`
	Stamina  int `json:"stamina"`
	Batting  int `json:"batting"`
	Speed    int `json:"speed"` // baserunning
	Defense  int `json:"defense"`
}

// NewPlayerStats returns the season-start attribute block. The trainee
// starts as a stranger with rough technical fundamentals.
func NewPlayerStats() PlayerStats {
	return PlayerStats{
		Intimacy: 0,
		Mental:   50,
		Stamina:  50,
		Batting:  30,
		Speed:    40,
		Defense:  35,
	}
}

func (ps *PlayerStats) field(name string) *int {
	switch name {
	case "intimacy":
		return &ps.Intimacy
	case "mental":
		return &ps.Mental
	case "stamina":
		return &ps.Stamina
	case "batting":
		return &ps.Batting
	case "speed":
		return &ps.Speed
	case "defense":
		return &ps.Defense
	default:
		return nil
	}
}

// ApplyChanges applies a named-delta map to the stat block. Unknown keys
// are ignored silently and every result is clamped to [0,100]. An empty
// or nil map is a no-op.
func (ps *PlayerStats) ApplyChanges(changes map[string]int) {
	for name, delta := range changes {
		if f := ps.field(name); f != nil {
			*f = clamp(*f+delta, 0, 100)
		}
	}
}

// Get returns the named stat, or 0 for unknown names.
func (ps *PlayerStats) Get(name string) int {
	if f := ps.field(name); f != nil {
		return *f
	}
	return 0
}

// Snapshot returns an immutable copy for comparison and display.
func (ps PlayerStats) Snapshot() PlayerStats {
	return ps
}

// TechTotal is the combined technical score used for milestone cards.
func (ps PlayerStats) TechTotal() int {
	return ps.Batting + ps.Speed + ps.Defense
}

// DraftTotal is the combined score scouts grade at the draft. Intimacy and
// mental are excluded; scouts never see them.
func (ps PlayerStats) DraftTotal() int {
	return ps.Batting + ps.Speed + ps.Defense + ps.Stamina
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
