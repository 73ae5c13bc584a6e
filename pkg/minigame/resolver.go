package minigame

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/jwebster45206/draft-season/pkg/state"
)

// AdviceScores grades the coach's dugout advice on three axes, each 1-3.
type AdviceScores struct {
	Tone         int `json:"tone"`
	Concreteness int `json:"concreteness"`
	Trust        int `json:"trust"`
}

// Total sums the three axes, each clamped to [1,3].
func (s AdviceScores) Total() int {
	return clampScore(s.Tone) + clampScore(s.Concreteness) + clampScore(s.Trust)
}

func clampScore(v int) int {
	if v < 1 {
		return 1
	}
	if v > 3 {
		return 3
	}
	return v
}

// AdviceScorer grades free-text advice. The production implementation
// calls the language model.
type AdviceScorer interface {
	ScoreAdvice(ctx context.Context, advice string) (AdviceScores, error)
}

// homerunCap bounds the homerun chance no matter how good the advice and
// the legs are.
const homerunCap = 40

// AtBatProbabilities is the computed outcome distribution, in percent.
// The three fields always sum to 100.
type AtBatProbabilities struct {
	Homerun   int `json:"homerun"`
	Hit       int `json:"hit"`
	Strikeout int `json:"strikeout"`
}

// AtBatDetail exposes the full calculation for the result screen. Nil
// when the scorer failed and the at-bat fell back to a strikeout.
type AtBatDetail struct {
	Scores        AdviceScores       `json:"scores"`
	TotalScore    int                `json:"total_score"`
	MentalCoeff   float64            `json:"mental_coeff"`
	PhysicalCoeff float64            `json:"physical_coeff"`
	Probabilities AtBatProbabilities `json:"probabilities"`
}

// StealDetail exposes the steal calculation, in percent.
type StealDetail struct {
	BaseProb       float64 `json:"base_prob"`
	FinalProb      float64 `json:"final_prob"`
	PhobiaOvercome bool    `json:"phobia_overcome"`
}

// Resolver runs the probabilistic tournament plays. It never mutates game
// state; callers apply the outcome under the session lock.
type Resolver struct {
	scorer AdviceScorer
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewResolver builds a resolver. A nil rng gets a time-seeded source;
// tests pass a seeded one to pin the draws. The rng must not be shared
// with other components.
func NewResolver(scorer AdviceScorer, rng *rand.Rand, logger *slog.Logger) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Resolver{
		scorer: scorer,
		logger: logger,
		rng:    rng,
	}
}

// ResolveAtBat grades the advice, computes the outcome distribution from
// the advice quality and the trainee's stamina, and draws one outcome.
// A scorer failure degrades to a strikeout with no detail; the at-bat is
// never replayable, so the error is absorbed here.
func (r *Resolver) ResolveAtBat(ctx context.Context, stats state.PlayerStats, advice string) (state.TournamentResult, *AtBatDetail) {
	scores, err := r.scorer.ScoreAdvice(ctx, advice)
	if err != nil {
		r.logger.Warn("advice scoring failed, at-bat falls to strikeout", "error", err)
		return state.ResultStrikeout, nil
	}

	total := scores.Total()
	var mental float64
	switch {
	case total <= 3:
		mental = 0.6
	case total <= 6:
		mental = 1.0
	default:
		mental = 1.4
	}

	var physical float64
	switch {
	case stats.Stamina <= 40:
		physical = 0.7
	case stats.Stamina <= 70:
		physical = 1.0
	default:
		physical = 1.3
	}

	hr := int(math.Round(10 * mental * physical))
	if hr > homerunCap {
		hr = homerunCap
	}
	hit := int(math.Round(30 * mental * physical))
	if hr+hit >= 99 {
		hit = 99 - hr
	}

	probs := AtBatProbabilities{
		Homerun:   hr,
		Hit:       hit,
		Strikeout: 100 - hr - hit,
	}
	detail := &AtBatDetail{
		Scores:        scores,
		TotalScore:    total,
		MentalCoeff:   mental,
		PhysicalCoeff: physical,
		Probabilities: probs,
	}

	roll := r.roll100()
	var outcome state.TournamentResult
	switch {
	case roll < probs.Homerun:
		outcome = state.ResultHomerun
	case roll < probs.Homerun+probs.Hit:
		outcome = state.ResultHit
	default:
		outcome = state.ResultStrikeout
	}

	r.logger.Info("at-bat resolved",
		"outcome", outcome,
		"total_score", total,
		"homerun_pct", probs.Homerun,
		"hit_pct", probs.Hit)
	return outcome, detail
}

// ResolveSteal draws the steal attempt. The success chance is built from
// speed, mental, and the relationship, then shifted by whether the
// trainee's fear of the basepaths was faced back in May.
func (r *Resolver) ResolveSteal(stats state.PlayerStats, phobiaOvercome bool) (bool, *StealDetail) {
	base := (float64(stats.Speed)*1.5 + float64(stats.Mental) + float64(stats.Intimacy)/5) / 3

	final := base
	if phobiaOvercome {
		final += 20
		if final > 95 {
			final = 95
		}
	} else {
		final -= 15
		if final < 5 {
			final = 5
		}
	}

	success := r.rollFloat()*100 < final
	detail := &StealDetail{
		BaseProb:       base,
		FinalProb:      final,
		PhobiaOvercome: phobiaOvercome,
	}
	r.logger.Info("steal resolved", "success", success, "final_prob", final)
	return success, detail
}

func (r *Resolver) roll100() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(100)
}

func (r *Resolver) rollFloat() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
