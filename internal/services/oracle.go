package services

import (
	"context"

	"github.com/jwebster45206/draft-season/pkg/minigame"
	"github.com/jwebster45206/draft-season/pkg/state"
)

// EventConfidenceThreshold is the minimum judge confidence for a narrative
// event to fire. Below it the event stays untriggered.
const EventConfidenceThreshold = 0.7

// ReplyResult is the trainee's in-character response to the coach. Hint
// is an optional out-of-character nudge the model attaches when the
// coach seems stuck; the chat handler passes it through to the client.
type ReplyResult struct {
	Text string `json:"text"`
	Hint string `json:"hint,omitempty"`
}

// StatDelta is the classifier's read on how a conversation moved the
// trainee's stats. Changes may be empty when nothing noteworthy happened.
type StatDelta struct {
	Changes map[string]int `json:"changes,omitempty"`
	Reason  string         `json:"reason"`
}

// EventJudgment is the judge's verdict on whether a scripted narrative
// event was triggered by the player's message.
type EventJudgment struct {
	Triggered  bool    `json:"triggered"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// Accepted reports whether the judgment clears the confidence bar.
func (j EventJudgment) Accepted() bool {
	return j.Triggered && j.Confidence >= EventConfidenceThreshold
}

// EventDefinition describes a one-shot narrative event the judge watches
// for during chat.
type EventDefinition struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	Conditions     string   `json:"conditions"`
	TriggerMessage string   `json:"trigger_message"`
	Hints          []string `json:"hints,omitempty"`
}

// Oracle is the language-model surface of the game. Every call is
// stateless; callers pass a detached snapshot, never the live state.
type Oracle interface {
	minigame.AdviceScorer

	// Reply generates the trainee's in-character chat response.
	Reply(ctx context.Context, gs *state.GameState, userMessage string) (*ReplyResult, error)

	// ClassifyStatDelta reads a finished exchange and proposes stat
	// changes.
	ClassifyStatDelta(ctx context.Context, gs *state.GameState, userMessage, reply string) (*StatDelta, error)

	// JudgeEvent decides whether the player's message triggers a
	// narrative event.
	JudgeEvent(ctx context.Context, gs *state.GameState, def EventDefinition, userMessage string) (*EventJudgment, error)
}
