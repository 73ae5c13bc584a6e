package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jwebster45206/draft-season/pkg/minigame"
	"github.com/jwebster45206/draft-season/pkg/state"
)

// OpenAIOracle implements Oracle against the OpenAI chat completion API.
type OpenAIOracle struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

var _ Oracle = (*OpenAIOracle)(nil)

// NewOpenAIOracle creates an oracle using the given API key and model.
func NewOpenAIOracle(apiKey, model string, logger *slog.Logger) *OpenAIOracle {
	return &OpenAIOracle{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// chat sends one system+user exchange and returns the raw completion text.
func (o *OpenAIOracle) chat(ctx context.Context, system, user string, temperature float32) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// extractJSON pulls the first JSON object out of a completion that may be
// wrapped in prose or a markdown fence.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

const personaPrompt = `You are role-playing a 17-year-old high school baseball player, a gifted but guarded outfielder one season away from the pro draft. The user is your personal coach.

Character rules:
- Stay in character at all times. Never mention being an AI or a game.
- Speak in short, natural lines, like a teenager, not an essay.
- Your attitude toward the coach depends on the relationship level given below. Follow it exactly.
- You love baseball more than you admit. It slips out when you talk technique.`

func (o *OpenAIOracle) replyPrompt(gs *state.GameState) string {
	var b strings.Builder
	b.WriteString(personaPrompt)
	b.WriteString("\n\nCurrent situation: ")
	b.WriteString(gs.GameInfo())
	b.WriteString("\nStats: ")
	b.WriteString(gs.StatSummary())
	b.WriteString("\nRelationship with the coach: ")
	b.WriteString(gs.IntimacyLevel())
	b.WriteString("\nHow to behave: ")
	b.WriteString(gs.BehaviorGuide())
	if gs.Flags.BackstoryRevealed {
		b.WriteString("\nThe coach knows about the injury from last summer. You can reference it.")
	}
	if n := len(gs.TrainingHistory); n > 0 {
		last := gs.TrainingHistory[n-1]
		b.WriteString("\nMost recent training: ")
		b.WriteString(last.Summary)
	}
	b.WriteString(replyFormatPrompt)
	return b.String()
}

const replyFormatPrompt = `

Respond with ONLY a JSON object, no prose:
{"text": "your in-character line", "hint": "one short out-of-character tip for the coach if they seem stuck, otherwise empty"}`

func (o *OpenAIOracle) Reply(ctx context.Context, gs *state.GameState, userMessage string) (*ReplyResult, error) {
	text, err := o.chat(ctx, o.replyPrompt(gs), userMessage, 0.8)
	if err != nil {
		return nil, err
	}

	var result ReplyResult
	if err := json.Unmarshal([]byte(extractJSON(text)), &result); err == nil && result.Text != "" {
		result.Text = strings.TrimSpace(result.Text)
		return &result, nil
	}
	// A model that ignored the format still answered in character.
	return &ReplyResult{Text: strings.TrimSpace(text)}, nil
}

const statClassifierPrompt = `You grade one exchange between a baseball coach and their trainee and decide how it moved the trainee's attributes.

Attributes: intimacy, mental, stamina, batting, speed, defense.
Rules:
- Most exchanges move nothing, or intimacy by 1-3.
- Mental moves only on encouragement, pressure, or emotional moments.
- Technical stats (batting, speed, defense) move only when concrete technique was discussed.
- Keep every change in [-5, 5].

Respond with ONLY a JSON object, no prose:
{"changes": {"intimacy": 2}, "reason": "one short sentence"}`

// ClassifyStatDelta never fails: a broken classification becomes an empty
// delta, because blocking the chat over a grading hiccup is worse than
// missing a point of intimacy.
func (o *OpenAIOracle) ClassifyStatDelta(ctx context.Context, gs *state.GameState, userMessage, reply string) (*StatDelta, error) {
	failed := &StatDelta{Reason: "analysis failed"}

	user := fmt.Sprintf("Current stats: %s\n\nCoach: %s\nTrainee: %s", gs.StatSummary(), userMessage, reply)
	text, err := o.chat(ctx, statClassifierPrompt, user, 0)
	if err != nil {
		o.logger.Warn("stat classification failed", "error", err)
		return failed, nil
	}

	var delta StatDelta
	if err := json.Unmarshal([]byte(extractJSON(text)), &delta); err != nil {
		o.logger.Warn("stat classification returned malformed JSON", "error", err, "text", text)
		return failed, nil
	}
	return &delta, nil
}

const eventJudgePrompt = `You decide whether a scripted story event has been triggered by the coach's latest message.

Event: %s
Trigger conditions: %s

Respond with ONLY a JSON object, no prose:
{"triggered": true, "reason": "one short sentence", "confidence": 0.0-1.0}`

func (o *OpenAIOracle) JudgeEvent(ctx context.Context, gs *state.GameState, def EventDefinition, userMessage string) (*EventJudgment, error) {
	system := fmt.Sprintf(eventJudgePrompt, def.Name, def.Conditions)
	text, err := o.chat(ctx, system, "Coach's message: "+userMessage, 0)
	if err != nil {
		return nil, err
	}

	var j EventJudgment
	if err := json.Unmarshal([]byte(extractJSON(text)), &j); err != nil {
		return nil, fmt.Errorf("event judge returned malformed JSON: %w", err)
	}
	return &j, nil
}

const adviceScorerPrompt = `You grade the advice a baseball coach shouts to their player who is stepping up to the plate in the deciding at-bat of a tournament.

Grade three axes, each an integer from 1 (bad) to 3 (excellent):
- tone: is the advice calm and confidence-building, or panicked and harsh?
- concreteness: does it contain actionable technique, or empty noise?
- trust: does it show the coach knows this player personally?

Respond with ONLY a JSON object, no prose:
{"tone": 2, "concreteness": 3, "trust": 1}`

func (o *OpenAIOracle) ScoreAdvice(ctx context.Context, advice string) (minigame.AdviceScores, error) {
	text, err := o.chat(ctx, adviceScorerPrompt, "Advice: "+advice, 0)
	if err != nil {
		return minigame.AdviceScores{}, err
	}

	var scores minigame.AdviceScores
	if err := json.Unmarshal([]byte(extractJSON(text)), &scores); err != nil {
		return minigame.AdviceScores{}, fmt.Errorf("advice scorer returned malformed JSON: %w", err)
	}
	return scores, nil
}
