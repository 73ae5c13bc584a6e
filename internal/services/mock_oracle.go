package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/draft-season/pkg/minigame"
	"github.com/jwebster45206/draft-season/pkg/state"
)

// MockOracle is a mock implementation of Oracle for testing. Each method
// has an override func field; without one, a benign default is returned.
type MockOracle struct {
	ReplyFunc       func(ctx context.Context, gs *state.GameState, userMessage string) (*ReplyResult, error)
	ClassifyFunc    func(ctx context.Context, gs *state.GameState, userMessage, reply string) (*StatDelta, error)
	JudgeEventFunc  func(ctx context.Context, gs *state.GameState, def EventDefinition, userMessage string) (*EventJudgment, error)
	ScoreAdviceFunc func(ctx context.Context, advice string) (minigame.AdviceScores, error)

	// Track calls for testing
	ReplyCalls       []string
	ClassifyCalls    []string
	JudgeEventCalls  []string
	ScoreAdviceCalls []string

	mu sync.Mutex
}

var _ Oracle = (*MockOracle)(nil)

func NewMockOracle() *MockOracle {
	return &MockOracle{}
}

func (m *MockOracle) Reply(ctx context.Context, gs *state.GameState, userMessage string) (*ReplyResult, error) {
	m.mu.Lock()
	m.ReplyCalls = append(m.ReplyCalls, userMessage)
	m.mu.Unlock()

	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, gs, userMessage)
	}
	return &ReplyResult{Text: "Mock reply"}, nil
}

func (m *MockOracle) ClassifyStatDelta(ctx context.Context, gs *state.GameState, userMessage, reply string) (*StatDelta, error) {
	m.mu.Lock()
	m.ClassifyCalls = append(m.ClassifyCalls, userMessage)
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, gs, userMessage, reply)
	}
	return &StatDelta{Reason: "nothing noteworthy"}, nil
}

func (m *MockOracle) JudgeEvent(ctx context.Context, gs *state.GameState, def EventDefinition, userMessage string) (*EventJudgment, error) {
	m.mu.Lock()
	m.JudgeEventCalls = append(m.JudgeEventCalls, def.Key)
	m.mu.Unlock()

	if m.JudgeEventFunc != nil {
		return m.JudgeEventFunc(ctx, gs, def, userMessage)
	}
	return &EventJudgment{Triggered: false, Reason: "not triggered", Confidence: 0.9}, nil
}

func (m *MockOracle) ScoreAdvice(ctx context.Context, advice string) (minigame.AdviceScores, error) {
	m.mu.Lock()
	m.ScoreAdviceCalls = append(m.ScoreAdviceCalls, advice)
	m.mu.Unlock()

	if m.ScoreAdviceFunc != nil {
		return m.ScoreAdviceFunc(ctx, advice)
	}
	return minigame.AdviceScores{Tone: 2, Concreteness: 2, Trust: 2}, nil
}
