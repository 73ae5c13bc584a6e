package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/draft-season/internal/services"
	"github.com/jwebster45206/draft-season/pkg/state"
)

func chatReadyEnv(t *testing.T, id string) *testEnv {
	env := newTestEnv(t)
	env.setState(t, id, func(gs *state.GameState) { gs.SetChatMode() })
	return env
}

func TestChatHandler_StorybookPhaseConflict(t *testing.T) {
	env := newTestEnv(t)

	// Fresh sessions are parked on the opening storybook.
	w := doJSON(t, env.chat, http.MethodPost, "/v1/chat", chatRequest{SessionID: "c1", Message: "hey"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, env.oracle.ReplyCalls)
}

func TestChatHandler_InitGreeting(t *testing.T) {
	env := chatReadyEnv(t, "c1")

	w := doJSON(t, env.chat, http.MethodPost, "/v1/chat", chatRequest{SessionID: "c1", Message: InitMessage})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	decode(t, w, &resp)
	assert.Equal(t, initGreeting, resp.Reply)
	assert.Empty(t, env.oracle.ReplyCalls)
}

func TestChatHandler_NormalExchange(t *testing.T) {
	env := chatReadyEnv(t, "c1")
	env.oracle.ReplyFunc = func(ctx context.Context, gs *state.GameState, msg string) (*services.ReplyResult, error) {
		return &services.ReplyResult{Text: "...thanks, I guess."}, nil
	}
	env.oracle.ClassifyFunc = func(ctx context.Context, gs *state.GameState, msg, reply string) (*services.StatDelta, error) {
		return &services.StatDelta{Changes: map[string]int{"intimacy": 3}, Reason: "genuine encouragement"}, nil
	}

	w := doJSON(t, env.chat, http.MethodPost, "/v1/chat", chatRequest{SessionID: "c1", Message: "Nice swing out there today."})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	decode(t, w, &resp)
	assert.Equal(t, "...thanks, I guess.", resp.Reply)
	assert.Equal(t, map[string]int{"intimacy": 3}, resp.StatChanges)
	assert.Equal(t, "genuine encouragement", resp.Reason)

	require.NoError(t, env.store.View(context.Background(), "c1", func(gs *state.GameState) error {
		assert.Equal(t, 3, gs.Stats.Intimacy)
		return nil
	}))
}

func TestChatHandler_MilestoneCardFromChat(t *testing.T) {
	env := chatReadyEnv(t, "c1")
	env.setState(t, "c1", func(gs *state.GameState) { gs.Stats.Intimacy = 28 })
	env.oracle.ClassifyFunc = func(ctx context.Context, gs *state.GameState, msg, reply string) (*services.StatDelta, error) {
		return &services.StatDelta{Changes: map[string]int{"intimacy": 4}, Reason: "a real moment"}, nil
	}

	w := doJSON(t, env.chat, http.MethodPost, "/v1/chat", chatRequest{SessionID: "c1", Message: "I believe in you."})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	decode(t, w, &resp)
	require.Len(t, resp.NewCards, 1)
	assert.Equal(t, "First Signs of Trust", resp.NewCards[0].Title)
}

func TestChatHandler_HintPassedThrough(t *testing.T) {
	env := chatReadyEnv(t, "c1")
	env.oracle.ReplyFunc = func(ctx context.Context, gs *state.GameState, msg string) (*services.ReplyResult, error) {
		return &services.ReplyResult{
			Text: "...why do you keep asking that?",
			Hint: "Try asking about his training routine instead.",
		}, nil
	}

	w := doJSON(t, env.chat, http.MethodPost, "/v1/chat", chatRequest{SessionID: "c1", Message: "So, about your family..."})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	decode(t, w, &resp)
	assert.Equal(t, "...why do you keep asking that?", resp.Reply)
	assert.Equal(t, "Try asking about his training routine instead.", resp.Hint)
}

func TestChatHandler_ReplyFailureApologizes(t *testing.T) {
	env := chatReadyEnv(t, "c1")
	env.oracle.ReplyFunc = func(ctx context.Context, gs *state.GameState, msg string) (*services.ReplyResult, error) {
		return nil, errors.New("model unavailable")
	}

	w := doJSON(t, env.chat, http.MethodPost, "/v1/chat", chatRequest{SessionID: "c1", Message: "hello?"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	decode(t, w, &resp)
	assert.Equal(t, apologyReply, resp.Reply)
	assert.Empty(t, resp.StatChanges)
	// No classification without a real reply.
	assert.Empty(t, env.oracle.ClassifyCalls)
}

func TestChatHandler_MayEventFires(t *testing.T) {
	env := chatReadyEnv(t, "c1")
	env.setState(t, "c1", func(gs *state.GameState) {
		gs.CurrentMonth = 5
		gs.Stats.Intimacy = 25
	})
	env.oracle.JudgeEventFunc = func(ctx context.Context, gs *state.GameState, def services.EventDefinition, msg string) (*services.EventJudgment, error) {
		return &services.EventJudgment{Triggered: true, Reason: "direct question about the injury", Confidence: 0.92}, nil
	}

	w := doJSON(t, env.chat, http.MethodPost, "/v1/chat", chatRequest{SessionID: "c1", Message: "What happened last summer?"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	decode(t, w, &resp)
	assert.Equal(t, services.MayConflictEvent.TriggerMessage, resp.Reply)
	assert.Equal(t, MainEventStorybookID, resp.StorybookID)
	assert.Equal(t, map[string]int{"intimacy": 10}, resp.StatChanges)
	// The event card plus the intimacy-30 milestone (25 -> 35).
	require.Len(t, resp.NewCards, 2)
	assert.Equal(t, "event", resp.NewCards[0].Type)
	assert.Equal(t, "milestone", resp.NewCards[1].Type)

	require.NoError(t, env.store.View(context.Background(), "c1", func(gs *state.GameState) error {
		assert.True(t, gs.Flags.BackstoryRevealed)
		assert.True(t, gs.Flags.StealPhobiaOvercome)
		assert.True(t, gs.HasConsumedEvent(services.EventMayConflict))
		assert.Equal(t, 35, gs.Stats.Intimacy)
		assert.Equal(t, state.PhaseStorybook, gs.CurrentPhase)
		assert.Equal(t, MainEventStorybookID, gs.CurrentStorybookID)
		return nil
	}))

	// Oracle is not asked for a normal reply when the event claims the turn.
	assert.Empty(t, env.oracle.ReplyCalls)
}

func TestChatHandler_MayEventLowConfidence(t *testing.T) {
	env := chatReadyEnv(t, "c1")
	env.setState(t, "c1", func(gs *state.GameState) { gs.CurrentMonth = 5 })
	env.oracle.JudgeEventFunc = func(ctx context.Context, gs *state.GameState, def services.EventDefinition, msg string) (*services.EventJudgment, error) {
		return &services.EventJudgment{Triggered: true, Reason: "maybe", Confidence: 0.4}, nil
	}

	w := doJSON(t, env.chat, http.MethodPost, "/v1/chat", chatRequest{SessionID: "c1", Message: "tell me about baseball"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	decode(t, w, &resp)
	assert.Equal(t, "Mock reply", resp.Reply)
	assert.Empty(t, resp.StorybookID)

	require.NoError(t, env.store.View(context.Background(), "c1", func(gs *state.GameState) error {
		assert.False(t, gs.Flags.BackstoryRevealed)
		return nil
	}))
}

func TestChatHandler_MayEventOnlyOnce(t *testing.T) {
	env := chatReadyEnv(t, "c1")
	env.setState(t, "c1", func(gs *state.GameState) {
		gs.CurrentMonth = 5
		gs.Flags.BackstoryRevealed = true
		gs.ConsumeEvent(services.EventMayConflict)
	})

	w := doJSON(t, env.chat, http.MethodPost, "/v1/chat", chatRequest{SessionID: "c1", Message: "What happened last summer?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.oracle.JudgeEventCalls)
}

func TestChatHandler_Validation(t *testing.T) {
	env := chatReadyEnv(t, "c1")

	w := doJSON(t, env.chat, http.MethodPost, "/v1/chat", chatRequest{Message: "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.chat, http.MethodPost, "/v1/chat", chatRequest{SessionID: "c1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.chat, http.MethodGet, "/v1/chat", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
