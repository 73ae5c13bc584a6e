package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/draft-season/internal/services"
	"github.com/jwebster45206/draft-season/pkg/minigame"
	"github.com/jwebster45206/draft-season/pkg/state"
	"github.com/jwebster45206/draft-season/pkg/storybook"
	"github.com/jwebster45206/draft-season/pkg/training"
)

// GameHandler serves the game progression API under /v1/game/.
type GameHandler struct {
	store    *state.Store
	books    *storybook.Manager
	training *training.Manager
	resolver *minigame.Resolver
	logger   *slog.Logger
}

func NewGameHandler(store *state.Store, books *storybook.Manager, tr *training.Manager, resolver *minigame.Resolver, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		store:    store,
		books:    books,
		training: tr,
		resolver: resolver,
		logger:   logger,
	}
}

// ServeHTTP routes game operations.
// Routes:
// GET  /v1/game/state              - Current game state
// POST /v1/game/state              - Start a new game (resets the session)
// POST /v1/game/advance            - Advance to the next month
// POST /v1/game/training           - Execute a training session
// POST /v1/game/atbat              - Resolve the tournament at-bat
// POST /v1/game/steal              - Decide and resolve the steal attempt
// GET  /v1/game/storybook          - Current storybook content
// POST /v1/game/storybook/complete - Mark a storybook finished
// GET  /v1/game/goals              - Current month goal report
// GET  /v1/game/moments            - Collected moment cards
// GET  /v1/game/hints              - Current hints
// GET  /v1/game/guide              - Current month guide
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/game"), "/")

	switch {
	case path == "state" && r.Method == http.MethodGet:
		h.handleGetState(w, r)
	case path == "state" && r.Method == http.MethodPost:
		h.handleNewGame(w, r)
	case path == "advance" && r.Method == http.MethodPost:
		h.handleAdvance(w, r)
	case path == "training" && r.Method == http.MethodPost:
		h.handleTraining(w, r)
	case path == "atbat" && r.Method == http.MethodPost:
		h.handleAtBat(w, r)
	case path == "steal" && r.Method == http.MethodPost:
		h.handleSteal(w, r)
	case path == "storybook" && r.Method == http.MethodGet:
		h.handleGetStorybook(w, r)
	case path == "storybook/complete" && r.Method == http.MethodPost:
		h.handleCompleteStorybook(w, r)
	case path == "goals" && r.Method == http.MethodGet:
		h.handleGoals(w, r)
	case path == "moments" && r.Method == http.MethodGet:
		h.handleMoments(w, r)
	case path == "hints" && r.Method == http.MethodGet:
		h.handleHints(w, r)
	case path == "guide" && r.Method == http.MethodGet:
		h.handleGuide(w, r)
	default:
		writeError(w, h.logger, http.StatusNotFound, "not found")
	}
}

func (h *GameHandler) querySession(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		writeError(w, h.logger, http.StatusBadRequest, "session_id is required")
		return "", false
	}
	return id, true
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type GameStateResponse struct {
	State state.GameState      `json:"state"`
	Goals storybook.GoalReport `json:"goals"`
}

func (h *GameHandler) handleGetState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.querySession(w, r)
	if !ok {
		return
	}

	var resp GameStateResponse
	err := h.store.View(r.Context(), id, func(gs *state.GameState) error {
		resp.Goals = h.books.CheckGoals(gs)
		return nil
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	resp.State = h.store.Snapshot(r.Context(), id)
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *GameHandler) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	err := h.store.Update(r.Context(), req.SessionID, func(gs *state.GameState) error {
		*gs = *state.NewGameState(req.SessionID)
		return nil
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}

	h.logger.Info("New game started", "session_id", req.SessionID)
	writeJSON(w, h.logger, http.StatusCreated, GameStateResponse{
		State: h.store.Snapshot(r.Context(), req.SessionID),
	})
}

func (h *GameHandler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "session_id is required")
		return
	}

	var result *storybook.AdvanceResult
	err := h.store.Update(r.Context(), req.SessionID, func(gs *state.GameState) error {
		var err error
		result, err = h.books.AdvanceMonth(gs)
		return err
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

type trainingRequest struct {
	SessionID string   `json:"session_id"`
	Intensity int      `json:"intensity"`
	Focuses   []string `json:"focuses,omitempty"`
}

func (h *GameHandler) handleTraining(w http.ResponseWriter, r *http.Request) {
	var req trainingRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "session_id is required")
		return
	}

	var out *training.Outcome
	err := h.store.Update(r.Context(), req.SessionID, func(gs *state.GameState) error {
		var err error
		out, err = h.training.Execute(gs, req.Intensity, req.Focuses)
		return err
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, out)
}

type atBatRequest struct {
	SessionID string `json:"session_id"`
	Advice    string `json:"advice"`
}

type AtBatResponse struct {
	Outcome    state.TournamentResult `json:"outcome"`
	Detail     *minigame.AtBatDetail  `json:"detail,omitempty"`
	NextAction state.PendingAction    `json:"next_action"`
}

// handleAtBat resolves the tournament at-bat. The advice is scored by the
// language model outside the session lock; the outcome is then applied
// under the lock, re-checking that the at-bat is still pending.
func (h *GameHandler) handleAtBat(w http.ResponseWriter, r *http.Request) {
	var req atBatRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "session_id is required")
		return
	}
	if strings.TrimSpace(req.Advice) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "advice is required")
		return
	}

	snap := h.store.Snapshot(r.Context(), req.SessionID)
	if snap.NextAction != state.ActionAwaitAtBat {
		writeError(w, h.logger, http.StatusConflict, "no at-bat is pending")
		return
	}

	outcome, detail := h.resolver.ResolveAtBat(r.Context(), snap.Stats, req.Advice)

	resp := AtBatResponse{Outcome: outcome, Detail: detail}
	err := h.store.Update(r.Context(), req.SessionID, func(gs *state.GameState) error {
		if gs.NextAction != state.ActionAwaitAtBat {
			return state.Reject("no at-bat is pending")
		}
		gs.Flags.TournamentResult = outcome
		if outcome == state.ResultHit {
			// Runner on first: the steal call is now the coach's to make.
			gs.NextAction = state.ActionAwaitStealDecision
		} else {
			gs.NextAction = state.ActionNone
		}
		resp.NextAction = gs.NextAction
		return nil
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

type stealRequest struct {
	SessionID string `json:"session_id"`
	Attempt   bool   `json:"attempt"`
}

type StealResponse struct {
	Attempted bool                   `json:"attempted"`
	Success   bool                   `json:"success"`
	Outcome   state.TournamentResult `json:"outcome"`
	Detail    *minigame.StealDetail  `json:"detail,omitempty"`
}

func (h *GameHandler) handleSteal(w http.ResponseWriter, r *http.Request) {
	var req stealRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "session_id is required")
		return
	}

	var resp StealResponse
	err := h.store.Update(r.Context(), req.SessionID, func(gs *state.GameState) error {
		if gs.NextAction != state.ActionAwaitStealDecision {
			return state.Reject("no steal decision is pending")
		}
		gs.NextAction = state.ActionNone

		if !req.Attempt {
			// Holding the runner keeps the hit on the books.
			resp = StealResponse{Attempted: false, Outcome: gs.Flags.TournamentResult}
			return nil
		}

		success, detail := h.resolver.ResolveSteal(gs.Stats, gs.Flags.StealPhobiaOvercome)
		if success {
			gs.Flags.TournamentResult = state.ResultHitSteal
		}
		resp = StealResponse{
			Attempted: true,
			Success:   success,
			Outcome:   gs.Flags.TournamentResult,
			Detail:    detail,
		}
		return nil
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *GameHandler) handleGetStorybook(w http.ResponseWriter, r *http.Request) {
	id, ok := h.querySession(w, r)
	if !ok {
		return
	}

	var sb *storybook.Storybook
	err := h.store.View(r.Context(), id, func(gs *state.GameState) error {
		var err error
		sb, err = h.books.Current(gs)
		return err
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	if sb == nil {
		writeError(w, h.logger, http.StatusNotFound, "no active storybook")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, sb)
}

type completeStorybookRequest struct {
	SessionID   string `json:"session_id"`
	StorybookID string `json:"storybook_id"`
}

func (h *GameHandler) handleCompleteStorybook(w http.ResponseWriter, r *http.Request) {
	var req completeStorybookRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if req.SessionID == "" || req.StorybookID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "session_id and storybook_id are required")
		return
	}

	var result *storybook.CompletionResult
	err := h.store.Update(r.Context(), req.SessionID, func(gs *state.GameState) error {
		var err error
		result, err = h.books.CompleteStorybook(gs, req.StorybookID)
		return err
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

func (h *GameHandler) handleGoals(w http.ResponseWriter, r *http.Request) {
	id, ok := h.querySession(w, r)
	if !ok {
		return
	}

	var report storybook.GoalReport
	err := h.store.View(r.Context(), id, func(gs *state.GameState) error {
		report = h.books.CheckGoals(gs)
		return nil
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, report)
}

type MomentsResponse struct {
	Moments []state.MomentCard `json:"moments"`
}

func (h *GameHandler) handleMoments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.querySession(w, r)
	if !ok {
		return
	}

	snap := h.store.Snapshot(r.Context(), id)
	resp := MomentsResponse{Moments: snap.SpecialMoments}
	if resp.Moments == nil {
		resp.Moments = []state.MomentCard{}
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

type HintsResponse struct {
	Hints []string `json:"hints"`
}

func (h *GameHandler) handleHints(w http.ResponseWriter, r *http.Request) {
	id, ok := h.querySession(w, r)
	if !ok {
		return
	}

	var hints []string
	err := h.store.View(r.Context(), id, func(gs *state.GameState) error {
		hints = storybook.HintsFor(gs)
		// While the May backstory event is still live, its nudges join
		// the month hints. Once consumed they disappear.
		if gs.CurrentMonth == 5 && !gs.Flags.BackstoryRevealed && !gs.HasConsumedEvent(services.EventMayConflict) {
			hints = append(hints, services.MayConflictEvent.Hints...)
		}
		return nil
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, HintsResponse{Hints: hints})
}

func (h *GameHandler) handleGuide(w http.ResponseWriter, r *http.Request) {
	id, ok := h.querySession(w, r)
	if !ok {
		return
	}

	var guide *storybook.MonthGuide
	err := h.store.View(r.Context(), id, func(gs *state.GameState) error {
		guide = storybook.GuideForMonth(gs.CurrentMonth)
		return nil
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	if guide == nil {
		writeError(w, h.logger, http.StatusNotFound, "no guide for the current month")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, guide)
}
