package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/draft-season/internal/services"
	"github.com/jwebster45206/draft-season/pkg/moments"
	"github.com/jwebster45206/draft-season/pkg/state"
)

// InitMessage is the client's signal that the chat screen just opened;
// it gets a canned greeting instead of a model call.
const InitMessage = "init"

const initGreeting = "...You're the new coach, huh. Don't expect much. I just want to get through the season."

// apologyReply covers a model outage without breaking character.
const apologyReply = "...Sorry, my head's somewhere else right now. Say that again?"

// MainEventStorybookID is shown after the May backstory reveal.
const MainEventStorybookID = "5_main_event"

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	Reply       string             `json:"reply"`
	Hint        string             `json:"hint,omitempty"`
	StorybookID string             `json:"storybook_id,omitempty"`
	StatChanges map[string]int     `json:"stat_changes,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	NewCards    []state.MomentCard `json:"new_cards,omitempty"`
}

// ChatHandler serves free-form conversation with the trainee. Model calls
// run against a detached snapshot; results are applied to the live state
// afterwards.
type ChatHandler struct {
	store   *state.Store
	oracle  services.Oracle
	tracker *moments.Tracker
	logger  *slog.Logger
}

func NewChatHandler(store *state.Store, oracle services.Oracle, tracker *moments.Tracker, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		store:   store,
		oracle:  oracle,
		tracker: tracker,
		logger:  logger,
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "session_id is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "message is required")
		return
	}

	snap := h.store.Snapshot(r.Context(), req.SessionID)
	if snap.CurrentPhase != state.PhaseChat {
		writeError(w, h.logger, http.StatusConflict, "finish the current storybook first")
		return
	}

	if req.Message == InitMessage {
		writeJSON(w, h.logger, http.StatusOK, ChatResponse{Reply: initGreeting})
		return
	}

	// One-shot narrative events get first claim on the message.
	if snap.CurrentMonth == 5 && !snap.Flags.BackstoryRevealed && !snap.HasConsumedEvent(services.EventMayConflict) {
		resp, fired, err := h.tryMayEvent(r, req, &snap)
		if err != nil {
			writeGameError(w, h.logger, err)
			return
		}
		if fired {
			writeJSON(w, h.logger, http.StatusOK, resp)
			return
		}
	}

	reply := apologyReply
	var hint string
	var delta *services.StatDelta
	if result, err := h.oracle.Reply(r.Context(), &snap, req.Message); err != nil {
		h.logger.Warn("Reply generation failed", "session_id", req.SessionID, "error", err)
	} else {
		reply = result.Text
		hint = result.Hint
		delta, err = h.oracle.ClassifyStatDelta(r.Context(), &snap, req.Message, reply)
		if err != nil {
			h.logger.Warn("Stat classification failed", "session_id", req.SessionID, "error", err)
		}
	}
	if delta == nil {
		delta = &services.StatDelta{Reason: "analysis failed"}
	}

	resp := ChatResponse{
		Reply:       reply,
		Hint:        hint,
		StatChanges: delta.Changes,
		Reason:      delta.Reason,
	}
	err := h.store.Update(r.Context(), req.SessionID, func(gs *state.GameState) error {
		before := gs.Stats.Snapshot()
		gs.Stats.ApplyChanges(delta.Changes)
		resp.NewCards = h.tracker.CheckAll(gs, before)
		return nil
	})
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// tryMayEvent runs the event judge and, when it fires, applies the
// backstory reveal: flags, the intimacy reward, the event card, and the
// scripted follow-up storybook. A judge failure or a declined judgment
// lets the message flow to the normal reply path.
func (h *ChatHandler) tryMayEvent(r *http.Request, req chatRequest, snap *state.GameState) (ChatResponse, bool, error) {
	def := services.MayConflictEvent
	judgment, err := h.oracle.JudgeEvent(r.Context(), snap, def, req.Message)
	if err != nil {
		h.logger.Warn("Event judge failed", "session_id", req.SessionID, "event", def.Key, "error", err)
		return ChatResponse{}, false, nil
	}
	if !judgment.Accepted() {
		h.logger.Debug("Event not triggered",
			"event", def.Key,
			"confidence", judgment.Confidence,
			"reason", judgment.Reason)
		return ChatResponse{}, false, nil
	}

	resp := ChatResponse{
		Reply:       def.TriggerMessage,
		StorybookID: MainEventStorybookID,
		StatChanges: map[string]int{"intimacy": 10},
		Reason:      "he finally told you the truth",
	}
	err = h.store.Update(r.Context(), req.SessionID, func(gs *state.GameState) error {
		if gs.HasConsumedEvent(def.Key) {
			return nil
		}
		before := gs.Stats.Snapshot()
		gs.ConsumeEvent(def.Key)
		gs.Flags.BackstoryRevealed = true
		gs.Flags.StealPhobiaOvercome = true
		gs.Stats.ApplyChanges(resp.StatChanges)

		card := h.tracker.NewEventCard(gs, "backstory", def.Name,
			"He finally told you why he freezes on the basepaths.", "/images/events/may_conflict.png")
		resp.NewCards = append([]state.MomentCard{card}, h.tracker.CheckIntimacy(gs, before.Intimacy)...)

		gs.SetStorybookMode(MainEventStorybookID)
		return nil
	})
	if err != nil {
		return ChatResponse{}, false, err
	}

	h.logger.Info("Narrative event fired", "session_id", req.SessionID, "event", def.Key)
	return resp, true, nil
}
