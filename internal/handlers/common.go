package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/draft-season/pkg/state"
	"github.com/jwebster45206/draft-season/pkg/storybook"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// writeGameError maps domain errors to HTTP: rule rejections and the
// season boundary are conflicts, a storybook id the config does not
// define is not-found, asking for the ending mid-season is a bad
// request, everything else is a server fault.
func writeGameError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var rej *state.Rejection
	switch {
	case errors.As(err, &rej):
		writeError(w, logger, http.StatusConflict, rej.Reason)
	case errors.Is(err, storybook.ErrSeasonOver):
		writeError(w, logger, http.StatusConflict, err.Error())
	case errors.Is(err, storybook.ErrUnknownStorybook):
		writeError(w, logger, http.StatusNotFound, err.Error())
	case errors.Is(err, storybook.ErrSeasonRunning):
		writeError(w, logger, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Request failed", "error", err)
		writeError(w, logger, http.StatusInternalServerError, "internal error")
	}
}
