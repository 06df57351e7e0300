package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/store"
)

// ErrGameExists is returned when a new game reuses a stored id.
var ErrGameExists = errors.New("game already exists")

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Rule  string `json:"rule,omitempty"`
	Field string `json:"field,omitempty"`
}

const internalHoleMessage = "internal error, hole not committed"

// statusFor maps an error to its HTTP status and client-facing body.
// Invariant violations never leak their context.
func statusFor(err error) (int, ErrorResponse) {
	var gerr *game.Error
	var rerr *requestError
	switch {
	case errors.As(err, &gerr):
		switch gerr.Kind {
		case game.KindValidation:
			return http.StatusBadRequest, ErrorResponse{Error: gerr.Message, Kind: string(gerr.Kind), Field: gerr.Field}
		case game.KindRuleViolation:
			return http.StatusConflict, ErrorResponse{Error: gerr.Message, Kind: string(gerr.Kind), Rule: gerr.Rule, Field: gerr.Field}
		default:
			return http.StatusInternalServerError, ErrorResponse{Error: internalHoleMessage, Kind: string(game.KindInvariant)}
		}
	case errors.As(err, &rerr):
		return http.StatusBadRequest, ErrorResponse{Error: rerr.msg, Kind: string(game.KindValidation)}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "game not found", Kind: "not_found"}
	case errors.Is(err, ErrGameExists):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Kind: "conflict"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: "internal"}
	}
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // client may have gone away
}
