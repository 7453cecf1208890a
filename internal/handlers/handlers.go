package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"answerparty/internal/game"
	"answerparty/internal/rooms"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	logger   *slog.Logger
	orch     *game.Orchestrator
	hub      *rooms.Hub
	registry *rooms.Registry
}

// NewHandler creates a new handler instance.
func NewHandler(logger *slog.Logger, orch *game.Orchestrator, hub *rooms.Hub, registry *rooms.Registry) *Handler {
	return &Handler{logger: logger, orch: orch, hub: hub, registry: registry}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an orchestrator error onto an HTTP status. Errors go to
// the acting caller only; they are never broadcast to the room.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, game.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrConflict), errors.Is(err, game.ErrExhausted):
		status = http.StatusConflict
	case errors.Is(err, game.ErrTransient):
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, map[string]any{"ok": false, "error": err.Error()})
}

// urlUUID parses a uuid path parameter.
func urlUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
