package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"answerparty/internal/game"
	"answerparty/internal/rooms"
)

const heartbeatInterval = 15 * time.Second

// HandleEvents streams a game room's events over SSE. The connection is
// registered against the player it represents and cleaned up on disconnect;
// the player record itself survives for reconnection.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlUUID(r, "gameID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid game id"})
		return
	}
	playerID, err := uuid.Parse(r.URL.Query().Get("player_id"))
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid player id"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	connID := uuid.New()
	h.registry.Bind(connID, playerID)
	defer h.registry.Unbind(connID)

	room := h.hub.Room(gameID)
	ch := make(chan rooms.Event, 16)
	room.Subscribe(ch)
	defer room.Unsubscribe(ch)

	h.logger.Info("event stream opened", "conn_id", connID, "player_id", playerID, "game_id", gameID)
	defer h.logger.Info("event stream closed", "conn_id", connID, "player_id", playerID, "game_id", gameID)

	// Initial roster snapshot so a late subscriber is not blank until the
	// next change.
	if players, err := h.orch.Players(r.Context(), gameID); err == nil {
		writeEvent(w, game.EventPlayerList, game.PlayerListPayload{Players: players})
		flusher.Flush()
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev := <-ch:
			writeEvent(w, ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
}
