package handlers

import (
	"net/http"

	"github.com/google/uuid"
)

// CreateGameRequest carries the new game's settings; both fields are
// optional.
type CreateGameRequest struct {
	HostName string `json:"host_name"`
	Rounds   int    `json:"rounds"`
}

// HandleCreateGame creates a game together with its host player.
func (h *Handler) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := decode(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}

	g, host, err := h.orch.CreateGame(r.Context(), req.HostName, req.Rounds)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"game_id":        g.ID,
		"host_player_id": host.ID,
	})
}

// HandleListGames lists all games.
func (h *Handler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.orch.ListGames(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, games)
}

// HandleGetGame returns game detail plus its roster.
func (h *Handler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlUUID(r, "gameID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid game id"})
		return
	}
	g, players, err := h.orch.GameDetail(r.Context(), gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	currentRound, hasRound, err := h.orch.CurrentRound(r.Context(), gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := map[string]any{
		"id":             g.ID,
		"created_at":     g.CreatedAt,
		"round_target":   g.RoundTarget,
		"host_player_id": g.HostPlayerID,
		"players":        players,
	}
	if hasRound {
		resp["current_round_id"] = currentRound
	}
	WriteJSON(w, http.StatusOK, resp)
}

// JoinGameRequest optionally carries a known player id for reconnection.
type JoinGameRequest struct {
	PlayerName string     `json:"player_name"`
	PlayerID   *uuid.UUID `json:"player_id"`
}

// HandleJoinGame joins (or rejoins) a player to a game. The joined payload is
// the response body — the unicast to the acting connection.
func (h *Handler) HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlUUID(r, "gameID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid game id"})
		return
	}
	var req JoinGameRequest
	if err := decode(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}

	player, err := h.orch.JoinGame(r.Context(), gameID, req.PlayerName, req.PlayerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"player_id": player.ID,
		"game_id":   gameID,
	})
}

// HandleListPlayers returns a game's roster.
func (h *Handler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlUUID(r, "gameID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid game id"})
		return
	}
	players, err := h.orch.Players(r.Context(), gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, players)
}

// HandleGameScores returns the ordered scoreboard.
func (h *Handler) HandleGameScores(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlUUID(r, "gameID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid game id"})
		return
	}
	scores, err := h.orch.GameScores(r.Context(), gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, scores)
}

// ReadyRequest toggles the caller's own readiness.
type ReadyRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
	Ready    bool      `json:"ready"`
}

// HandleToggleReady mutates the caller's readiness and rebroadcasts the
// roster.
func (h *Handler) HandleToggleReady(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlUUID(r, "gameID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid game id"})
		return
	}
	var req ReadyRequest
	if err := decode(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	if err := h.orch.ToggleReady(r.Context(), gameID, req.PlayerID, req.Ready); err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// StartGameRequest identifies the acting player, who must be the host.
type StartGameRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
}

// HandleStartGame marks the game started and broadcasts it.
func (h *Handler) HandleStartGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlUUID(r, "gameID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid game id"})
		return
	}
	var req StartGameRequest
	if err := decode(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	if err := h.orch.StartGame(r.Context(), gameID, req.PlayerID); err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
