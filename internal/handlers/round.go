package handlers

import (
	"net/http"

	"github.com/google/uuid"
)

// StartRoundRequest identifies the acting player, who must be the host.
type StartRoundRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
}

// HandleStartRound starts the game's next round.
func (h *Handler) HandleStartRound(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlUUID(r, "gameID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid game id"})
		return
	}
	var req StartRoundRequest
	if err := decode(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	info, err := h.orch.StartRound(r.Context(), gameID, req.PlayerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, info)
}

// HandleListRounds returns a game's round history.
func (h *Handler) HandleListRounds(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlUUID(r, "gameID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid game id"})
		return
	}
	rounds, err := h.orch.GameRounds(r.Context(), gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rounds)
}

// SubmitAnswerRequest is a player's answer text.
type SubmitAnswerRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
	Text     string    `json:"text"`
}

// HandleSubmitAnswer records an answer for the round.
func (h *Handler) HandleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	roundID, err := urlUUID(r, "roundID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid round id"})
		return
	}
	var req SubmitAnswerRequest
	if err := decode(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	sub, err := h.orch.SubmitAnswer(r.Context(), roundID, req.PlayerID, req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"submission_id": sub.ID})
}

// RevealRoundRequest identifies the acting player, who must be the host.
type RevealRoundRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
}

// HandleRevealRound anonymizes the round's submissions and opens voting.
func (h *Handler) HandleRevealRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := urlUUID(r, "roundID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid round id"})
		return
	}
	var req RevealRoundRequest
	if err := decode(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	revealed, err := h.orch.RevealRound(r.Context(), roundID, req.PlayerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"round_id": roundID, "submissions": revealed})
}

// VoteRequest casts the caller's single vote for the round.
type VoteRequest struct {
	PlayerID     uuid.UUID `json:"player_id"`
	SubmissionID uuid.UUID `json:"submission_id"`
}

// HandleVote records a vote.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	roundID, err := urlUUID(r, "roundID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid round id"})
		return
	}
	var req VoteRequest
	if err := decode(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	if err := h.orch.VoteSubmission(r.Context(), roundID, req.PlayerID, req.SubmissionID); err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// HandleRoundResults returns per-player points for one round.
func (h *Handler) HandleRoundResults(w http.ResponseWriter, r *http.Request) {
	roundID, err := urlUUID(r, "roundID")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid round id"})
		return
	}
	points, err := h.orch.RoundResults(r.Context(), roundID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make(map[string]int, len(points))
	for id, n := range points {
		out[id.String()] = n
	}
	WriteJSON(w, http.StatusOK, out)
}
