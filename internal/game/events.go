package game

import (
	"github.com/google/uuid"

	"answerparty/internal/storage"
)

// Event names broadcast to a game's room.
const (
	EventPlayerList         = "player_list"
	EventJoined             = "joined"
	EventGameStarted        = "game_started"
	EventRoundStarted       = "round_started"
	EventSubmissionReceived = "submission_received"
	EventRoundRevealed      = "round_revealed"
	EventVoteUpdate         = "vote_update"
	EventRoundFinished      = "round_finished"
)

// PlayerListPayload carries the full roster after join/ready changes.
type PlayerListPayload struct {
	Players []storage.Player `json:"players"`
}

// GameStartedPayload announces the game start; the round target rides along
// so clients can render progress.
type GameStartedPayload struct {
	GameID      uuid.UUID `json:"game_id"`
	RoundTarget int       `json:"round_target"`
}

// RoundInfo describes a freshly started round. RoundNumber is a strictly
// increasing display counter, not an index into round history.
type RoundInfo struct {
	RoundID     uuid.UUID        `json:"round_id"`
	RoundNumber int64            `json:"round_number"`
	Question    storage.Question `json:"question"`
}

// SubmissionReceivedPayload carries the committed submission count at the
// time of broadcast. The count is advisory; concurrent submitters may observe
// counts out of order.
type SubmissionReceivedPayload struct {
	RoundID      uuid.UUID `json:"round_id"`
	CurrentCount int       `json:"current_count"`
}

// RevealedSubmission is an anonymized answer. The label hides both the
// submitting player and the submission's position among a player's answers;
// the submission id is the vote target.
type RevealedSubmission struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Label        string    `json:"label"`
	Text         string    `json:"text"`
}

// RoundRevealedPayload publishes the anonymized submissions for voting.
type RoundRevealedPayload struct {
	RoundID     uuid.UUID            `json:"round_id"`
	Submissions []RevealedSubmission `json:"submissions"`
}

// VoteUpdatePayload carries per-submission vote counts after each vote.
type VoteUpdatePayload struct {
	RoundID uuid.UUID      `json:"round_id"`
	Counts  map[string]int `json:"counts"`
}

// RoundFinishedPayload announces the quorum-triggered winner.
type RoundFinishedPayload struct {
	RoundID            uuid.UUID `json:"round_id"`
	WinnerSubmissionID uuid.UUID `json:"winner_submission_id"`
}

// ScoreEntry is one row of the game scoreboard.
type ScoreEntry struct {
	PlayerID   uuid.UUID `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Points     int       `json:"points"`
}
