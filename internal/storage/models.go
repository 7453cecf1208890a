package storage

import (
	"time"

	"github.com/google/uuid"
)

// Round states. Transitions only ever move forward.
const (
	RoundCollecting = "collecting"
	RoundVoting     = "voting"
	RoundFinished   = "finished"
)

// Question is a prompt from the question bank. Immutable once imported.
type Question struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"-"`
}

// Game groups players and rounds. HostPlayerID is back-filled once the host's
// player row exists and never changes afterwards.
type Game struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoundTarget  int        `json:"round_target"`
	HostPlayerID *uuid.UUID `gorm:"type:uuid" json:"host_player_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Player belongs to exactly one game for its lifetime.
type Player struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `json:"name"`
	GameID    uuid.UUID `gorm:"type:uuid;index" json:"game_id"`
	Ready     bool      `json:"ready"`
	CreatedAt time.Time `json:"-"`
}

// Round is one question-answer-vote cycle.
type Round struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GameID     uuid.UUID `gorm:"type:uuid;index" json:"game_id"`
	QuestionID uuid.UUID `gorm:"type:uuid" json:"question_id"`
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"-"`
}

// Submission is a player's answer. At most one per (round, player); the
// unique index backs up the orchestrator's own check.
type Submission struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoundID   uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_round_player" json:"round_id"`
	PlayerID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_round_player" json:"player_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Vote records one player's pick for a round. Unique per (round, voter).
type Vote struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoundID       uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_round_voter" json:"round_id"`
	SubmissionID  uuid.UUID `gorm:"type:uuid" json:"submission_id"`
	VoterPlayerID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_round_voter" json:"voter_player_id"`
	CreatedAt     time.Time `json:"created_at"`
}
