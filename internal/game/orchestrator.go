// Package game owns the session state machine: game lifecycle, round
// lifecycle, submission collection, reveal, voting and scoring. It is the
// only writer of round state, the current-round pointer, the used-question
// set and reveal flags.
package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"answerparty/internal/coord"
	"answerparty/internal/storage"
)

// Default names applied when a caller leaves them blank.
const (
	DefaultHostName   = "Host"
	DefaultPlayerName = "Player"
	DefaultRoundCount = 10
)

// RecordStore is the durable entity store the orchestrator runs against.
// Both the database-backed and the in-memory stores satisfy it.
type RecordStore interface {
	CreateQuestion(ctx context.Context, text string) (storage.Question, error)
	ImportQuestions(ctx context.Context, texts []string) (int, error)
	ListQuestions(ctx context.Context) ([]storage.Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (storage.Question, error)

	CreateGameWithHost(ctx context.Context, hostName string, roundTarget int) (storage.Game, storage.Player, error)
	GetGame(ctx context.Context, id uuid.UUID) (storage.Game, error)
	ListGames(ctx context.Context) ([]storage.Game, error)

	CreatePlayer(ctx context.Context, gameID uuid.UUID, name string) (storage.Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (storage.Player, error)
	ListPlayers(ctx context.Context, gameID uuid.UUID) ([]storage.Player, error)
	SetPlayerReady(ctx context.Context, id uuid.UUID, ready bool) error

	CreateRound(ctx context.Context, gameID, questionID uuid.UUID) (storage.Round, error)
	GetRound(ctx context.Context, id uuid.UUID) (storage.Round, error)
	ListRounds(ctx context.Context, gameID uuid.UUID) ([]storage.Round, error)
	AdvanceRoundState(ctx context.Context, id uuid.UUID, from, to string) (bool, error)

	CreateSubmission(ctx context.Context, roundID, playerID uuid.UUID, text string) (storage.Submission, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (storage.Submission, error)
	ListSubmissions(ctx context.Context, roundID uuid.UUID) ([]storage.Submission, error)
	CountSubmissions(ctx context.Context, roundID uuid.UUID) (int, error)
	HasSubmitted(ctx context.Context, roundID, playerID uuid.UUID) (bool, error)

	CreateVote(ctx context.Context, roundID, submissionID, voterID uuid.UUID) (storage.Vote, error)
	HasVoted(ctx context.Context, roundID, voterID uuid.UUID) (bool, error)
	VoteCounts(ctx context.Context, roundID uuid.UUID) (map[uuid.UUID]int, error)
	CountDistinctVoters(ctx context.Context, roundID uuid.UUID) (int, error)
	RoundPoints(ctx context.Context, roundID uuid.UUID) (map[uuid.UUID]int, error)
	GamePoints(ctx context.Context, gameID uuid.UUID) (map[uuid.UUID]int, error)
}

// Broadcaster publishes a named event to every subscriber of a game's room.
// Delivery is best-effort; state stays authoritative in the stores.
type Broadcaster interface {
	Broadcast(gameID uuid.UUID, event string, data any)
}

// Orchestrator coordinates all game-session mutations. Mutating operations
// serialize per game id and per round id; cross-game operations run fully in
// parallel.
type Orchestrator struct {
	store  RecordStore
	coord  coord.Coordinator
	rooms  Broadcaster
	logger *slog.Logger

	gameLocks  *keyedMutex
	roundLocks *keyedMutex
}

// New wires an orchestrator from its collaborators.
func New(store RecordStore, c coord.Coordinator, rooms Broadcaster, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:      store,
		coord:      c,
		rooms:      rooms,
		logger:     logger,
		gameLocks:  newKeyedMutex(),
		roundLocks: newKeyedMutex(),
	}
}

// Coordination-store keys. The orchestrator is their only writer.
func keyRoundSeq(gameID uuid.UUID) string       { return "game:" + gameID.String() + ":round_seq" }
func keyUsedQuestions(gameID uuid.UUID) string  { return "game:" + gameID.String() + ":used_questions" }
func keyCurrentRound(gameID uuid.UUID) string   { return "game:" + gameID.String() + ":current_round" }
func keyStarted(gameID uuid.UUID) string        { return "game:" + gameID.String() + ":started" }
func keyRoundQuestion(roundID uuid.UUID) string { return "round:" + roundID.String() + ":question" }
func keyRevealed(roundID uuid.UUID) string      { return "round:" + roundID.String() + ":revealed" }
func keyFinalized(roundID uuid.UUID) string     { return "round:" + roundID.String() + ":finalized" }

// CreateGame creates a game together with its host player. The two writes
// commit atomically; a game is never observable without a host.
func (o *Orchestrator) CreateGame(ctx context.Context, hostName string, roundTarget int) (storage.Game, storage.Player, error) {
	if strings.TrimSpace(hostName) == "" {
		hostName = DefaultHostName
	}
	if roundTarget <= 0 {
		roundTarget = DefaultRoundCount
	}
	g, host, err := o.store.CreateGameWithHost(ctx, hostName, roundTarget)
	if err != nil {
		return storage.Game{}, storage.Player{}, storeErr(err, "create game")
	}
	o.logger.Info("game created", "game_id", g.ID, "host_player_id", host.ID)
	return g, host, nil
}

// JoinGame adds a player to a game, or reconnects an existing player when the
// supplied id already belongs to this game. Reconnection is idempotent and
// never creates a duplicate row.
func (o *Orchestrator) JoinGame(ctx context.Context, gameID uuid.UUID, name string, existing *uuid.UUID) (storage.Player, error) {
	unlock := o.gameLocks.lock(gameID)
	defer unlock()

	if _, err := o.store.GetGame(ctx, gameID); err != nil {
		return storage.Player{}, storeErr(err, "game")
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultPlayerName
	}

	var player storage.Player
	if existing != nil {
		if p, err := o.store.GetPlayer(ctx, *existing); err == nil && p.GameID == gameID {
			player = p
		}
	}
	if player.ID == uuid.Nil {
		p, err := o.store.CreatePlayer(ctx, gameID, name)
		if err != nil {
			return storage.Player{}, storeErr(err, "create player")
		}
		player = p
	}

	o.broadcastPlayerList(ctx, gameID)
	return player, nil
}

// StartGame marks the game started and announces it. Host only.
func (o *Orchestrator) StartGame(ctx context.Context, gameID, actingPlayerID uuid.UUID) error {
	unlock := o.gameLocks.lock(gameID)
	defer unlock()

	g, err := o.store.GetGame(ctx, gameID)
	if err != nil {
		return storeErr(err, "game")
	}
	if g.HostPlayerID == nil || *g.HostPlayerID != actingPlayerID {
		return ErrForbidden
	}
	players, err := o.store.ListPlayers(ctx, gameID)
	if err != nil {
		return storeErr(err, "players")
	}
	if len(players) == 0 {
		return wrapConflict("no players in game")
	}
	if err := o.coord.Set(ctx, keyStarted(gameID), "1"); err != nil {
		return coordErr(err, "mark started")
	}

	o.rooms.Broadcast(gameID, EventGameStarted, GameStartedPayload{
		GameID:      gameID,
		RoundTarget: g.RoundTarget,
	})
	o.logger.Info("game started", "game_id", gameID)
	return nil
}

// ToggleReady mutates the caller's own readiness and re-broadcasts the
// roster.
func (o *Orchestrator) ToggleReady(ctx context.Context, gameID, playerID uuid.UUID, ready bool) error {
	unlock := o.gameLocks.lock(gameID)
	defer unlock()

	p, err := o.store.GetPlayer(ctx, playerID)
	if err != nil {
		return storeErr(err, "player")
	}
	if p.GameID != gameID {
		return wrapInvalid("player does not belong to game")
	}
	if err := o.store.SetPlayerReady(ctx, playerID, ready); err != nil {
		return storeErr(err, "set ready")
	}

	o.broadcastPlayerList(ctx, gameID)
	return nil
}

// Players returns a game's roster.
func (o *Orchestrator) Players(ctx context.Context, gameID uuid.UUID) ([]storage.Player, error) {
	if _, err := o.store.GetGame(ctx, gameID); err != nil {
		return nil, storeErr(err, "game")
	}
	players, err := o.store.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, storeErr(err, "players")
	}
	return players, nil
}

// GameDetail returns a game row together with its roster.
func (o *Orchestrator) GameDetail(ctx context.Context, gameID uuid.UUID) (storage.Game, []storage.Player, error) {
	g, err := o.store.GetGame(ctx, gameID)
	if err != nil {
		return storage.Game{}, nil, storeErr(err, "game")
	}
	players, err := o.store.ListPlayers(ctx, gameID)
	if err != nil {
		return storage.Game{}, nil, storeErr(err, "players")
	}
	return g, players, nil
}

// ListGames returns all games, newest first.
func (o *Orchestrator) ListGames(ctx context.Context) ([]storage.Game, error) {
	games, err := o.store.ListGames(ctx)
	if err != nil {
		return nil, storeErr(err, "games")
	}
	return games, nil
}

// CurrentRound resolves the game's current-round pointer, if any.
func (o *Orchestrator) CurrentRound(ctx context.Context, gameID uuid.UUID) (uuid.UUID, bool, error) {
	val, err := o.coord.Get(ctx, keyCurrentRound(gameID))
	if errors.Is(err, coord.ErrNoKey) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, coordErr(err, "current round")
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, nil
	}
	return id, true, nil
}

func (o *Orchestrator) broadcastPlayerList(ctx context.Context, gameID uuid.UUID) {
	players, err := o.store.ListPlayers(ctx, gameID)
	if err != nil {
		// Broadcasts are best-effort; the roster read failing must not fail
		// the mutation that already committed.
		o.logger.Error("player list broadcast skipped", "game_id", gameID, "error", err)
		return
	}
	o.rooms.Broadcast(gameID, EventPlayerList, PlayerListPayload{Players: players})
}
