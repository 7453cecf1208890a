package storage

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// Store wraps a gorm DB instance and provides helper methods for persisting
// game entities.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateQuestion inserts a single question.
func (s *Store) CreateQuestion(ctx context.Context, text string) (Question, error) {
	q := Question{Text: text}
	err := s.db.WithContext(ctx).Create(&q).Error
	return q, err
}

// ImportQuestions inserts a batch of question texts and returns how many were
// created. The batch is committed atomically.
func (s *Store) ImportQuestions(ctx context.Context, texts []string) (int, error) {
	if len(texts) == 0 {
		return 0, nil
	}
	questions := make([]Question, 0, len(texts))
	for _, t := range texts {
		questions = append(questions, Question{Text: t})
	}
	if err := s.db.WithContext(ctx).Create(&questions).Error; err != nil {
		return 0, err
	}
	return len(questions), nil
}

// ListQuestions returns every question in the bank.
func (s *Store) ListQuestions(ctx context.Context) ([]Question, error) {
	var questions []Question
	err := s.db.WithContext(ctx).Order("created_at, id").Find(&questions).Error
	return questions, err
}

func (s *Store) GetQuestion(ctx context.Context, id uuid.UUID) (Question, error) {
	var q Question
	err := s.db.WithContext(ctx).First(&q, "id = ?", id).Error
	return q, err
}

// CreateGameWithHost creates a game, its host player, and back-fills the
// game's host pointer in one transaction, so a game is never observable
// without its host.
func (s *Store) CreateGameWithHost(ctx context.Context, hostName string, roundTarget int) (Game, Player, error) {
	var game Game
	var host Player
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		game = Game{RoundTarget: roundTarget}
		if err := tx.Create(&game).Error; err != nil {
			return err
		}
		host = Player{Name: hostName, GameID: game.ID}
		if err := tx.Create(&host).Error; err != nil {
			return err
		}
		game.HostPlayerID = &host.ID
		return tx.Model(&Game{}).Where("id = ?", game.ID).Update("host_player_id", host.ID).Error
	})
	if err != nil {
		return Game{}, Player{}, err
	}
	return game, host, nil
}

func (s *Store) GetGame(ctx context.Context, id uuid.UUID) (Game, error) {
	var g Game
	err := s.db.WithContext(ctx).First(&g, "id = ?", id).Error
	return g, err
}

// ListGames returns all games, newest first.
func (s *Store) ListGames(ctx context.Context) ([]Game, error) {
	var games []Game
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&games).Error
	return games, err
}

// CreatePlayer inserts a player bound to a game.
func (s *Store) CreatePlayer(ctx context.Context, gameID uuid.UUID, name string) (Player, error) {
	p := Player{Name: name, GameID: gameID}
	err := s.db.WithContext(ctx).Create(&p).Error
	return p, err
}

func (s *Store) GetPlayer(ctx context.Context, id uuid.UUID) (Player, error) {
	var p Player
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return p, err
}

// ListPlayers returns a game's roster in join order.
func (s *Store) ListPlayers(ctx context.Context, gameID uuid.UUID) ([]Player, error) {
	var players []Player
	err := s.db.WithContext(ctx).Where("game_id = ?", gameID).Order("created_at, id").Find(&players).Error
	return players, err
}

func (s *Store) SetPlayerReady(ctx context.Context, id uuid.UUID, ready bool) error {
	return s.db.WithContext(ctx).Model(&Player{}).Where("id = ?", id).Update("ready", ready).Error
}

// CreateRound inserts a round in the collecting state.
func (s *Store) CreateRound(ctx context.Context, gameID, questionID uuid.UUID) (Round, error) {
	r := Round{GameID: gameID, QuestionID: questionID, State: RoundCollecting}
	err := s.db.WithContext(ctx).Create(&r).Error
	return r, err
}

func (s *Store) GetRound(ctx context.Context, id uuid.UUID) (Round, error) {
	var r Round
	err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error
	return r, err
}

// ListRounds returns a game's rounds in creation order.
func (s *Store) ListRounds(ctx context.Context, gameID uuid.UUID) ([]Round, error) {
	var rounds []Round
	err := s.db.WithContext(ctx).Where("game_id = ?", gameID).Order("created_at, id").Find(&rounds).Error
	return rounds, err
}

// AdvanceRoundState moves a round from one state to the next. The update is
// conditional on the current state, so concurrent callers cannot both win and
// the state can never move backwards. Returns whether this caller applied the
// transition.
func (s *Store) AdvanceRoundState(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&Round{}).
		Where("id = ? AND state = ?", id, from).
		Update("state", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateSubmission inserts a player's answer for a round.
func (s *Store) CreateSubmission(ctx context.Context, roundID, playerID uuid.UUID, text string) (Submission, error) {
	sub := Submission{RoundID: roundID, PlayerID: playerID, Text: text}
	err := s.db.WithContext(ctx).Create(&sub).Error
	return sub, err
}

func (s *Store) GetSubmission(ctx context.Context, id uuid.UUID) (Submission, error) {
	var sub Submission
	err := s.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	return sub, err
}

// ListSubmissions returns a round's submissions in creation order. Reveal
// labeling depends on this ordering being stable across calls.
func (s *Store) ListSubmissions(ctx context.Context, roundID uuid.UUID) ([]Submission, error) {
	var subs []Submission
	err := s.db.WithContext(ctx).Where("round_id = ?", roundID).Order("created_at, id").Find(&subs).Error
	return subs, err
}

// CountSubmissions returns the committed submission count for a round.
func (s *Store) CountSubmissions(ctx context.Context, roundID uuid.UUID) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Submission{}).Where("round_id = ?", roundID).Count(&n).Error
	return int(n), err
}

// HasSubmitted reports whether a player already answered this round.
func (s *Store) HasSubmitted(ctx context.Context, roundID, playerID uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Submission{}).
		Where("round_id = ? AND player_id = ?", roundID, playerID).Count(&n).Error
	return n > 0, err
}

// CreateVote inserts a vote.
func (s *Store) CreateVote(ctx context.Context, roundID, submissionID, voterID uuid.UUID) (Vote, error) {
	v := Vote{RoundID: roundID, SubmissionID: submissionID, VoterPlayerID: voterID}
	err := s.db.WithContext(ctx).Create(&v).Error
	return v, err
}

// HasVoted reports whether a voter already has an effective vote this round.
func (s *Store) HasVoted(ctx context.Context, roundID, voterID uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Vote{}).
		Where("round_id = ? AND voter_player_id = ?", roundID, voterID).Count(&n).Error
	return n > 0, err
}

// VoteCounts aggregates a round's votes per submission.
func (s *Store) VoteCounts(ctx context.Context, roundID uuid.UUID) (map[uuid.UUID]int, error) {
	type row struct {
		SubmissionID uuid.UUID
		N            int
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&Vote{}).
		Select("submission_id, count(*) as n").
		Where("round_id = ?", roundID).
		Group("submission_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		counts[r.SubmissionID] = r.N
	}
	return counts, nil
}

// CountDistinctVoters returns how many different players voted this round.
func (s *Store) CountDistinctVoters(ctx context.Context, roundID uuid.UUID) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Vote{}).
		Where("round_id = ?", roundID).
		Distinct("voter_player_id").Count(&n).Error
	return int(n), err
}

// RoundPoints aggregates one point per vote to the voted submission's author.
func (s *Store) RoundPoints(ctx context.Context, roundID uuid.UUID) (map[uuid.UUID]int, error) {
	return s.pointsByAuthor(ctx, s.db.WithContext(ctx).Model(&Vote{}).Where("votes.round_id = ?", roundID))
}

// GamePoints aggregates points by author across every round of a game.
func (s *Store) GamePoints(ctx context.Context, gameID uuid.UUID) (map[uuid.UUID]int, error) {
	return s.pointsByAuthor(ctx, s.db.WithContext(ctx).Model(&Vote{}).
		Joins("JOIN rounds ON rounds.id = votes.round_id").
		Where("rounds.game_id = ?", gameID))
}

func (s *Store) pointsByAuthor(ctx context.Context, q *gorm.DB) (map[uuid.UUID]int, error) {
	type row struct {
		PlayerID uuid.UUID
		N        int
	}
	var rows []row
	err := q.
		Select("submissions.player_id, count(*) as n").
		Joins("JOIN submissions ON submissions.id = votes.submission_id").
		Group("submissions.player_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	points := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		points[r.PlayerID] = r.N
	}
	return points, nil
}
