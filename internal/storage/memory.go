package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a map-backed record store with the same behavior as the
// database-backed Store. It serves tests and DB-less development runs.
// Slices keep insertion order, which doubles as creation order.
type MemoryStore struct {
	mu          sync.RWMutex
	questions   []Question
	games       map[uuid.UUID]*Game
	gameOrder   []uuid.UUID
	players     map[uuid.UUID]*Player
	playerOrder map[uuid.UUID][]uuid.UUID // gameID -> playerIDs
	rounds      map[uuid.UUID]*Round
	roundOrder  map[uuid.UUID][]uuid.UUID // gameID -> roundIDs
	submissions map[uuid.UUID][]Submission // roundID -> submissions
	votes       map[uuid.UUID][]Vote       // roundID -> votes
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:       make(map[uuid.UUID]*Game),
		players:     make(map[uuid.UUID]*Player),
		playerOrder: make(map[uuid.UUID][]uuid.UUID),
		rounds:      make(map[uuid.UUID]*Round),
		roundOrder:  make(map[uuid.UUID][]uuid.UUID),
		submissions: make(map[uuid.UUID][]Submission),
		votes:       make(map[uuid.UUID][]Vote),
	}
}

func (m *MemoryStore) CreateQuestion(_ context.Context, text string) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := Question{ID: uuid.New(), Text: text, CreatedAt: time.Now()}
	m.questions = append(m.questions, q)
	return q, nil
}

func (m *MemoryStore) ImportQuestions(ctx context.Context, texts []string) (int, error) {
	for _, t := range texts {
		if _, err := m.CreateQuestion(ctx, t); err != nil {
			return 0, err
		}
	}
	return len(texts), nil
}

func (m *MemoryStore) ListQuestions(_ context.Context) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, len(m.questions))
	copy(out, m.questions)
	return out, nil
}

func (m *MemoryStore) GetQuestion(_ context.Context, id uuid.UUID) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return Question{}, ErrNotFound
}

func (m *MemoryStore) CreateGameWithHost(_ context.Context, hostName string, roundTarget int) (Game, Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := &Game{ID: uuid.New(), RoundTarget: roundTarget, CreatedAt: time.Now()}
	p := &Player{ID: uuid.New(), Name: hostName, GameID: g.ID, CreatedAt: time.Now()}
	hostID := p.ID
	g.HostPlayerID = &hostID
	m.games[g.ID] = g
	m.gameOrder = append(m.gameOrder, g.ID)
	m.players[p.ID] = p
	m.playerOrder[g.ID] = append(m.playerOrder[g.ID], p.ID)
	return *g, *p, nil
}

func (m *MemoryStore) GetGame(_ context.Context, id uuid.UUID) (Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return Game{}, ErrNotFound
	}
	return *g, nil
}

func (m *MemoryStore) ListGames(_ context.Context) ([]Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Game, 0, len(m.gameOrder))
	// Newest first, matching the database store.
	for i := len(m.gameOrder) - 1; i >= 0; i-- {
		out = append(out, *m.games[m.gameOrder[i]])
	}
	return out, nil
}

func (m *MemoryStore) CreatePlayer(_ context.Context, gameID uuid.UUID, name string) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &Player{ID: uuid.New(), Name: name, GameID: gameID, CreatedAt: time.Now()}
	m.players[p.ID] = p
	m.playerOrder[gameID] = append(m.playerOrder[gameID], p.ID)
	return *p, nil
}

func (m *MemoryStore) GetPlayer(_ context.Context, id uuid.UUID) (Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return Player{}, ErrNotFound
	}
	return *p, nil
}

func (m *MemoryStore) ListPlayers(_ context.Context, gameID uuid.UUID) ([]Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.playerOrder[gameID]
	out := make([]Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.players[id])
	}
	return out, nil
}

func (m *MemoryStore) SetPlayerReady(_ context.Context, id uuid.UUID, ready bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return ErrNotFound
	}
	p.Ready = ready
	return nil
}

func (m *MemoryStore) CreateRound(_ context.Context, gameID, questionID uuid.UUID) (Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &Round{ID: uuid.New(), GameID: gameID, QuestionID: questionID, State: RoundCollecting, CreatedAt: time.Now()}
	m.rounds[r.ID] = r
	m.roundOrder[gameID] = append(m.roundOrder[gameID], r.ID)
	return *r, nil
}

func (m *MemoryStore) GetRound(_ context.Context, id uuid.UUID) (Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rounds[id]
	if !ok {
		return Round{}, ErrNotFound
	}
	return *r, nil
}

func (m *MemoryStore) ListRounds(_ context.Context, gameID uuid.UUID) ([]Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.roundOrder[gameID]
	out := make([]Round, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.rounds[id])
	}
	return out, nil
}

func (m *MemoryStore) AdvanceRoundState(_ context.Context, id uuid.UUID, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok || r.State != from {
		return false, nil
	}
	r.State = to
	r.UpdatedAt = time.Now()
	return true, nil
}

func (m *MemoryStore) CreateSubmission(_ context.Context, roundID, playerID uuid.UUID, text string) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := Submission{ID: uuid.New(), RoundID: roundID, PlayerID: playerID, Text: text, CreatedAt: time.Now()}
	m.submissions[roundID] = append(m.submissions[roundID], sub)
	return sub, nil
}

func (m *MemoryStore) GetSubmission(_ context.Context, id uuid.UUID) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, subs := range m.submissions {
		for _, sub := range subs {
			if sub.ID == id {
				return sub, nil
			}
		}
	}
	return Submission{}, ErrNotFound
}

func (m *MemoryStore) ListSubmissions(_ context.Context, roundID uuid.UUID) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Submission, len(m.submissions[roundID]))
	copy(out, m.submissions[roundID])
	return out, nil
}

func (m *MemoryStore) CountSubmissions(_ context.Context, roundID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.submissions[roundID]), nil
}

func (m *MemoryStore) HasSubmitted(_ context.Context, roundID, playerID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sub := range m.submissions[roundID] {
		if sub.PlayerID == playerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) CreateVote(_ context.Context, roundID, submissionID, voterID uuid.UUID) (Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := Vote{ID: uuid.New(), RoundID: roundID, SubmissionID: submissionID, VoterPlayerID: voterID, CreatedAt: time.Now()}
	m.votes[roundID] = append(m.votes[roundID], v)
	return v, nil
}

func (m *MemoryStore) HasVoted(_ context.Context, roundID, voterID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.votes[roundID] {
		if v.VoterPlayerID == voterID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) VoteCounts(_ context.Context, roundID uuid.UUID) (map[uuid.UUID]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[uuid.UUID]int)
	for _, v := range m.votes[roundID] {
		counts[v.SubmissionID]++
	}
	return counts, nil
}

func (m *MemoryStore) CountDistinctVoters(_ context.Context, roundID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	voters := make(map[uuid.UUID]struct{})
	for _, v := range m.votes[roundID] {
		voters[v.VoterPlayerID] = struct{}{}
	}
	return len(voters), nil
}

func (m *MemoryStore) RoundPoints(_ context.Context, roundID uuid.UUID) (map[uuid.UUID]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pointsLocked(roundID), nil
}

func (m *MemoryStore) GamePoints(_ context.Context, gameID uuid.UUID) (map[uuid.UUID]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	points := make(map[uuid.UUID]int)
	for _, roundID := range m.roundOrder[gameID] {
		for author, n := range m.pointsLocked(roundID) {
			points[author] += n
		}
	}
	return points, nil
}

func (m *MemoryStore) pointsLocked(roundID uuid.UUID) map[uuid.UUID]int {
	authors := make(map[uuid.UUID]uuid.UUID, len(m.submissions[roundID]))
	for _, sub := range m.submissions[roundID] {
		authors[sub.ID] = sub.PlayerID
	}
	points := make(map[uuid.UUID]int)
	for _, v := range m.votes[roundID] {
		if author, ok := authors[v.SubmissionID]; ok {
			points[author]++
		}
	}
	return points
}
