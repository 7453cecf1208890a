package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"answerparty/internal/coord"
	"answerparty/internal/storage"
)

// recorder captures broadcasts so tests can assert on event delivery.
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	gameID uuid.UUID
	name   string
	data   any
}

func (r *recorder) Broadcast(gameID uuid.UUID, event string, data any) {
	r.mu.Lock()
	r.events = append(r.events, recordedEvent{gameID: gameID, name: event, data: data})
	r.mu.Unlock()
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.name == name {
			n++
		}
	}
	return n
}

func (r *recorder) last(name string) (recordedEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].name == name {
			return r.events[i], true
		}
	}
	return recordedEvent{}, false
}

func newTestOrchestrator() (*Orchestrator, *storage.MemoryStore, *recorder) {
	store := storage.NewMemoryStore()
	rec := &recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, coord.NewMemory(), rec, logger), store, rec
}

func seedQuestions(t *testing.T, o *Orchestrator, texts ...string) {
	t.Helper()
	if _, err := o.ImportQuestions(context.Background(), texts); err != nil {
		t.Fatalf("seed questions: %v", err)
	}
}

func TestCreateGameSetsHost(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()

	g, host, err := o.CreateGame(ctx, "Alice", 5)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if g.HostPlayerID == nil || *g.HostPlayerID != host.ID {
		t.Fatalf("expected host back-filled on game, got %v", g.HostPlayerID)
	}
	if host.GameID != g.ID {
		t.Fatalf("host bound to wrong game")
	}
	if g.RoundTarget != 5 {
		t.Fatalf("expected round target 5, got %d", g.RoundTarget)
	}
}

func TestCreateGameDefaults(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	g, host, err := o.CreateGame(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if host.Name != DefaultHostName {
		t.Fatalf("expected default host name, got %q", host.Name)
	}
	if g.RoundTarget != DefaultRoundCount {
		t.Fatalf("expected default round target, got %d", g.RoundTarget)
	}
}

func TestJoinGameNotFound(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	_, err := o.JoinGame(context.Background(), uuid.New(), "Bob", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJoinGameReconnectIdempotent(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	g, _, _ := o.CreateGame(ctx, "Alice", 3)

	bob, err := o.JoinGame(ctx, g.ID, "Bob", nil)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	again, err := o.JoinGame(ctx, g.ID, "Bob", &bob.ID)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if again.ID != bob.ID {
		t.Fatalf("reconnection created a new player")
	}
	players, _ := o.Players(ctx, g.ID)
	if len(players) != 2 {
		t.Fatalf("expected 2 players after reconnect, got %d", len(players))
	}
}

func TestJoinGameUnknownExistingIDCreatesPlayer(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	g, _, _ := o.CreateGame(ctx, "Alice", 3)

	stale := uuid.New()
	p, err := o.JoinGame(ctx, g.ID, "Bob", &stale)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if p.ID == stale {
		t.Fatalf("stale id should not be reused")
	}
}

func TestStartGameForbiddenForNonHost(t *testing.T) {
	o, _, rec := newTestOrchestrator()
	ctx := context.Background()
	g, _, _ := o.CreateGame(ctx, "Alice", 3)
	bob, _ := o.JoinGame(ctx, g.ID, "Bob", nil)

	if err := o.StartGame(ctx, g.ID, bob.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if rec.count(EventGameStarted) != 0 {
		t.Fatalf("game_started broadcast despite rejection")
	}
}

func TestStartGameBroadcasts(t *testing.T) {
	o, _, rec := newTestOrchestrator()
	ctx := context.Background()
	g, host, _ := o.CreateGame(ctx, "Alice", 3)

	if err := o.StartGame(ctx, g.ID, host.ID); err != nil {
		t.Fatalf("start game: %v", err)
	}
	ev, ok := rec.last(EventGameStarted)
	if !ok {
		t.Fatalf("expected game_started broadcast")
	}
	payload := ev.data.(GameStartedPayload)
	if payload.RoundTarget != 3 {
		t.Fatalf("expected round target in payload, got %d", payload.RoundTarget)
	}
}

func TestStartRoundForbiddenConsumesNothing(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1")
	g, host, _ := o.CreateGame(ctx, "Alice", 3)
	bob, _ := o.JoinGame(ctx, g.ID, "Bob", nil)

	if _, err := o.StartRound(ctx, g.ID, bob.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// No round row and no round number consumed: the next legitimate round
	// must be number 1.
	info, err := o.StartRound(ctx, g.ID, host.ID)
	if err != nil {
		t.Fatalf("start round: %v", err)
	}
	if info.RoundNumber != 1 {
		t.Fatalf("round counter consumed by rejected call: got number %d", info.RoundNumber)
	}
}

func TestStartRoundNoQuestionReuse(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1", "q2", "q3")
	g, host, _ := o.CreateGame(ctx, "Alice", 5)

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 3; i++ {
		info, err := o.StartRound(ctx, g.ID, host.ID)
		if err != nil {
			t.Fatalf("round %d: %v", i+1, err)
		}
		if seen[info.Question.ID] {
			t.Fatalf("question %s selected twice", info.Question.ID)
		}
		seen[info.Question.ID] = true
		if info.RoundNumber != int64(i+1) {
			t.Fatalf("expected round number %d, got %d", i+1, info.RoundNumber)
		}
	}

	if _, err := o.StartRound(ctx, g.ID, host.ID); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted after bank used up, got %v", err)
	}
}

func TestStartRoundUpdatesCurrentPointer(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1", "q2")
	g, host, _ := o.CreateGame(ctx, "Alice", 5)

	first, _ := o.StartRound(ctx, g.ID, host.ID)
	second, _ := o.StartRound(ctx, g.ID, host.ID)

	current, ok, err := o.CurrentRound(ctx, g.ID)
	if err != nil || !ok {
		t.Fatalf("current round: ok=%v err=%v", ok, err)
	}
	if current != second.RoundID || current == first.RoundID {
		t.Fatalf("current-round pointer not updated")
	}
}

func TestGameRoundsHistory(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1", "q2")
	g, host, _ := o.CreateGame(ctx, "Alice", 5)

	first, _ := o.StartRound(ctx, g.ID, host.ID)
	if _, err := o.RevealRound(ctx, first.RoundID, host.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	second, _ := o.StartRound(ctx, g.ID, host.ID)

	rounds, err := o.GameRounds(ctx, g.ID)
	if err != nil {
		t.Fatalf("game rounds: %v", err)
	}
	if len(rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(rounds))
	}
	if rounds[0].RoundID != first.RoundID || rounds[1].RoundID != second.RoundID {
		t.Fatalf("rounds out of creation order")
	}
	if rounds[0].State != storage.RoundVoting || rounds[1].State != storage.RoundCollecting {
		t.Fatalf("unexpected states: %s, %s", rounds[0].State, rounds[1].State)
	}
	if rounds[0].Question.ID != first.Question.ID {
		t.Fatalf("round history question mismatch")
	}
}

func TestSubmitAnswerDuplicateRejected(t *testing.T) {
	o, _, rec := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1")
	g, host, _ := o.CreateGame(ctx, "Alice", 3)
	info, _ := o.StartRound(ctx, g.ID, host.ID)

	if _, err := o.SubmitAnswer(ctx, info.RoundID, host.ID, "foo"); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if _, err := o.SubmitAnswer(ctx, info.RoundID, host.ID, "bar"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate submission, got %v", err)
	}
	if rec.count(EventSubmissionReceived) != 1 {
		t.Fatalf("expected one submission_received broadcast")
	}
}

func TestSubmitAnswerWrongGame(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1", "q2")
	g1, host1, _ := o.CreateGame(ctx, "Alice", 3)
	_, host2, _ := o.CreateGame(ctx, "Mallory", 3)
	info, _ := o.StartRound(ctx, g1.ID, host1.ID)

	if _, err := o.SubmitAnswer(ctx, info.RoundID, host2.ID, "foo"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestConcurrentDuplicateSubmissions(t *testing.T) {
	o, store, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1")
	g, host, _ := o.CreateGame(ctx, "Alice", 3)
	info, _ := o.StartRound(ctx, g.ID, host.ID)

	const n = 16
	var wg sync.WaitGroup
	var okCount int32
	var mu sync.Mutex
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := o.SubmitAnswer(ctx, info.RoundID, host.ID, "same"); err == nil {
				mu.Lock()
				okCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if okCount != 1 {
		t.Fatalf("expected exactly one submission to succeed, got %d", okCount)
	}
	subs, _ := store.ListSubmissions(ctx, info.RoundID)
	if len(subs) != 1 {
		t.Fatalf("expected one stored submission, got %d", len(subs))
	}
}

func TestRevealAnonymizesInCreationOrder(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1")
	g, host, _ := o.CreateGame(ctx, "Alice", 3)
	bob, _ := o.JoinGame(ctx, g.ID, "Bob", nil)
	info, _ := o.StartRound(ctx, g.ID, host.ID)

	first, _ := o.SubmitAnswer(ctx, info.RoundID, host.ID, "foo")
	second, _ := o.SubmitAnswer(ctx, info.RoundID, bob.ID, "bar")

	revealed, err := o.RevealRound(ctx, info.RoundID, host.ID)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if len(revealed) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(revealed))
	}
	if revealed[0].SubmissionID != first.ID || revealed[0].Label != "A1" {
		t.Fatalf("first submission not labeled A1")
	}
	if revealed[1].SubmissionID != second.ID || revealed[1].Label != "A2" {
		t.Fatalf("second submission not labeled A2")
	}
}

func TestRevealTwiceConflicts(t *testing.T) {
	o, store, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1")
	g, host, _ := o.CreateGame(ctx, "Alice", 3)
	info, _ := o.StartRound(ctx, g.ID, host.ID)

	if _, err := o.RevealRound(ctx, info.RoundID, host.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if _, err := o.RevealRound(ctx, info.RoundID, host.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on second reveal, got %v", err)
	}
	round, _ := store.GetRound(ctx, info.RoundID)
	if round.State != storage.RoundVoting {
		t.Fatalf("round state regressed: %s", round.State)
	}
}

func TestRevealForbiddenForNonHost(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1")
	g, host, _ := o.CreateGame(ctx, "Alice", 3)
	bob, _ := o.JoinGame(ctx, g.ID, "Bob", nil)
	info, _ := o.StartRound(ctx, g.ID, host.ID)

	if _, err := o.RevealRound(ctx, info.RoundID, bob.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestVoteBeforeReveal(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1")
	g, host, _ := o.CreateGame(ctx, "Alice", 3)
	info, _ := o.StartRound(ctx, g.ID, host.ID)
	sub, _ := o.SubmitAnswer(ctx, info.RoundID, host.ID, "foo")

	err := o.VoteSubmission(ctx, info.RoundID, host.ID, sub.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict before reveal, got %v", err)
	}
}

func TestVoteForForeignSubmission(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1", "q2")
	g, host, _ := o.CreateGame(ctx, "Alice", 3)
	bob, _ := o.JoinGame(ctx, g.ID, "Bob", nil)

	first, _ := o.StartRound(ctx, g.ID, host.ID)
	subOld, _ := o.SubmitAnswer(ctx, first.RoundID, host.ID, "old")
	if _, err := o.RevealRound(ctx, first.RoundID, host.ID); err != nil {
		t.Fatalf("reveal first: %v", err)
	}

	second, _ := o.StartRound(ctx, g.ID, host.ID)
	if _, err := o.SubmitAnswer(ctx, second.RoundID, bob.ID, "new"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := o.RevealRound(ctx, second.RoundID, host.ID); err != nil {
		t.Fatalf("reveal second: %v", err)
	}

	// Voting in round two for a submission belonging to round one.
	err := o.VoteSubmission(ctx, second.RoundID, bob.ID, subOld.ID)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestConcurrentDuplicateVotes(t *testing.T) {
	o, store, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1")
	g, host, _ := o.CreateGame(ctx, "Alice", 3)
	bob, _ := o.JoinGame(ctx, g.ID, "Bob", nil)
	info, _ := o.StartRound(ctx, g.ID, host.ID)
	sub, _ := o.SubmitAnswer(ctx, info.RoundID, host.ID, "foo")
	if _, err := o.SubmitAnswer(ctx, info.RoundID, bob.ID, "bar"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := o.RevealRound(ctx, info.RoundID, host.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	okCount := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := o.VoteSubmission(ctx, info.RoundID, bob.ID, sub.ID); err == nil {
				mu.Lock()
				okCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if okCount != 1 {
		t.Fatalf("expected exactly one vote to succeed, got %d", okCount)
	}
	voters, _ := store.CountDistinctVoters(ctx, info.RoundID)
	if voters != 1 {
		t.Fatalf("expected 1 distinct voter, got %d", voters)
	}
}

func TestQuorumFinalizesExactlyOnce(t *testing.T) {
	o, store, rec := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1")
	g, host, _ := o.CreateGame(ctx, "Alice", 3)
	bob, _ := o.JoinGame(ctx, g.ID, "Bob", nil)
	info, _ := o.StartRound(ctx, g.ID, host.ID)

	aliceSub, _ := o.SubmitAnswer(ctx, info.RoundID, host.ID, "foo")
	bobSub, _ := o.SubmitAnswer(ctx, info.RoundID, bob.ID, "bar")
	if _, err := o.RevealRound(ctx, info.RoundID, host.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	// Cross-votes land concurrently; quorum is crossed by whichever commits
	// second.
	var wg sync.WaitGroup
	for voter, target := range map[uuid.UUID]uuid.UUID{host.ID: bobSub.ID, bob.ID: aliceSub.ID} {
		wg.Add(1)
		go func(voter, target uuid.UUID) {
			defer wg.Done()
			if err := o.VoteSubmission(ctx, info.RoundID, voter, target); err != nil {
				t.Errorf("vote: %v", err)
			}
		}(voter, target)
	}
	wg.Wait()

	round, _ := store.GetRound(ctx, info.RoundID)
	if round.State != storage.RoundFinished {
		t.Fatalf("expected round finished, got %s", round.State)
	}
	if n := rec.count(EventRoundFinished); n != 1 {
		t.Fatalf("expected exactly one round_finished broadcast, got %d", n)
	}
	// 1-1 tie breaks to the earliest submission in anonymized order.
	ev, _ := rec.last(EventRoundFinished)
	payload := ev.data.(RoundFinishedPayload)
	if payload.WinnerSubmissionID != aliceSub.ID {
		t.Fatalf("tie should break to the first submission")
	}
}

func TestVoteAfterFinishRejected(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	ctx := context.Background()
	seedQuestions(t, o, "q1")
	g, host, _ := o.CreateGame(ctx, "Alice", 3)
	info, _ := o.StartRound(ctx, g.ID, host.ID)
	sub, _ := o.SubmitAnswer(ctx, info.RoundID, host.ID, "foo")
	if _, err := o.RevealRound(ctx, info.RoundID, host.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	// Sole player votes; quorum of one finishes the round.
	if err := o.VoteSubmission(ctx, info.RoundID, host.ID, sub.ID); err != nil {
		t.Fatalf("vote: %v", err)
	}

	// A latecomer cannot vote into a finished round.
	late, _ := o.JoinGame(ctx, g.ID, "Late", nil)
	if err := o.VoteSubmission(ctx, info.RoundID, late.ID, sub.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for finished round, got %v", err)
	}
}
