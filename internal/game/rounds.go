package game

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"answerparty/internal/coord"
	"answerparty/internal/storage"
)

// StartRound creates the game's next round: picks an unused question at
// random, records it as used, bumps the display round number and repoints the
// current-round pointer. Serialized per game, so concurrent calls cannot
// leave the pointer and the round row disagreeing — the last caller through
// the lock wins both.
func (o *Orchestrator) StartRound(ctx context.Context, gameID, actingPlayerID uuid.UUID) (RoundInfo, error) {
	unlock := o.gameLocks.lock(gameID)
	defer unlock()

	g, err := o.store.GetGame(ctx, gameID)
	if err != nil {
		return RoundInfo{}, storeErr(err, "game")
	}
	if g.HostPlayerID == nil || *g.HostPlayerID != actingPlayerID {
		return RoundInfo{}, ErrForbidden
	}

	question, err := o.pickQuestion(ctx, gameID)
	if err != nil {
		return RoundInfo{}, err
	}

	round, err := o.store.CreateRound(ctx, gameID, question.ID)
	if err != nil {
		return RoundInfo{}, storeErr(err, "create round")
	}
	number, err := o.coord.Incr(ctx, keyRoundSeq(gameID))
	if err != nil {
		return RoundInfo{}, coordErr(err, "round sequence")
	}
	if err := o.coord.SAdd(ctx, keyUsedQuestions(gameID), question.ID.String()); err != nil {
		return RoundInfo{}, coordErr(err, "mark question used")
	}
	if err := o.coord.Set(ctx, keyRoundQuestion(round.ID), question.ID.String()); err != nil {
		return RoundInfo{}, coordErr(err, "round question")
	}
	if err := o.coord.Set(ctx, keyRevealed(round.ID), "0"); err != nil {
		return RoundInfo{}, coordErr(err, "reveal flag")
	}
	if err := o.coord.Set(ctx, keyCurrentRound(gameID), round.ID.String()); err != nil {
		return RoundInfo{}, coordErr(err, "current round")
	}

	info := RoundInfo{RoundID: round.ID, RoundNumber: number, Question: question}
	o.rooms.Broadcast(gameID, EventRoundStarted, info)
	o.logger.Info("round started", "game_id", gameID, "round_id", round.ID, "round_number", number)
	return info, nil
}

// pickQuestion draws uniformly from the bank minus the game's used-question
// set. A question id is never chosen twice for the same game while
// alternatives remain.
func (o *Orchestrator) pickQuestion(ctx context.Context, gameID uuid.UUID) (storage.Question, error) {
	questions, err := o.store.ListQuestions(ctx)
	if err != nil {
		return storage.Question{}, storeErr(err, "questions")
	}
	used, err := o.coord.SMembers(ctx, keyUsedQuestions(gameID))
	if err != nil {
		return storage.Question{}, coordErr(err, "used questions")
	}

	candidates := questions[:0:0]
	for _, q := range questions {
		if _, taken := used[q.ID.String()]; !taken {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return storage.Question{}, ErrExhausted
	}
	return candidates[rand.Intn(len(candidates))], nil
}

// RoundSummary is one entry of a game's round history.
type RoundSummary struct {
	RoundID  uuid.UUID        `json:"round_id"`
	State    string           `json:"state"`
	Question storage.Question `json:"question"`
}

// GameRounds returns a game's rounds in creation order with their questions.
func (o *Orchestrator) GameRounds(ctx context.Context, gameID uuid.UUID) ([]RoundSummary, error) {
	if _, err := o.store.GetGame(ctx, gameID); err != nil {
		return nil, storeErr(err, "game")
	}
	rounds, err := o.store.ListRounds(ctx, gameID)
	if err != nil {
		return nil, storeErr(err, "rounds")
	}
	out := make([]RoundSummary, 0, len(rounds))
	for _, r := range rounds {
		q, err := o.store.GetQuestion(ctx, r.QuestionID)
		if err != nil {
			return nil, storeErr(err, "question")
		}
		out = append(out, RoundSummary{RoundID: r.ID, State: r.State, Question: q})
	}
	return out, nil
}

// SubmitAnswer records a player's answer for the round. At most one answer
// per player per round; duplicates are rejected, not silently absorbed.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, roundID, playerID uuid.UUID, text string) (storage.Submission, error) {
	unlock := o.roundLocks.lock(roundID)
	defer unlock()

	round, err := o.store.GetRound(ctx, roundID)
	if err != nil {
		return storage.Submission{}, storeErr(err, "round")
	}
	player, err := o.store.GetPlayer(ctx, playerID)
	if err != nil {
		return storage.Submission{}, storeErr(err, "player")
	}
	if player.GameID != round.GameID {
		return storage.Submission{}, wrapInvalid("player does not belong to the round's game")
	}
	if round.State != storage.RoundCollecting {
		return storage.Submission{}, wrapConflict("round is not collecting answers")
	}
	already, err := o.store.HasSubmitted(ctx, roundID, playerID)
	if err != nil {
		return storage.Submission{}, storeErr(err, "submission check")
	}
	if already {
		return storage.Submission{}, wrapConflict("player already submitted this round")
	}

	sub, err := o.store.CreateSubmission(ctx, roundID, playerID, text)
	if err != nil {
		return storage.Submission{}, storeErr(err, "create submission")
	}
	count, err := o.store.CountSubmissions(ctx, roundID)
	if err != nil {
		// The submission committed; the advisory count is best-effort.
		o.logger.Error("submission count failed", "round_id", roundID, "error", err)
		count = 0
	}

	o.rooms.Broadcast(round.GameID, EventSubmissionReceived, SubmissionReceivedPayload{
		RoundID:      roundID,
		CurrentCount: count,
	})
	return sub, nil
}

// RevealRound transitions collecting -> voting and publishes the anonymized
// submissions. Host only. Labels are assigned over creation order, so
// repeated reads of the revealed list agree.
func (o *Orchestrator) RevealRound(ctx context.Context, roundID, actingPlayerID uuid.UUID) ([]RevealedSubmission, error) {
	unlock := o.roundLocks.lock(roundID)
	defer unlock()

	round, err := o.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "round")
	}
	g, err := o.store.GetGame(ctx, round.GameID)
	if err != nil {
		return nil, storeErr(err, "game")
	}
	if g.HostPlayerID == nil || *g.HostPlayerID != actingPlayerID {
		return nil, ErrForbidden
	}

	advanced, err := o.store.AdvanceRoundState(ctx, roundID, storage.RoundCollecting, storage.RoundVoting)
	if err != nil {
		return nil, storeErr(err, "advance round")
	}
	if !advanced {
		return nil, wrapConflict("round is not collecting")
	}
	if err := o.coord.Set(ctx, keyRevealed(roundID), "1"); err != nil {
		return nil, coordErr(err, "reveal flag")
	}

	revealed, err := o.revealedSubmissions(ctx, roundID)
	if err != nil {
		return nil, err
	}

	o.rooms.Broadcast(round.GameID, EventRoundRevealed, RoundRevealedPayload{
		RoundID:     roundID,
		Submissions: revealed,
	})
	o.logger.Info("round revealed", "round_id", roundID, "submissions", len(revealed))
	return revealed, nil
}

// revealedSubmissions returns the round's submissions in anonymized order
// with sequential labels A1, A2, ...
func (o *Orchestrator) revealedSubmissions(ctx context.Context, roundID uuid.UUID) ([]RevealedSubmission, error) {
	subs, err := o.store.ListSubmissions(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "submissions")
	}
	sortSubmissions(subs)
	revealed := make([]RevealedSubmission, 0, len(subs))
	for i, sub := range subs {
		revealed = append(revealed, RevealedSubmission{
			SubmissionID: sub.ID,
			Label:        anonLabel(i),
			Text:         sub.Text,
		})
	}
	return revealed, nil
}

// sortSubmissions orders by creation time, breaking timestamp ties by id so
// the anonymized order is total and reproducible.
func sortSubmissions(subs []storage.Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		if !subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].CreatedAt.Before(subs[j].CreatedAt)
		}
		return subs[i].ID.String() < subs[j].ID.String()
	})
}

func anonLabel(i int) string {
	return "A" + strconv.Itoa(i+1)
}

// VoteSubmission records a vote, publishes updated counts, and finalizes the
// round once every player has voted. The per-round lock plus the finalized
// SetNX flag make the finalize-and-broadcast run exactly once even when the
// last two votes land together.
func (o *Orchestrator) VoteSubmission(ctx context.Context, roundID, voterPlayerID, submissionID uuid.UUID) error {
	unlock := o.roundLocks.lock(roundID)
	defer unlock()

	round, err := o.store.GetRound(ctx, roundID)
	if err != nil {
		return storeErr(err, "round")
	}
	revealed, err := o.coord.Get(ctx, keyRevealed(roundID))
	if err != nil && !errors.Is(err, coord.ErrNoKey) {
		return coordErr(err, "reveal flag")
	}
	if revealed != "1" {
		return wrapConflict("round not revealed")
	}
	if round.State == storage.RoundFinished {
		return wrapConflict("round already finished")
	}

	voter, err := o.store.GetPlayer(ctx, voterPlayerID)
	if err != nil {
		return storeErr(err, "player")
	}
	if voter.GameID != round.GameID {
		return wrapInvalid("voter does not belong to the round's game")
	}
	sub, err := o.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return storeErr(err, "submission")
	}
	if sub.RoundID != roundID {
		return wrapInvalid("submission does not belong to this round")
	}
	voted, err := o.store.HasVoted(ctx, roundID, voterPlayerID)
	if err != nil {
		return storeErr(err, "vote check")
	}
	if voted {
		return wrapConflict("player already voted this round")
	}

	if _, err := o.store.CreateVote(ctx, roundID, submissionID, voterPlayerID); err != nil {
		return storeErr(err, "create vote")
	}

	counts, err := o.store.VoteCounts(ctx, roundID)
	if err != nil {
		return storeErr(err, "vote counts")
	}
	o.rooms.Broadcast(round.GameID, EventVoteUpdate, VoteUpdatePayload{
		RoundID: roundID,
		Counts:  stringKeyed(counts),
	})

	return o.maybeFinalize(ctx, round, counts)
}

// maybeFinalize closes the round once distinct voters reach the player count.
func (o *Orchestrator) maybeFinalize(ctx context.Context, round storage.Round, counts map[uuid.UUID]int) error {
	voters, err := o.store.CountDistinctVoters(ctx, round.ID)
	if err != nil {
		return storeErr(err, "voter count")
	}
	players, err := o.store.ListPlayers(ctx, round.GameID)
	if err != nil {
		return storeErr(err, "players")
	}
	if voters < len(players) {
		return nil
	}

	won, err := o.coord.SetNX(ctx, keyFinalized(round.ID), "1")
	if err != nil {
		return coordErr(err, "finalize flag")
	}
	if !won {
		return nil
	}
	if _, err := o.store.AdvanceRoundState(ctx, round.ID, storage.RoundVoting, storage.RoundFinished); err != nil {
		return storeErr(err, "finish round")
	}

	winner, err := o.winningSubmission(ctx, round.ID, counts)
	if err != nil {
		return err
	}
	o.rooms.Broadcast(round.GameID, EventRoundFinished, RoundFinishedPayload{
		RoundID:            round.ID,
		WinnerSubmissionID: winner,
	})
	o.logger.Info("round finished", "round_id", round.ID, "winner_submission_id", winner)
	return nil
}

// winningSubmission picks the submission with the most votes. Ties break to
// the earliest submission in anonymized (creation) order.
func (o *Orchestrator) winningSubmission(ctx context.Context, roundID uuid.UUID, counts map[uuid.UUID]int) (uuid.UUID, error) {
	subs, err := o.store.ListSubmissions(ctx, roundID)
	if err != nil {
		return uuid.Nil, storeErr(err, "submissions")
	}
	sortSubmissions(subs)

	var winner uuid.UUID
	best := -1
	for _, sub := range subs {
		if n := counts[sub.ID]; n > best {
			winner = sub.ID
			best = n
		}
	}
	return winner, nil
}

func stringKeyed(counts map[uuid.UUID]int) map[string]int {
	out := make(map[string]int, len(counts))
	for id, n := range counts {
		out[id.String()] = n
	}
	return out
}
