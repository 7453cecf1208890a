package game

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// RoundResults credits one point per vote to the voted submission's author.
// Results are derived from the vote/submission join, never stored.
func (o *Orchestrator) RoundResults(ctx context.Context, roundID uuid.UUID) (map[uuid.UUID]int, error) {
	if _, err := o.store.GetRound(ctx, roundID); err != nil {
		return nil, storeErr(err, "round")
	}
	points, err := o.store.RoundPoints(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "round points")
	}
	return points, nil
}

// GameScores sums round results across the whole game and attaches display
// names. Ordered by points descending, ties by player id ascending.
func (o *Orchestrator) GameScores(ctx context.Context, gameID uuid.UUID) ([]ScoreEntry, error) {
	if _, err := o.store.GetGame(ctx, gameID); err != nil {
		return nil, storeErr(err, "game")
	}
	points, err := o.store.GamePoints(ctx, gameID)
	if err != nil {
		return nil, storeErr(err, "game points")
	}
	players, err := o.store.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, storeErr(err, "players")
	}

	entries := make([]ScoreEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, ScoreEntry{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Points:     points[p.ID],
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].PlayerID.String() < entries[j].PlayerID.String()
	})
	return entries, nil
}
