// Package rooms delivers domain events to the clients watching a game. It is
// the room broadcaster: best-effort, at-least-once from the caller's point of
// view, never authoritative for state.
package rooms

import (
	"sync"

	"github.com/google/uuid"
)

// Event is a named payload broadcast to a game's room.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Hub manages one room per game.
type Hub struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
}

// Room fans events out to its subscribers.
type Room struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]*Room)}
}

// Room retrieves an existing room or creates a new one.
func (h *Hub) Room(gameID uuid.UUID) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[gameID]; ok {
		return r
	}
	r := &Room{subscribers: make(map[chan Event]struct{})}
	h.rooms[gameID] = r
	return r
}

// Broadcast sends an event to every subscriber of the game's room.
func (h *Hub) Broadcast(gameID uuid.UUID, event string, data any) {
	h.Room(gameID).send(Event{Name: event, Data: data})
}

// Subscribe registers a channel to receive the room's events. The channel
// should be buffered; slow subscribers drop events rather than block the
// publisher.
func (r *Room) Subscribe(ch chan Event) {
	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()
}

// Unsubscribe removes a channel from the room.
func (r *Room) Unsubscribe(ch chan Event) {
	r.mu.Lock()
	delete(r.subscribers, ch)
	r.mu.Unlock()
}

// Watchers returns the current subscriber count.
func (r *Room) Watchers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribers)
}

func (r *Room) send(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch := range r.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
