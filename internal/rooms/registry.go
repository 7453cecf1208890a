package rooms

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps live connection ids to the player identity they represent.
// The mapping is cleared on disconnect; the player record itself persists so
// the player can reconnect later.
type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]uuid.UUID
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]uuid.UUID)}
}

// Bind associates a connection with a player.
func (r *Registry) Bind(connID, playerID uuid.UUID) {
	r.mu.Lock()
	r.conns[connID] = playerID
	r.mu.Unlock()
}

// Lookup resolves a connection to its player id.
func (r *Registry) Lookup(connID uuid.UUID) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	playerID, ok := r.conns[connID]
	return playerID, ok
}

// Unbind clears a connection's mapping.
func (r *Registry) Unbind(connID uuid.UUID) {
	r.mu.Lock()
	delete(r.conns, connID)
	r.mu.Unlock()
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
