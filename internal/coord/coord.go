// Package coord provides the ephemeral coordination store: fast shared
// key-value state for values that are transient, append-only, or need atomic
// counters and sets (round sequence numbers, used-question sets, the
// current-round pointer, reveal and finalize flags).
package coord

import (
	"context"
	"errors"
)

// ErrNoKey is returned by Get for keys that were never set.
var ErrNoKey = errors.New("coord: key not set")

// Coordinator is the ephemeral coordination store interface. Every operation
// is atomic per key; no multi-key transactions are offered or needed.
type Coordinator interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// SetNX sets the key only if it is unset and reports whether this caller
	// won. Used as a round-scoped exclusive flag.
	SetNX(ctx context.Context, key, value string) (bool, error)
	// Incr atomically increments an integer key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	SAdd(ctx context.Context, key string, member string) error
	SMembers(ctx context.Context, key string) (map[string]struct{}, error)
}
