// Package persist abstracts durable habit storage behind one contract with
// two interchangeable strategies: a synchronous local key-value snapshot and
// an asynchronous remote document store with a live change channel. The
// Fallback wrapper degrades from remote to local on any failure.
package persist

import (
	"context"

	"github.com/habitflow/project/internal/habit"
)

// ReplaceFunc receives the full current collection whenever the backing
// store changes server-side. Deliveries are whole-collection replacements,
// never deltas.
type ReplaceFunc func(habits []habit.Habit)

// Adapter is the durable-storage contract shared by every strategy.
//
// SaveOne returns the stored record: when the incoming habit has no ID the
// adapter assigns one. DeleteOne on an unknown ID is a no-op. Subscribe
// registers a live listener and returns its cancel function; strategies
// without a push channel return a cancel that does nothing.
type Adapter interface {
	Load(ctx context.Context) ([]habit.Habit, error)
	SaveOne(ctx context.Context, h habit.Habit) (habit.Habit, error)
	DeleteOne(ctx context.Context, id string) error
	Subscribe(ctx context.Context, fn ReplaceFunc) (func(), error)
}
