package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/habitflow/project/internal/habit"
	"github.com/nats-io/nuid"
)

// Storage keys for the independently serialized entity families.
const (
	KeyHabits        = "habits"
	KeyWeightProfile = "weight:profile"
	KeyWeightEntries = "weight:entries"
	KeyLedgerProfile = "ledger:profile"
	KeyLedgerEntries = "ledger:entries"
)

// Local persists the whole habit collection as one JSON value in a KV
// store. Every mutation re-serializes the full collection, matching the
// single-key snapshot layout the app has always used.
type Local struct {
	KV    KV
	NewID func() string
}

func NewLocal(kv KV) *Local {
	return &Local{KV: kv, NewID: nuid.Next}
}

func (l *Local) Load(_ context.Context) ([]habit.Habit, error) {
	raw, ok := l.KV.Get(KeyHabits)
	if !ok || raw == "" {
		return []habit.Habit{}, nil
	}
	var habits []habit.Habit
	if err := json.Unmarshal([]byte(raw), &habits); err != nil {
		return nil, fmt.Errorf("parse stored habits: %w", err)
	}
	return habits, nil
}

func (l *Local) SaveOne(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	if h.ID == "" {
		h.ID = l.NewID()
	}
	habits, err := l.Load(ctx)
	if err != nil {
		return habit.Habit{}, err
	}
	replaced := false
	for i := range habits {
		if habits[i].ID == h.ID {
			habits[i] = h
			replaced = true
			break
		}
	}
	if !replaced {
		habits = append(habits, h)
	}
	if err := l.write(habits); err != nil {
		return habit.Habit{}, err
	}
	return h, nil
}

func (l *Local) DeleteOne(ctx context.Context, id string) error {
	habits, err := l.Load(ctx)
	if err != nil {
		return err
	}
	kept := habits[:0]
	for _, h := range habits {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	return l.write(kept)
}

// ReplaceAll overwrites the stored collection in one write. Used by import,
// which must be all-or-nothing.
func (l *Local) ReplaceAll(_ context.Context, habits []habit.Habit) error {
	return l.write(habits)
}

// Subscribe is a no-op: the local strategy has no push channel.
func (l *Local) Subscribe(_ context.Context, _ ReplaceFunc) (func(), error) {
	return func() {}, nil
}

func (l *Local) write(habits []habit.Habit) error {
	if habits == nil {
		habits = []habit.Habit{}
	}
	raw, err := json.Marshal(habits)
	if err != nil {
		return err
	}
	if err := l.KV.Set(KeyHabits, string(raw)); err != nil {
		return fmt.Errorf("persist habits: %w", err)
	}
	return nil
}
