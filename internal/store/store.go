// Package store owns the in-memory habit collection: the single source of
// truth within a session. Every mutation goes through its methods, persists
// through the configured backend, and is serialized against subscription
// replacements so a push can never tear an in-flight write.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/habitflow/project/internal/habit"
	"github.com/habitflow/project/internal/observability"
	"github.com/habitflow/project/internal/persist"
	"go.uber.org/zap"
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrInvalidDuration  = errors.New("duration_minutes must be at least 1")
	ErrInvalidFrequency = errors.New("frequency must be daily, weekly or monthly")
)

// Backend is what the store persists through: the adapter contract plus the
// atomic whole-collection write used by import.
type Backend interface {
	persist.Adapter
	ReplaceAll(ctx context.Context, habits []habit.Habit) error
}

type Store struct {
	backend Backend
	log     *zap.SugaredLogger

	// Now supplies "today" for the future-completion gate.
	Now func() time.Time

	// OnReplace, when set, runs after a subscription push has been
	// applied so dependent views can recompute.
	OnReplace func([]habit.Habit)

	mu     sync.Mutex
	habits []habit.Habit
}

func New(backend Backend, log *zap.SugaredLogger) *Store {
	return &Store{
		backend: backend,
		log:     log,
		Now:     time.Now,
	}
}

// Load populates the store from the backend. Called once at startup.
func (s *Store) Load(ctx context.Context) error {
	habits, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.habits = habits
	s.mu.Unlock()
	observability.SetHabitCount(len(habits))
	return nil
}

// Add validates and persists a new habit, returning it with its assigned
// identifier.
func (s *Store) Add(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return habit.Habit{}, ErrNameRequired
	}
	if h.DurationMinutes < 1 {
		return habit.Habit{}, ErrInvalidDuration
	}
	if h.Frequency == "" {
		h.Frequency = habit.FrequencyDaily
	}
	if !habit.ValidFrequency(h.Frequency) {
		return habit.Habit{}, ErrInvalidFrequency
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = s.Now().UTC()
	}
	if h.CompletedDates == nil {
		h.CompletedDates = []habit.Day{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.backend.SaveOne(ctx, h)
	if err != nil {
		return habit.Habit{}, err
	}
	s.habits = append(s.habits, saved)
	observability.SetHabitCount(len(s.habits))
	return saved, nil
}

// ToggleCompletion flips the day's marker for the habit. Unknown IDs and
// days after today are silently ignored: stale UI references are not
// errors.
func (s *Store) ToggleCompletion(ctx context.Context, id string, day habit.Day) error {
	today := habit.DayOf(s.Now())
	if day.After(today) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.habits {
		if s.habits[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	toggled := s.habits[idx].WithToggled(day)
	saved, err := s.backend.SaveOne(ctx, toggled)
	if err != nil {
		return err
	}
	s.habits[idx] = saved
	observability.RecordToggle()
	return nil
}

// Remove deletes the habit permanently. Unknown IDs are a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.habits {
		if s.habits[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	if err := s.backend.DeleteOne(ctx, id); err != nil {
		return err
	}
	s.habits = append(s.habits[:idx], s.habits[idx+1:]...)
	observability.SetHabitCount(len(s.habits))
	return nil
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []habit.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]habit.Habit, len(s.habits))
	copy(out, s.habits)
	return out
}

// Get returns the habit with the given ID.
func (s *Store) Get(id string) (habit.Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.habits {
		if h.ID == id {
			return h, true
		}
	}
	return habit.Habit{}, false
}

// Replace swaps the whole collection in from a subscription push. The lock
// is held across the swap and the notification, so no mutation runs until
// both have completed. OnReplace must not call back into the store.
func (s *Store) Replace(habits []habit.Habit) {
	if habits == nil {
		habits = []habit.Habit{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = habits
	observability.SetHabitCount(len(habits))
	s.log.Debugw("collection replaced from subscription push", "habits", len(habits))
	if s.OnReplace != nil {
		s.OnReplace(habits)
	}
}

// ReplaceAll is the import path: the backend write and the in-memory swap
// happen together or not at all.
func (s *Store) ReplaceAll(ctx context.Context, habits []habit.Habit) error {
	if habits == nil {
		habits = []habit.Habit{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.ReplaceAll(ctx, habits); err != nil {
		return err
	}
	s.habits = habits
	observability.SetHabitCount(len(habits))
	return nil
}

// StartSubscription wires the backend's live channel into Replace. The
// returned cancel tears the subscription down at session end.
func (s *Store) StartSubscription(ctx context.Context) (func(), error) {
	return s.backend.Subscribe(ctx, s.Replace)
}
