package persist

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/habitflow/project/internal/contracts"
	"github.com/habitflow/project/internal/habit"
	"github.com/habitflow/project/internal/messaging"
	"github.com/habitflow/project/internal/observability"
	"github.com/habitflow/project/internal/platform/natsutil"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nuid"
	"go.uber.org/zap"
)

// DefaultSnapshotDebounce coalesces bursts of change events into one
// collection re-query.
const DefaultSnapshotDebounce = 150 * time.Millisecond

// Remote persists habits as per-record documents scoped by one owner and
// pushes a change event after every committed write. Subscribe re-queries
// the owner's full collection whenever such an event arrives, so listeners
// always see whole-collection replacements.
type Remote struct {
	Repo    *HabitRepository
	JS      nats.JetStreamContext
	Events  natsutil.Publisher
	OwnerID string
	Log     *zap.SugaredLogger

	NewID            func() string
	Now              func() time.Time
	SnapshotDebounce time.Duration

	mu      sync.Mutex
	inWrite map[string]*sync.Mutex
}

func NewRemote(repo *HabitRepository, js nats.JetStreamContext, ownerID string, log *zap.SugaredLogger) *Remote {
	return &Remote{
		Repo:             repo,
		JS:               js,
		Events:           natsutil.JetStreamPublisher{JS: js},
		OwnerID:          ownerID,
		Log:              log,
		NewID:            nuid.Next,
		Now:              func() time.Time { return time.Now().UTC() },
		SnapshotDebounce: DefaultSnapshotDebounce,
		inWrite:          map[string]*sync.Mutex{},
	}
}

func (r *Remote) Load(ctx context.Context) ([]habit.Habit, error) {
	return r.Repo.ListByOwner(ctx, r.OwnerID)
}

func (r *Remote) SaveOne(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	if h.ID == "" {
		// The store assigns document IDs, mirroring a create in the
		// document collection.
		h.ID = r.NewID()
	}
	h.OwnerID = r.OwnerID

	// Overlapping saves of the same habit must not interleave: the
	// second write waits for the first to complete.
	lock := r.writeLock(h.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := r.Repo.Upsert(ctx, h); err != nil {
		return habit.Habit{}, err
	}
	r.publishChange(h.ID, contracts.ChangeSaved)
	return h, nil
}

func (r *Remote) DeleteOne(ctx context.Context, id string) error {
	lock := r.writeLock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := r.Repo.Delete(ctx, id, r.OwnerID); err != nil {
		return err
	}
	r.publishChange(id, contracts.ChangeDeleted)
	return nil
}

// Subscribe listens for this owner's change events and delivers a fresh
// full collection to fn after each one, debounced so event bursts collapse
// into a single snapshot. The returned cancel tears the listener down.
func (r *Remote) Subscribe(ctx context.Context, fn ReplaceFunc) (func(), error) {
	var timerMu sync.Mutex
	var timer *time.Timer

	refresh := func() {
		queryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		habits, err := r.Repo.ListByOwner(queryCtx, r.OwnerID)
		if err != nil {
			r.Log.Warnw("subscription snapshot query failed", "owner_id", r.OwnerID, "error", err)
			return
		}
		observability.RecordSnapshot()
		fn(habits)
	}

	sub, err := r.JS.Subscribe(messaging.ChangeSubject(r.OwnerID), func(msg *nats.Msg) {
		var event contracts.HabitChanged
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return
		}
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(r.SnapshotDebounce, refresh)
	}, nats.DeliverNew())
	if err != nil {
		return nil, err
	}

	unsubscribe := func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
			timer = nil
		}
		timerMu.Unlock()
		_ = sub.Unsubscribe()
	}
	return unsubscribe, nil
}

func (r *Remote) publishChange(habitID, changeType string) {
	event := contracts.HabitChanged{
		EventID:    r.NewID(),
		OwnerID:    r.OwnerID,
		HabitID:    habitID,
		ChangeType: changeType,
		OccurredAt: r.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := r.Events.Publish(messaging.ChangeSubject(r.OwnerID), payload); err != nil {
		// The write itself committed; a lost notification only delays
		// the next snapshot.
		r.Log.Warnw("change event publish failed", "habit_id", habitID, "error", err)
	}
}

func (r *Remote) writeLock(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.inWrite[id]
	if !ok {
		lock = &sync.Mutex{}
		r.inWrite[id] = lock
	}
	return lock
}
