package persist

import (
	"context"

	"github.com/habitflow/project/internal/habit"
	"github.com/habitflow/project/internal/observability"
	"go.uber.org/zap"
)

// Fallback tries the remote strategy first and transparently retries
// against the local one when the remote fails. Failures are logged and
// counted, never surfaced: from the caller's perspective the operation
// succeeded once the local retry completes. With a nil remote the wrapper
// runs local-only, which is the fully offline mode.
type Fallback struct {
	Remote Adapter
	Local  *Local
	Log    *zap.SugaredLogger
}

func NewFallback(remote Adapter, local *Local, log *zap.SugaredLogger) *Fallback {
	return &Fallback{Remote: remote, Local: local, Log: log}
}

func (f *Fallback) Load(ctx context.Context) ([]habit.Habit, error) {
	if f.Remote != nil {
		habits, err := f.Remote.Load(ctx)
		if err == nil {
			return habits, nil
		}
		f.degrade("load", err)
	}
	return f.Local.Load(ctx)
}

func (f *Fallback) SaveOne(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	if f.Remote != nil {
		saved, err := f.Remote.SaveOne(ctx, h)
		if err == nil {
			return saved, nil
		}
		f.degrade("save", err)
	}
	return f.Local.SaveOne(ctx, h)
}

func (f *Fallback) DeleteOne(ctx context.Context, id string) error {
	if f.Remote != nil {
		err := f.Remote.DeleteOne(ctx, id)
		if err == nil {
			return nil
		}
		f.degrade("delete", err)
	}
	return f.Local.DeleteOne(ctx, id)
}

// ReplaceAll is the import path. The local snapshot is written first in
// one atomic swap; the remote rows are then reconciled per document so a
// later change-event snapshot cannot deliver the pre-import collection.
// A reconcile failure degrades like any other remote failure: logged,
// never surfaced, the import itself stands.
func (f *Fallback) ReplaceAll(ctx context.Context, habits []habit.Habit) error {
	if err := f.Local.ReplaceAll(ctx, habits); err != nil {
		return err
	}
	if f.Remote != nil {
		if err := f.reconcileRemote(ctx, habits); err != nil {
			f.degrade("import", err)
		}
	}
	return nil
}

// reconcileRemote makes the remote collection match the imported one:
// rows absent from the import are deleted, the rest upserted.
func (f *Fallback) reconcileRemote(ctx context.Context, habits []habit.Habit) error {
	existing, err := f.Remote.Load(ctx)
	if err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(habits))
	for _, h := range habits {
		keep[h.ID] = struct{}{}
	}
	for _, h := range existing {
		if _, ok := keep[h.ID]; ok {
			continue
		}
		if err := f.Remote.DeleteOne(ctx, h.ID); err != nil {
			return err
		}
	}
	for _, h := range habits {
		if _, err := f.Remote.SaveOne(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fallback) Subscribe(ctx context.Context, fn ReplaceFunc) (func(), error) {
	if f.Remote == nil {
		return f.Local.Subscribe(ctx, fn)
	}
	cancel, err := f.Remote.Subscribe(ctx, fn)
	if err != nil {
		f.degrade("subscribe", err)
		return f.Local.Subscribe(ctx, fn)
	}
	return cancel, nil
}

func (f *Fallback) degrade(operation string, err error) {
	observability.RecordFallback(operation)
	f.Log.Warnw("remote persistence failed, falling back to local store",
		"operation", operation, "error", err)
}
