// Package tracker holds the lighter-weight companions to the habit list:
// body-weight progression and simple income/expense bookkeeping. Both
// follow the same conventions as habits: a profile gates the tracker,
// entries are kept newest-first, and everything persists through the local
// key-value snapshot store under its own key.
package tracker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/habitflow/project/internal/persist"
)

var (
	ErrProfileRequired     = errors.New("tracker profile is not set up")
	ErrInvalidWeight       = errors.New("weight must be a positive number")
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidEntryType    = errors.New("entry type must be income or expense")
)

func loadJSON[T any](kv persist.KV, key string, out *T) (bool, error) {
	raw, ok := kv.Get(key)
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("parse stored %s: %w", key, err)
	}
	return true, nil
}

func storeJSON(kv persist.KV, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := kv.Set(key, string(raw)); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
