package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KV is the synchronous key-value collaborator the local strategy writes
// through. Get reports absence via ok; Set may fail on capacity or I/O
// problems, which callers must report upward rather than panic on.
type KV interface {
	Get(key string) (value string, ok bool)
	Set(key, value string) error
}

// FileKV keeps every key in one JSON document on disk and rewrites it
// atomically on each Set. Reads are served from memory after Open.
type FileKV struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// OpenFileKV loads (or initializes) the store file under dir.
func OpenFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	kv := &FileKV{
		path:   filepath.Join(dir, "habitflow.json"),
		values: map[string]string{},
	}
	raw, err := os.ReadFile(kv.path)
	if err != nil {
		if os.IsNotExist(err) {
			return kv, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &kv.values); err != nil {
			return nil, fmt.Errorf("parse store file: %w", err)
		}
	}
	return kv, nil
}

func (kv *FileKV) Get(key string) (string, bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	value, ok := kv.values[key]
	return value, ok
}

func (kv *FileKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	previous, had := kv.values[key]
	kv.values[key] = value
	if err := kv.flushLocked(); err != nil {
		if had {
			kv.values[key] = previous
		} else {
			delete(kv.values, key)
		}
		return err
	}
	return nil
}

func (kv *FileKV) flushLocked() error {
	raw, err := json.Marshal(kv.values)
	if err != nil {
		return err
	}
	tmp := kv.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, kv.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
