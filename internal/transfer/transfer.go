// Package transfer implements the export/import surface: a JSON document
// holding the whole habit collection. Import is all-or-nothing; malformed
// input leaves the store untouched.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/habitflow/project/internal/habit"
)

var (
	ErrMalformedDocument = errors.New("import document is not valid JSON")
	ErrMissingHabits     = errors.New("import document has no habits array")
)

// Document is the export/import wire format.
type Document struct {
	Habits     []habit.Habit `json:"habits"`
	ExportedAt time.Time     `json:"exportedAt"`
}

// Export wraps the collection with an export timestamp.
func Export(habits []habit.Habit, now time.Time) Document {
	if habits == nil {
		habits = []habit.Habit{}
	}
	return Document{Habits: habits, ExportedAt: now.UTC()}
}

// Parse validates raw import data. The habits field must be present and an
// array; each element must decode as a habit record.
func Parse(raw []byte) ([]habit.Habit, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, ErrMalformedDocument
	}
	rawHabits, ok := probe["habits"]
	if !ok || !looksLikeArray(rawHabits) {
		return nil, ErrMissingHabits
	}
	var habits []habit.Habit
	if err := json.Unmarshal(rawHabits, &habits); err != nil {
		return nil, ErrMalformedDocument
	}
	if habits == nil {
		habits = []habit.Habit{}
	}
	return habits, nil
}

func looksLikeArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
