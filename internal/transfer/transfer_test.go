package transfer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/habitflow/project/internal/habit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport_RoundTrip(t *testing.T) {
	day, err := habit.ParseDay("2026-08-27")
	require.NoError(t, err)
	habits := []habit.Habit{
		{
			ID:              "h1",
			Name:            "Reading",
			Emoji:           "📚",
			DurationMinutes: 15,
			Frequency:       habit.FrequencyDaily,
			CompletedDates:  []habit.Day{day, day.AddDays(1)},
			CreatedAt:       time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:              "h2",
			Name:            "Running",
			DurationMinutes: 30,
			Frequency:       habit.FrequencyWeekly,
			CompletedDates:  []habit.Day{},
			CreatedAt:       time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC),
		},
	}

	doc := Export(habits, time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	parsed, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, habits[0].ID, parsed[0].ID)
	assert.Equal(t, habits[1].Frequency, parsed[1].Frequency)
	assert.ElementsMatch(t, habits[0].CompletedDates, parsed[0].CompletedDates)
}

func TestParse_MissingHabitsField(t *testing.T) {
	_, err := Parse([]byte(`{"foo": 1}`))
	assert.ErrorIs(t, err, ErrMissingHabits)
}

func TestParse_HabitsNotAnArray(t *testing.T) {
	_, err := Parse([]byte(`{"habits": {"id": "h1"}}`))
	assert.ErrorIs(t, err, ErrMissingHabits)
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{habits: [`))
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestParse_EmptyArray(t *testing.T) {
	parsed, err := Parse([]byte(`{"habits": []}`))
	require.NoError(t, err)
	assert.NotNil(t, parsed)
	assert.Empty(t, parsed)
}

func TestExport_NilCollection(t *testing.T) {
	doc := Export(nil, time.Now())
	assert.NotNil(t, doc.Habits)
}
