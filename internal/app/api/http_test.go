package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/habitflow/project/internal/habit"
	"github.com/habitflow/project/internal/persist"
	"github.com/habitflow/project/internal/store"
	"github.com/habitflow/project/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClock() time.Time {
	return time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	kv, err := persist.OpenFileKV(t.TempDir())
	require.NoError(t, err)
	local := persist.NewLocal(kv)
	next := 0
	local.NewID = func() string {
		next++
		return fmt.Sprintf("habit-%d", next)
	}
	log := zap.NewNop().Sugar()

	st := store.New(persist.NewFallback(nil, local, log), log)
	st.Now = testClock
	require.NoError(t, st.Load(context.Background()))

	h := NewHandler(st, tracker.NewWeightService(kv), tracker.NewLedgerService(kv), log)
	h.Now = testClock
	return h
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAddHabit_ValidationStatusCodes(t *testing.T) {
	router := newTestHandler(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/habits", map[string]any{
		"name": "", "duration_minutes": 15,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/habits", map[string]any{
		"name": "Reading", "duration_minutes": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/habits", map[string]any{
		"name": "Reading", "duration_minutes": 15,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created habit.Habit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "habit-1", created.ID)
	assert.Equal(t, habit.FrequencyDaily, created.Frequency)
}

func TestToggleAndStreaks(t *testing.T) {
	router := newTestHandler(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/habits", map[string]any{
		"name": "Reading", "duration_minutes": 15,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	today := habit.DayOf(testClock())
	for _, d := range []habit.Day{today, today.AddDays(-1), today.AddDays(-2)} {
		rec = doJSON(t, router, http.MethodPost, "/api/v1/habits/habit-1/toggle", map[string]any{
			"date": d.String(),
		})
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/habits/habit-1/streaks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var streaks habit.Streaks
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &streaks))
	assert.Equal(t, habit.Streaks{Current: 3, Longest: 3}, streaks)
}

func TestToggle_RejectsBadDateAcceptsUnknownID(t *testing.T) {
	router := newTestHandler(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/habits/habit-1/toggle", map[string]any{
		"date": "28/08/2026",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Stale references are tolerated, not errors.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/habits/ghost/toggle", map[string]any{
		"date": "2026-08-28",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	router := newTestHandler(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/habits", map[string]any{
		"name": "Reading", "duration_minutes": 15,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/habits/habit-1/toggle", map[string]any{
		"date": "2026-08-28",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary habit.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.TotalHabits)
	assert.Equal(t, 100, summary.CompletionRatePct)
	assert.Equal(t, 15, summary.TotalMinutes)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/summary?window_days=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportImport_RoundTrip(t *testing.T) {
	router := newTestHandler(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/habits", map[string]any{
		"name": "Reading", "duration_minutes": 15,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.Bytes()

	// Import back into a fresh instance.
	fresh := newTestHandler(t).Router()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import?confirm=true", bytes.NewReader(exported))
	rec = httptest.NewRecorder()
	fresh.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, fresh, http.MethodGet, "/api/v1/habits", nil)
	var resp struct {
		Habits []habit.Habit `json:"habits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Habits, 1)
	assert.Equal(t, "Reading", resp.Habits[0].Name)
}

func TestImport_RequiresConfirmationAndValidShape(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/habits", map[string]any{
		"name": "Reading", "duration_minutes": 15,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", bytes.NewReader([]byte(`{"habits": []}`)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/import?confirm=true", bytes.NewReader([]byte(`{"foo": 1}`)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Both failed imports must leave the store untouched.
	assert.Len(t, h.Store.All(), 1)
}

func TestWeightEndpoints(t *testing.T) {
	router := newTestHandler(t).Router()

	rec := doJSON(t, router, http.MethodGet, "/api/v1/weight/progress", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/weight/profile", map[string]any{
		"initial_weight": 82, "goal_weight": 75, "start_date": "2026-08-01",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/weight/entries", map[string]any{
		"value": 80.5, "date": "2026-08-27",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/weight/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var progress tracker.WeightProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progress))
	assert.Equal(t, 80.5, progress.Current)
}

func TestLedgerEndpoints(t *testing.T) {
	router := newTestHandler(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ledger/entries", map[string]any{
		"type": "income", "amount": 100, "description": "Pay", "date": "2026-08-28",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/ledger/profile", map[string]any{
		"starting_capital": 1000,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/ledger/entries", map[string]any{
		"type": "expense", "amount": 40, "description": "Groceries", "date": "2026-08-28",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/ledger/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary tracker.LedgerSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 960.0, summary.Balance)
}

func TestHealthz(t *testing.T) {
	router := newTestHandler(t).Router()
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
