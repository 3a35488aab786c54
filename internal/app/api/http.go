// Package api is the HTTP boundary where user intents (add, toggle,
// delete, import/export) are dispatched into the record store and derived
// statistics are read back out.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/habitflow/project/internal/habit"
	"github.com/habitflow/project/internal/store"
	"github.com/habitflow/project/internal/tracker"
	"github.com/habitflow/project/internal/transfer"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const maxImportBytes = 1 << 20

var ErrImportNotConfirmed = errors.New("import requires confirm=true")

type Handler struct {
	Store         *store.Store
	Weight        *tracker.WeightService
	Ledger        *tracker.LedgerService
	Log           *zap.SugaredLogger
	AllowedOrigin string

	// Ready reports backend readiness for /readyz.
	Ready func(ctx context.Context) error
	// Now supplies "today" for streak and summary reads.
	Now func() time.Time
}

func NewHandler(st *store.Store, weight *tracker.WeightService, ledger *tracker.LedgerService, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Store:  st,
		Weight: weight,
		Ledger: ledger,
		Log:    log,
		Now:    time.Now,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(h.corsMiddleware)
	r.Options("/*", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", h.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/v1/habits", h.handleListHabits)
	r.Post("/api/v1/habits", h.handleAddHabit)
	r.Post("/api/v1/habits/{habitID}/toggle", h.handleToggle)
	r.Delete("/api/v1/habits/{habitID}", h.handleDeleteHabit)
	r.Get("/api/v1/habits/{habitID}/streaks", h.handleStreaks)
	r.Get("/api/v1/summary", h.handleSummary)
	r.Get("/api/v1/export", h.handleExport)
	r.Post("/api/v1/import", h.handleImport)

	r.Get("/api/v1/weight/profile", h.handleWeightProfile)
	r.Put("/api/v1/weight/profile", h.handleSetWeightProfile)
	r.Post("/api/v1/weight/entries", h.handleAddWeightEntry)
	r.Get("/api/v1/weight/progress", h.handleWeightProgress)

	r.Put("/api/v1/ledger/profile", h.handleSetLedgerProfile)
	r.Post("/api/v1/ledger/entries", h.handleAddLedgerEntry)
	r.Get("/api/v1/ledger/summary", h.handleLedgerSummary)

	return r
}

type habitView struct {
	habit.Habit
	habit.Streaks
}

type addHabitRequest struct {
	Name            string `json:"name"`
	Emoji           string `json:"emoji"`
	Color           string `json:"color"`
	DurationMinutes int    `json:"duration_minutes"`
	Frequency       string `json:"frequency"`
}

type toggleRequest struct {
	Date string `json:"date"`
}

func (h *Handler) handleListHabits(w http.ResponseWriter, r *http.Request) {
	today := habit.DayOf(h.Now())
	habits := h.Store.All()
	views := make([]habitView, 0, len(habits))
	for _, item := range habits {
		views = append(views, habitView{
			Habit:   item,
			Streaks: habit.CalculateStreaks(item.CompletedDates, today),
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"habits": views})
}

func (h *Handler) handleAddHabit(w http.ResponseWriter, r *http.Request) {
	var req addHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	saved, err := h.Store.Add(r.Context(), habit.Habit{
		Name:            req.Name,
		Emoji:           req.Emoji,
		Color:           req.Color,
		DurationMinutes: req.DurationMinutes,
		Frequency:       req.Frequency,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNameRequired),
			errors.Is(err, store.ErrInvalidDuration),
			errors.Is(err, store.ErrInvalidFrequency):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habitID")
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	day, err := habit.ParseDay(strings.TrimSpace(req.Date))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Store.ToggleCompletion(r.Context(), habitID, day); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Remove(r.Context(), chi.URLParam(r, "habitID")); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleStreaks(w http.ResponseWriter, r *http.Request) {
	item, ok := h.Store.Get(chi.URLParam(r, "habitID"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	today := habit.DayOf(h.Now())
	h.writeJSON(w, http.StatusOK, habit.CalculateStreaks(item.CompletedDates, today))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	windowDays := habit.DefaultWindowDays
	if raw := strings.TrimSpace(r.URL.Query().Get("window_days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "window_days must be a positive integer")
			return
		}
		windowDays = parsed
	}
	today := habit.DayOf(h.Now())
	h.writeJSON(w, http.StatusOK, habit.Summarize(h.Store.All(), today, windowDays))
}

func (h *Handler) handleExport(w http.ResponseWriter, _ *http.Request) {
	doc := transfer.Export(h.Store.All(), h.Now())
	h.writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	if !strings.EqualFold(r.URL.Query().Get("confirm"), "true") {
		h.writeError(w, http.StatusConflict, ErrImportNotConfirmed.Error())
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	habits, err := transfer.Parse(raw)
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrMalformedDocument), errors.Is(err, transfer.ErrMissingHabits):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if err := h.Store.ReplaceAll(r.Context(), habits); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"imported": len(habits)})
}

func (h *Handler) handleWeightProfile(w http.ResponseWriter, _ *http.Request) {
	profile, ok, err := h.Weight.Profile()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, tracker.ErrProfileRequired.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleSetWeightProfile(w http.ResponseWriter, r *http.Request) {
	var profile tracker.WeightProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := h.Weight.SetProfile(profile); err != nil {
		h.writeTrackerError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleAddWeightEntry(w http.ResponseWriter, r *http.Request) {
	var entry tracker.WeightEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := h.Weight.AddEntry(entry); err != nil {
		h.writeTrackerError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleWeightProgress(w http.ResponseWriter, _ *http.Request) {
	progress, err := h.Weight.Progress()
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, progress)
}

func (h *Handler) handleSetLedgerProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartingCapital float64 `json:"starting_capital"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := h.Ledger.SetProfile(req.StartingCapital); err != nil {
		h.writeTrackerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddLedgerEntry(w http.ResponseWriter, r *http.Request) {
	var entry tracker.LedgerEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := h.Ledger.AddEntry(entry); err != nil {
		h.writeTrackerError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleLedgerSummary(w http.ResponseWriter, _ *http.Request) {
	summary, err := h.Ledger.Summary()
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) writeTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrProfileRequired):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tracker.ErrInvalidWeight),
		errors.Is(err, tracker.ErrInvalidAmount),
		errors.Is(err, tracker.ErrDescriptionRequired),
		errors.Is(err, tracker.ErrInvalidEntryType):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin, Access-Control-Request-Headers")
		origin := strings.TrimSpace(h.AllowedOrigin)
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
