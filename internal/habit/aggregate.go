package habit

import (
	"math"
	"sort"
)

// DefaultWindowDays is the trailing period used by progress summaries when
// the caller does not ask for another one.
const DefaultWindowDays = 7

// ActivityTotal is one habit's share of a windowed summary.
type ActivityTotal struct {
	HabitID      string `json:"habit_id"`
	Name         string `json:"name"`
	Emoji        string `json:"emoji,omitempty"`
	Color        string `json:"color,omitempty"`
	Count        int    `json:"count"`
	TotalMinutes int    `json:"total_minutes"`
}

// Summary aggregates the whole collection over a trailing window.
type Summary struct {
	TotalHabits       int             `json:"total_habits"`
	WindowDays        int             `json:"window_days"`
	Activities        []ActivityTotal `json:"activities"`
	TotalMinutes      int             `json:"total_minutes"`
	CompletionRatePct int             `json:"completion_rate_pct"`
	CurrentStreak     int             `json:"current_streak"`
	LongestStreak     int             `json:"longest_streak"`
}

// Summarize computes per-habit completion counts and minutes inside
// [today-windowDays, today], sorted by minutes descending. The completion
// rate is the share of habits completed today specifically, rounded to a
// whole percent. Global streaks are the maxima over the individual habits.
// An empty collection yields the zero summary.
func Summarize(habits []Habit, today Day, windowDays int) Summary {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	summary := Summary{
		TotalHabits: len(habits),
		WindowDays:  windowDays,
		Activities:  []ActivityTotal{},
	}
	if len(habits) == 0 {
		return summary
	}

	windowStart := today.AddDays(-windowDays)
	completedToday := 0

	for _, h := range habits {
		count := 0
		for _, d := range distinctDaysDesc(h.CompletedDates) {
			if !d.After(today) && !windowStart.After(d) {
				count++
			}
		}
		if count > 0 {
			minutes := count * h.DurationMinutes
			summary.Activities = append(summary.Activities, ActivityTotal{
				HabitID:      h.ID,
				Name:         h.Name,
				Emoji:        h.Emoji,
				Color:        h.Color,
				Count:        count,
				TotalMinutes: minutes,
			})
			summary.TotalMinutes += minutes
		}

		if h.CompletedOn(today) {
			completedToday++
		}

		streaks := CalculateStreaks(h.CompletedDates, today)
		if streaks.Current > summary.CurrentStreak {
			summary.CurrentStreak = streaks.Current
		}
		if streaks.Longest > summary.LongestStreak {
			summary.LongestStreak = streaks.Longest
		}
	}

	sort.SliceStable(summary.Activities, func(i, j int) bool {
		return summary.Activities[i].TotalMinutes > summary.Activities[j].TotalMinutes
	})
	summary.CompletionRatePct = int(math.Round(float64(completedToday) / float64(len(habits)) * 100))
	return summary
}
