package habit

import (
	"sort"
	"time"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Habit is a trackable recurring activity. CompletedDates holds at most one
// marker per calendar day and never a day after "today"; both rules are
// enforced at the mutation boundary, not here.
type Habit struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id,omitempty"`
	Name            string    `json:"name"`
	Emoji           string    `json:"emoji,omitempty"`
	Color           string    `json:"color,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	Frequency       string    `json:"frequency"`
	CompletedDates  []Day     `json:"completed_dates"`
	CreatedAt       time.Time `json:"created_at"`
}

// CompletedOn reports whether the habit has a marker for the given day.
func (h Habit) CompletedOn(day Day) bool {
	for _, d := range h.CompletedDates {
		if d == day {
			return true
		}
	}
	return false
}

// WithToggled returns a copy of the habit with the day's marker flipped.
// The completion list of the receiver is never aliased.
func (h Habit) WithToggled(day Day) Habit {
	dates := make([]Day, 0, len(h.CompletedDates)+1)
	removed := false
	for _, d := range h.CompletedDates {
		if d == day {
			removed = true
			continue
		}
		dates = append(dates, d)
	}
	if !removed {
		dates = append(dates, day)
	}
	h.CompletedDates = dates
	return h
}

// distinctDaysDesc returns the habit's completion days deduplicated and
// sorted most recent first.
func distinctDaysDesc(days []Day) []Day {
	seen := make(map[Day]struct{}, len(days))
	out := make([]Day, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

func ValidFrequency(frequency string) bool {
	switch frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}
