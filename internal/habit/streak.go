package habit

// Streaks holds the consecutive-day runs derived from one habit's
// completion days.
type Streaks struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// CalculateStreaks walks the habit's distinct completion days from most
// recent to oldest. Longest is the maximum over all maximal consecutive
// runs. Current is the length of the run containing today, where a run
// whose most recent day is yesterday still counts: today is not over yet.
// The result depends only on the set of days and the today argument.
func CalculateStreaks(completed []Day, today Day) Streaks {
	days := distinctDaysDesc(completed)
	if len(days) == 0 {
		return Streaks{}
	}

	var s Streaks
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] == 1 {
			run++
			continue
		}
		if run > s.Longest {
			s.Longest = run
		}
		// The leading run ended before reaching older days.
		if s.Current == 0 && withinGrace(days[0], today) {
			s.Current = run
		}
		run = 1
	}
	if run > s.Longest {
		s.Longest = run
	}
	if s.Current == 0 && withinGrace(days[0], today) {
		s.Current = run
	}
	return s
}

// withinGrace reports whether a run ending on mostRecent still counts as
// current: its last completion is today or yesterday.
func withinGrace(mostRecent, today Day) bool {
	gap := today - mostRecent
	return gap == 0 || gap == 1
}
