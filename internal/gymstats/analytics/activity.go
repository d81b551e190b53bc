package analytics

import (
	"github.com/2beens/gymdash/internal/gymstats/records"
)

// ActivityDates collapses workouts and routine sessions whose timestamps fall
// within the window into the set of distinct calendar dates they were logged on.
func ActivityDates(
	workouts []records.WorkoutRecord,
	sessions []records.RoutineSession,
	window Window,
) map[string]struct{} {
	dates := make(map[string]struct{})
	loc := window.Start.Location()

	add := func(ts string) {
		t, ok := ParseTimestamp(ts, loc)
		if !ok || !window.Contains(t) {
			return
		}
		if day := DatePart(ts); day != "" {
			dates[day] = struct{}{}
		}
	}

	for _, w := range workouts {
		add(w.Date)
	}
	for _, s := range sessions {
		add(s.Date)
	}

	return dates
}

// WorkoutsInWindow returns the workouts whose timestamps fall within the window.
func WorkoutsInWindow(workouts []records.WorkoutRecord, window Window) []records.WorkoutRecord {
	loc := window.Start.Location()
	filtered := make([]records.WorkoutRecord, 0, len(workouts))
	for _, w := range workouts {
		if t, ok := ParseTimestamp(w.Date, loc); ok && window.Contains(t) {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// SessionsInWindow returns the routine sessions whose timestamps fall within the window.
func SessionsInWindow(sessions []records.RoutineSession, window Window) []records.RoutineSession {
	loc := window.Start.Location()
	filtered := make([]records.RoutineSession, 0, len(sessions))
	for _, s := range sessions {
		if t, ok := ParseTimestamp(s.Date, loc); ok && window.Contains(t) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// datesLogged returns every calendar date that has at least one workout or session,
// regardless of any window.
func datesLogged(workouts []records.WorkoutRecord, sessions []records.RoutineSession) map[string]struct{} {
	dates := make(map[string]struct{}, len(workouts)+len(sessions))
	for _, w := range workouts {
		if day := DatePart(w.Date); day != "" {
			dates[day] = struct{}{}
		}
	}
	for _, s := range sessions {
		if day := DatePart(s.Date); day != "" {
			dates[day] = struct{}{}
		}
	}
	return dates
}
