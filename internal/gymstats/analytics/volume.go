package analytics

import (
	"time"

	"github.com/2beens/gymdash/internal/gymstats/records"
)

const streakLookbackDays = 30

// Volume is the sum of weight x reps over every series of the given workouts.
// Negative values are treated as missing.
func Volume(workouts []records.WorkoutRecord) float64 {
	var volume float64
	for _, w := range workouts {
		for _, s := range w.Series {
			if s.Weight <= 0 || s.Reps <= 0 {
				continue
			}
			volume += s.Weight * float64(s.Reps)
		}
	}
	return volume
}

// Streak counts consecutive active days walking back from today, at most 30 days.
// An inactive today does not end the walk: the streak can still be
// carried by yesterday and the days before it. Any other inactive day ends it.
func Streak(
	workouts []records.WorkoutRecord,
	sessions []records.RoutineSession,
	now time.Time,
) int {
	active := datesLogged(workouts, sessions)
	today := startOfDay(now)

	streak := 0
	for i := 0; i < streakLookbackDays; i++ {
		day := FormatDate(today.AddDate(0, 0, -i))
		if _, ok := active[day]; ok {
			streak++
			continue
		}
		if i > 0 {
			break
		}
	}

	return streak
}
