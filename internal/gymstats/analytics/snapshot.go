package analytics

import (
	"math"
	"time"

	"github.com/2beens/gymdash/internal/gymstats/records"
)

const (
	defaultWeeklyWorkouts = 4
	minWeeklyWorkouts     = 1
	maxWeeklyWorkouts     = 14
)

// Inputs holds the collections of one refresh. All of them must come from the
// same fetch, a schedule must never be joined with sessions of another moment.
type Inputs struct {
	Workouts  []records.WorkoutRecord
	Sessions  []records.RoutineSession
	Schedules []records.RoutineSchedule
	Routines  []records.Routine
	Profile   *records.UserProfile
}

type WeeklyStats struct {
	Volume     float64 `json:"volume"`
	Workouts   int     `json:"workouts"`
	Sessions   int     `json:"sessions"`
	Activities int     `json:"activities"`
	Streak     int     `json:"streak"`
}

type WeekProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Snapshot holds every derived dashboard metric of a single computation.
type Snapshot struct {
	GeneratedAt     time.Time       `json:"generatedAt"`
	Week            Window          `json:"week"`
	Stats           WeeklyStats     `json:"stats"`
	WeekProgress    WeekProgress    `json:"weekProgress"`
	Adherence       Adherence       `json:"adherence"`
	WeeklyChallenge WeeklyChallenge `json:"weeklyChallenge"`
	Today           TodayRoutines   `json:"today"`
	WeekRoutines    WeekRoutines    `json:"weekRoutines"`
}

// RoundedVolume is the weekly volume as it should be presented.
func (s *Snapshot) RoundedVolume() int {
	return int(math.Round(s.Stats.Volume))
}

// TargetActivities is the weekly workouts target of the profile,
// clamped to [1, 14], defaulting to 4.
func TargetActivities(profile *records.UserProfile) int {
	target := defaultWeeklyWorkouts
	if profile != nil && profile.WeeklyWorkouts != nil {
		target = *profile.WeeklyWorkouts
	}
	if target < minWeeklyWorkouts {
		return minWeeklyWorkouts
	}
	if target > maxWeeklyWorkouts {
		return maxWeeklyWorkouts
	}
	return target
}

// ComputeSnapshot derives the dashboard metrics from the given inputs as seen at now.
// Week boundaries are in now's location. It never fails: missing or malformed
// data degrades to zero values.
func ComputeSnapshot(in Inputs, now time.Time) *Snapshot {
	week := WeekWindow(now, 0)
	target := TargetActivities(in.Profile)

	weekWorkouts := WorkoutsInWindow(in.Workouts, week)
	weekSessions := SessionsInWindow(in.Sessions, week)
	activities := len(ActivityDates(in.Workouts, in.Sessions, week))

	return &Snapshot{
		GeneratedAt: now,
		Week:        week,
		Stats: WeeklyStats{
			Volume:     Volume(weekWorkouts),
			Workouts:   len(weekWorkouts),
			Sessions:   len(weekSessions),
			Activities: activities,
			Streak:     Streak(in.Workouts, in.Sessions, now),
		},
		WeekProgress: WeekProgress{
			Current: activities,
			Total:   target,
		},
		Adherence:       AnalyzeAdherence(in.Workouts, in.Sessions, target, now),
		WeeklyChallenge: EvaluateChallenge(activities, target, now),
		Today:           ResolveToday(in, now),
		WeekRoutines:    ResolveWeek(in, now),
	}
}
