package analytics

import (
	"time"

	"github.com/2beens/gymdash/internal/gymstats/records"
)

// minutes per exercise, used when a routine has no total time set
const defaultMinutesPerExercise = 15

type PlannedRoutine struct {
	RoutineID         string   `json:"routineId"`
	Title             string   `json:"title"`
	EstimatedDuration int      `json:"estimatedDuration"`
	ExercisesCount    int      `json:"exercisesCount"`
	MuscleGroups      []string `json:"muscleGroups"`
	IsCompleted       bool     `json:"isCompleted"`
	IsMissed          bool     `json:"isMissed"`
}

type TodayRoutines struct {
	Date            string            `json:"date"`
	DayOfWeek       records.DayOfWeek `json:"dayOfWeek"`
	Routines        []PlannedRoutine  `json:"routines"`
	HasRoutineToday bool              `json:"hasRoutineToday"`

	// IsCompleted is true if anything at all was logged today,
	// not only the planned routines.
	IsCompleted bool `json:"isCompleted"`
}

type DayRoutines struct {
	Date        string            `json:"date"`
	DayOfWeek   records.DayOfWeek `json:"dayOfWeek"`
	IsToday     bool              `json:"isToday"`
	Routines    []PlannedRoutine  `json:"routines"`
	HasActivity bool              `json:"hasActivity"`
}

// WeekRoutines is the routine plan of the Monday-start week containing today.
type WeekRoutines struct {
	WeekStart              string        `json:"weekStart"`
	Days                   []DayRoutines `json:"days"`
	WeeklyTargetCount      int           `json:"weeklyTargetCount"`
	CompletedThisWeekCount int           `json:"completedThisWeekCount"`
}

type routineResolver struct {
	routinesByID map[string]records.Routine
	schedules    []records.RoutineSchedule
	// date -> routine ids with a session on that date
	sessionsByDate map[string]map[string]bool
	activeDates    map[string]struct{}
}

func newRoutineResolver(in Inputs) *routineResolver {
	r := &routineResolver{
		routinesByID:   make(map[string]records.Routine, len(in.Routines)),
		schedules:      in.Schedules,
		sessionsByDate: make(map[string]map[string]bool),
		activeDates:    datesLogged(in.Workouts, in.Sessions),
	}
	for _, routine := range in.Routines {
		r.routinesByID[routine.ID] = routine
	}
	for _, s := range in.Sessions {
		day := DatePart(s.Date)
		if day == "" {
			continue
		}
		if r.sessionsByDate[day] == nil {
			r.sessionsByDate[day] = make(map[string]bool)
		}
		r.sessionsByDate[day][s.RoutineID] = true
	}
	return r
}

// plannedOn resolves the routines scheduled for the given date. Schedules
// pointing at unknown routines are dropped.
func (r *routineResolver) plannedOn(date time.Time, today time.Time) []PlannedRoutine {
	day := FormatDate(date)
	dow := records.DayOfWeekFromDate(date)

	planned := make([]PlannedRoutine, 0)
	for _, schedule := range r.schedules {
		if !schedule.IsScheduledOn(dow) {
			continue
		}
		routine, ok := r.routinesByID[schedule.RoutineID]
		if !ok {
			continue
		}

		completed := r.sessionsByDate[day][routine.ID]
		planned = append(planned, PlannedRoutine{
			RoutineID:         routine.ID,
			Title:             routine.Title,
			EstimatedDuration: estimatedDuration(routine),
			ExercisesCount:    len(routine.Exercises),
			MuscleGroups:      routineMuscleGroups(routine),
			IsCompleted:       completed,
			IsMissed:          date.Before(today) && !completed,
		})
	}

	return planned
}

func (r *routineResolver) hasActivityOn(date time.Time) bool {
	_, ok := r.activeDates[FormatDate(date)]
	return ok
}

// ResolveToday lists the routines planned for today and whether each was done.
func ResolveToday(in Inputs, now time.Time) TodayRoutines {
	resolver := newRoutineResolver(in)
	today := startOfDay(now)

	planned := resolver.plannedOn(today, today)
	return TodayRoutines{
		Date:            FormatDate(today),
		DayOfWeek:       records.DayOfWeekFromDate(today),
		Routines:        planned,
		HasRoutineToday: len(planned) > 0,
		IsCompleted:     resolver.hasActivityOn(today),
	}
}

// ResolveWeek lists the planned routines for each day of the Monday-start week
// containing now, marking past planned routines without a session as missed.
func ResolveWeek(in Inputs, now time.Time) WeekRoutines {
	resolver := newRoutineResolver(in)
	today := startOfDay(now)
	monday := MondayWeekStart(now)

	week := WeekRoutines{
		WeekStart: FormatDate(monday),
		Days:      make([]DayRoutines, 0, 7),
	}
	for i := 0; i < 7; i++ {
		date := monday.AddDate(0, 0, i)
		planned := resolver.plannedOn(date, today)
		for _, p := range planned {
			week.WeeklyTargetCount++
			if p.IsCompleted {
				week.CompletedThisWeekCount++
			}
		}
		week.Days = append(week.Days, DayRoutines{
			Date:        FormatDate(date),
			DayOfWeek:   records.DayOfWeekFromDate(date),
			IsToday:     date.Equal(today),
			Routines:    planned,
			HasActivity: resolver.hasActivityOn(date),
		})
	}

	return week
}

func estimatedDuration(routine records.Routine) int {
	if routine.TotalTime != nil {
		return *routine.TotalTime
	}
	return len(routine.Exercises) * defaultMinutesPerExercise
}

// routineMuscleGroups approximates the worked muscle groups with the
// de-duplicated exercise names of the routine.
func routineMuscleGroups(routine records.Routine) []string {
	seen := make(map[string]bool, len(routine.Exercises))
	groups := make([]string, 0, len(routine.Exercises))
	for _, ex := range routine.Exercises {
		if ex.Name == "" || seen[ex.Name] {
			continue
		}
		seen[ex.Name] = true
		groups = append(groups, ex.Name)
	}
	return groups
}
