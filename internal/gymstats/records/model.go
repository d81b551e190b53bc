package records

import "time"

// Series is a single set of an exercise.
type Series struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// WorkoutRecord represents one logged exercise instance.
// Date is kept exactly as it was encoded by the client (ISO-8601),
// calendar dates are compared in that encoding.
type WorkoutRecord struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"`
	Exercise    string   `json:"exercise"`
	MuscleGroup string   `json:"muscleGroup"`
	Series      []Series `json:"series"`
}

type SessionExercise struct {
	Name        string   `json:"name"`
	MuscleGroup string   `json:"muscleGroup"`
	Series      []Series `json:"series"`
}

type SessionTotals struct {
	TotalSeconds *float64 `json:"totalSeconds,omitempty"`
}

// RoutineSession is one completed multi-exercise session of a predefined routine.
type RoutineSession struct {
	ID        string            `json:"id"`
	Date      string            `json:"date"`
	RoutineID string            `json:"routineId"`
	Exercises []SessionExercise `json:"exercises"`
	Totals    SessionTotals     `json:"totals"`
}

// RoutineSchedule binds a routine to the weekdays it should be done on.
type RoutineSchedule struct {
	RoutineID     string      `json:"routineId"`
	IsActive      bool        `json:"isActive"`
	ScheduledDays []DayOfWeek `json:"scheduledDays"`
}

// IsScheduledOn reports whether the schedule is active and includes the given day.
func (rs RoutineSchedule) IsScheduledOn(day DayOfWeek) bool {
	if !rs.IsActive {
		return false
	}
	for _, d := range rs.ScheduledDays {
		if d == day {
			return true
		}
	}
	return false
}

type RoutineExercise struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup,omitempty"`
	Sets        int    `json:"sets,omitempty"`
	Reps        int    `json:"reps,omitempty"`
}

// Routine is a template referenced by id from sessions and schedules.
// TotalTime is in minutes.
type Routine struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Exercises []RoutineExercise `json:"exercises"`
	TotalTime *int              `json:"totalTime,omitempty"`
}

type UserProfile struct {
	Name           string `json:"name"`
	WeeklyWorkouts *int   `json:"weeklyWorkouts,omitempty"`
	FitnessGoal    string `json:"fitnessGoal,omitempty"`
	Level          string `json:"level,omitempty"`
}

// Export is a full dump of a single user's collections.
type Export struct {
	UserID    string            `json:"userId"`
	Workouts  []WorkoutRecord   `json:"workouts"`
	Sessions  []RoutineSession  `json:"sessions"`
	Schedules []RoutineSchedule `json:"schedules"`
	Routines  []Routine         `json:"routines"`
	Profile   *UserProfile      `json:"profile"`
}

// DayOfWeek as stored in routine schedules.
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

var weekdays = [...]DayOfWeek{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// DayOfWeekFromDate returns the schedule day for the calendar date of t (in t's location).
func DayOfWeekFromDate(t time.Time) DayOfWeek {
	return weekdays[t.Weekday()]
}

func (d DayOfWeek) String() string {
	return string(d)
}

func (d DayOfWeek) IsValid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	default:
		return false
	}
}
