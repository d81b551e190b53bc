package records

import (
	"fmt"
)

// Dates are not parsed here: a malformed date is kept and later ignored by
// the dashboard computations, as the mobile app does with its own storage.

func (w WorkoutRecord) Validate() error {
	if w.Date == "" {
		return fmt.Errorf("%w: workout date empty", ErrInvalidRecord)
	}
	if w.Exercise == "" {
		return fmt.Errorf("%w: workout exercise empty", ErrInvalidRecord)
	}
	return nil
}

func (s RoutineSession) Validate() error {
	if s.Date == "" {
		return fmt.Errorf("%w: session date empty", ErrInvalidRecord)
	}
	if s.RoutineID == "" {
		return fmt.Errorf("%w: session routine id empty", ErrInvalidRecord)
	}
	return nil
}

func (rs RoutineSchedule) Validate() error {
	if rs.RoutineID == "" {
		return fmt.Errorf("%w: schedule routine id empty", ErrInvalidRecord)
	}
	for _, d := range rs.ScheduledDays {
		if !d.IsValid() {
			return fmt.Errorf("%w: schedule of [%s] has invalid day [%s]", ErrInvalidRecord, rs.RoutineID, d)
		}
	}
	return nil
}

func (r Routine) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: routine id empty", ErrInvalidRecord)
	}
	if r.Title == "" {
		return fmt.Errorf("%w: routine [%s] title empty", ErrInvalidRecord, r.ID)
	}
	if r.TotalTime != nil && *r.TotalTime < 0 {
		return fmt.Errorf("%w: routine [%s] total time negative", ErrInvalidRecord, r.ID)
	}
	return nil
}

func (p UserProfile) Validate() error {
	if p.WeeklyWorkouts != nil && *p.WeeklyWorkouts < 0 {
		return fmt.Errorf("%w: weekly workouts negative", ErrInvalidRecord)
	}
	return nil
}

func (e Export) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("%w: user id empty", ErrInvalidRecord)
	}
	for _, w := range e.Workouts {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	for _, s := range e.Sessions {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, rs := range e.Schedules {
		if err := rs.Validate(); err != nil {
			return err
		}
	}
	for _, r := range e.Routines {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	if e.Profile != nil {
		return e.Profile.Validate()
	}
	return nil
}
