package records

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists = errors.New("record already exists")
	ErrInvalidRecord = errors.New("invalid record")
)

// Store holds the training collections of every user. Getters of a user
// without data return empty collections and a nil profile, never an error.
type Store interface {
	WorkoutRecords(ctx context.Context, userID string) ([]WorkoutRecord, error)
	RoutineSessions(ctx context.Context, userID string) ([]RoutineSession, error)
	RoutineSchedules(ctx context.Context, userID string) ([]RoutineSchedule, error)
	Routines(ctx context.Context, userID string) ([]Routine, error)
	UserProfile(ctx context.Context, userID string) (*UserProfile, error)

	AddWorkoutRecord(ctx context.Context, userID string, record WorkoutRecord) (*WorkoutRecord, error)
	AddRoutineSession(ctx context.Context, userID string, session RoutineSession) (*RoutineSession, error)
	// SaveRoutineSchedules and SaveRoutines replace the whole collection.
	SaveRoutineSchedules(ctx context.Context, userID string, schedules []RoutineSchedule) error
	SaveRoutines(ctx context.Context, userID string, routines []Routine) error
	SaveUserProfile(ctx context.Context, userID string, profile UserProfile) error
	// Import replaces every collection of export.UserID.
	Import(ctx context.Context, export Export) error
}

// ExportUser dumps all collections of a user.
func ExportUser(ctx context.Context, store Store, userID string) (_ *Export, err error) {
	export := &Export{UserID: userID}
	if export.Workouts, err = store.WorkoutRecords(ctx, userID); err != nil {
		return nil, fmt.Errorf("workout records: %w", err)
	}
	if export.Sessions, err = store.RoutineSessions(ctx, userID); err != nil {
		return nil, fmt.Errorf("routine sessions: %w", err)
	}
	if export.Schedules, err = store.RoutineSchedules(ctx, userID); err != nil {
		return nil, fmt.Errorf("routine schedules: %w", err)
	}
	if export.Routines, err = store.Routines(ctx, userID); err != nil {
		return nil, fmt.Errorf("routines: %w", err)
	}
	if export.Profile, err = store.UserProfile(ctx, userID); err != nil {
		return nil, fmt.Errorf("user profile: %w", err)
	}
	return export, nil
}
