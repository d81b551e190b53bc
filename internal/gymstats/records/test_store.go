package records

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TestStore is an in-memory Store, used in tests and by the offline CLI.
type TestStore struct {
	mu    sync.Mutex
	users map[string]*Export
	// when set, returned by every call
	Err error
}

var _ Store = (*TestStore)(nil)

func NewTestStore() *TestStore {
	return &TestStore{
		users: make(map[string]*Export),
	}
}

func (s *TestStore) user(userID string) *Export {
	u, ok := s.users[userID]
	if !ok {
		u = &Export{UserID: userID}
		s.users[userID] = u
	}
	return u
}

func (s *TestStore) WorkoutRecords(_ context.Context, userID string) ([]WorkoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]WorkoutRecord{}, s.user(userID).Workouts...), nil
}

func (s *TestStore) RoutineSessions(_ context.Context, userID string) ([]RoutineSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]RoutineSession{}, s.user(userID).Sessions...), nil
}

func (s *TestStore) RoutineSchedules(_ context.Context, userID string) ([]RoutineSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]RoutineSchedule{}, s.user(userID).Schedules...), nil
}

func (s *TestStore) Routines(_ context.Context, userID string) ([]Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]Routine{}, s.user(userID).Routines...), nil
}

func (s *TestStore) UserProfile(_ context.Context, userID string) (*UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	profile := s.user(userID).Profile
	if profile == nil {
		return nil, nil
	}
	p := *profile
	return &p, nil
}

func (s *TestStore) AddWorkoutRecord(_ context.Context, userID string, record WorkoutRecord) (*WorkoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	u := s.user(userID)
	for _, w := range u.Workouts {
		if w.ID == record.ID {
			return nil, fmt.Errorf("workout [%s]: %w", record.ID, ErrAlreadyExists)
		}
	}
	u.Workouts = append(u.Workouts, record)
	return &record, nil
}

func (s *TestStore) AddRoutineSession(_ context.Context, userID string, session RoutineSession) (*RoutineSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	u := s.user(userID)
	for _, rs := range u.Sessions {
		if rs.ID == session.ID {
			return nil, fmt.Errorf("session [%s]: %w", session.ID, ErrAlreadyExists)
		}
	}
	u.Sessions = append(u.Sessions, session)
	return &session, nil
}

func (s *TestStore) SaveRoutineSchedules(_ context.Context, userID string, schedules []RoutineSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.user(userID).Schedules = append([]RoutineSchedule{}, schedules...)
	return nil
}

func (s *TestStore) SaveRoutines(_ context.Context, userID string, routines []Routine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.user(userID).Routines = append([]Routine{}, routines...)
	return nil
}

func (s *TestStore) SaveUserProfile(_ context.Context, userID string, profile UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.user(userID).Profile = &profile
	return nil
}

func (s *TestStore) Import(_ context.Context, export Export) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range export.Workouts {
		if export.Workouts[i].ID == "" {
			export.Workouts[i].ID = uuid.NewString()
		}
	}
	for i := range export.Sessions {
		if export.Sessions[i].ID == "" {
			export.Sessions[i].ID = uuid.NewString()
		}
	}
	s.users[export.UserID] = &export
	return nil
}
