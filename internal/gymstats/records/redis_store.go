package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/2beens/gymdash/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	collectionWorkouts  = "workouts"
	collectionSessions  = "sessions"
	collectionSchedules = "schedules"
	collectionRoutines  = "routines"
	collectionProfile   = "profile"
)

// RedisKey is the key holding one collection of a user, as a single JSON document.
func RedisKey(userID, collection string) string {
	return fmt.Sprintf("gymdash::%s::%s", userID, collection)
}

type redisDocument struct {
	collection string
	value      any
}

// RedisStore keeps every collection as a whole JSON document, read and written
// at once. Appends are read-modify-write, serialized within this process only.
type RedisStore struct {
	rdb *redis.Client
	// guards appends
	mu sync.Mutex
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{
		rdb: rdb,
	}
}

func (s *RedisStore) WorkoutRecords(ctx context.Context, userID string) (_ []WorkoutRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.records.workouts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workouts := make([]WorkoutRecord, 0)
	if _, err := s.getDocument(ctx, RedisKey(userID, collectionWorkouts), &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (s *RedisStore) RoutineSessions(ctx context.Context, userID string) (_ []RoutineSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.records.sessions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessions := make([]RoutineSession, 0)
	if _, err := s.getDocument(ctx, RedisKey(userID, collectionSessions), &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *RedisStore) RoutineSchedules(ctx context.Context, userID string) (_ []RoutineSchedule, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.records.schedules")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	schedules := make([]RoutineSchedule, 0)
	if _, err := s.getDocument(ctx, RedisKey(userID, collectionSchedules), &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (s *RedisStore) Routines(ctx context.Context, userID string) (_ []Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.records.routines")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	routines := make([]Routine, 0)
	if _, err := s.getDocument(ctx, RedisKey(userID, collectionRoutines), &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

func (s *RedisStore) UserProfile(ctx context.Context, userID string) (_ *UserProfile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.records.profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var profile UserProfile
	found, err := s.getDocument(ctx, RedisKey(userID, collectionProfile), &profile)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &profile, nil
}

func (s *RedisStore) AddWorkoutRecord(ctx context.Context, userID string, record WorkoutRecord) (_ *WorkoutRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.records.add_workout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("workout.id", record.ID))

	s.mu.Lock()
	defer s.mu.Unlock()

	workouts, err := s.WorkoutRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, w := range workouts {
		if w.ID == record.ID {
			return nil, fmt.Errorf("workout [%s]: %w", record.ID, ErrAlreadyExists)
		}
	}

	workouts = append(workouts, record)
	if err := s.setDocument(ctx, RedisKey(userID, collectionWorkouts), workouts); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RedisStore) AddRoutineSession(ctx context.Context, userID string, session RoutineSession) (_ *RoutineSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.records.add_session")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("session.id", session.ID))

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.RoutineSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, rs := range sessions {
		if rs.ID == session.ID {
			return nil, fmt.Errorf("session [%s]: %w", session.ID, ErrAlreadyExists)
		}
	}

	sessions = append(sessions, session)
	if err := s.setDocument(ctx, RedisKey(userID, collectionSessions), sessions); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisStore) SaveRoutineSchedules(ctx context.Context, userID string, schedules []RoutineSchedule) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.records.save_schedules")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.setDocument(ctx, RedisKey(userID, collectionSchedules), nonNil(schedules))
}

func (s *RedisStore) SaveRoutines(ctx context.Context, userID string, routines []Routine) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.records.save_routines")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.setDocument(ctx, RedisKey(userID, collectionRoutines), nonNil(routines))
}

func (s *RedisStore) SaveUserProfile(ctx context.Context, userID string, profile UserProfile) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.records.save_profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.setDocument(ctx, RedisKey(userID, collectionProfile), profile)
}

// Import writes all collections with a single MSET, so readers never see a
// mix of old and new collections.
func (s *RedisStore) Import(ctx context.Context, export Export) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.records.import")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", export.UserID))

	userID := export.UserID
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

	documents := []redisDocument{
		{collectionWorkouts, nonNil(export.Workouts)},
		{collectionSessions, nonNil(export.Sessions)},
		{collectionSchedules, nonNil(export.Schedules)},
		{collectionRoutines, nonNil(export.Routines)},
	}
	if export.Profile != nil {
		documents = append(documents, redisDocument{collectionProfile, export.Profile})
	}

	values := make([]any, 0, 2*len(documents))
	for _, d := range documents {
		docJson, err := json.Marshal(d.value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", d.collection, err)
		}
		values = append(values, RedisKey(userID, d.collection), string(docJson))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rdb.MSet(ctx, values...).Err(); err != nil {
		return fmt.Errorf("redis mset: %w", err)
	}
	if export.Profile == nil {
		if err := s.rdb.Del(ctx, RedisKey(userID, collectionProfile)).Err(); err != nil {
			return fmt.Errorf("redis del profile: %w", err)
		}
	}
	return nil
}

// getDocument decodes the document at key into dest, reporting whether it existed.
func (s *RedisStore) getDocument(ctx context.Context, key string, dest any) (bool, error) {
	docJson, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get [%s]: %w", key, err)
	}
	if err := json.Unmarshal(docJson, dest); err != nil {
		return false, fmt.Errorf("unmarshal [%s]: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) setDocument(ctx context.Context, key string, value any) error {
	docJson, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal [%s]: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, string(docJson), 0).Err(); err != nil {
		return fmt.Errorf("redis set [%s]: %w", key, err)
	}
	return nil
}
