package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/gymdash/internal/telemetry/tracing"
	"github.com/2beens/gymdash/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PsqlStore struct {
	db *pgxpool.Pool
}

var _ Store = (*PsqlStore)(nil)

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

func (s *PsqlStore) WorkoutRecords(ctx context.Context, userID string) (_ []WorkoutRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.workouts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	rows, err := s.db.Query(
		ctx,
		`SELECT id, date, exercise, muscle_group, series
			FROM workout_record
			WHERE user_id = $1
			ORDER BY date, id;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	workouts := make([]WorkoutRecord, 0)
	for rows.Next() {
		var w WorkoutRecord
		var seriesJson []byte
		if err := rows.Scan(&w.ID, &w.Date, &w.Exercise, &w.MuscleGroup, &seriesJson); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if err := json.Unmarshal(seriesJson, &w.Series); err != nil {
			return nil, fmt.Errorf("unmarshal series of [%s]: %w", w.ID, err)
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(workouts)))
	return workouts, nil
}

func (s *PsqlStore) RoutineSessions(ctx context.Context, userID string) (_ []RoutineSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.sessions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	rows, err := s.db.Query(
		ctx,
		`SELECT id, date, routine_id, exercises, totals
			FROM routine_session
			WHERE user_id = $1
			ORDER BY date, id;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	sessions := make([]RoutineSession, 0)
	for rows.Next() {
		var rs RoutineSession
		var exercisesJson, totalsJson []byte
		if err := rows.Scan(&rs.ID, &rs.Date, &rs.RoutineID, &exercisesJson, &totalsJson); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if err := json.Unmarshal(exercisesJson, &rs.Exercises); err != nil {
			return nil, fmt.Errorf("unmarshal exercises of [%s]: %w", rs.ID, err)
		}
		if err := json.Unmarshal(totalsJson, &rs.Totals); err != nil {
			return nil, fmt.Errorf("unmarshal totals of [%s]: %w", rs.ID, err)
		}
		sessions = append(sessions, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(sessions)))
	return sessions, nil
}

func (s *PsqlStore) RoutineSchedules(ctx context.Context, userID string) (_ []RoutineSchedule, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.schedules")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	rows, err := s.db.Query(
		ctx,
		`SELECT routine_id, is_active, scheduled_days
			FROM routine_schedule
			WHERE user_id = $1
			ORDER BY routine_id;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	schedules := make([]RoutineSchedule, 0)
	for rows.Next() {
		var rs RoutineSchedule
		var daysJson []byte
		if err := rows.Scan(&rs.RoutineID, &rs.IsActive, &daysJson); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if err := json.Unmarshal(daysJson, &rs.ScheduledDays); err != nil {
			return nil, fmt.Errorf("unmarshal days of [%s]: %w", rs.RoutineID, err)
		}
		schedules = append(schedules, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return schedules, nil
}

func (s *PsqlStore) Routines(ctx context.Context, userID string) (_ []Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.routines")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	rows, err := s.db.Query(
		ctx,
		`SELECT id, title, exercises, total_time
			FROM routine
			WHERE user_id = $1
			ORDER BY id;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	routines := make([]Routine, 0)
	for rows.Next() {
		var r Routine
		var exercisesJson []byte
		if err := rows.Scan(&r.ID, &r.Title, &exercisesJson, &r.TotalTime); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if err := json.Unmarshal(exercisesJson, &r.Exercises); err != nil {
			return nil, fmt.Errorf("unmarshal exercises of [%s]: %w", r.ID, err)
		}
		routines = append(routines, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return routines, nil
}

func (s *PsqlStore) UserProfile(ctx context.Context, userID string) (_ *UserProfile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	var profileJson []byte
	err = s.db.QueryRow(
		ctx,
		`SELECT profile FROM user_profile WHERE user_id = $1;`,
		userID,
	).Scan(&profileJson)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query row: %w", err)
	}

	var profile UserProfile
	if err := json.Unmarshal(profileJson, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &profile, nil
}

func (s *PsqlStore) AddWorkoutRecord(ctx context.Context, userID string, record WorkoutRecord) (_ *WorkoutRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.add_workout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("workout.id", record.ID))

	if err := insertWorkout(ctx, s.db, userID, record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *PsqlStore) AddRoutineSession(ctx context.Context, userID string, session RoutineSession) (_ *RoutineSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.add_session")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("session.id", session.ID))

	if err := insertSession(ctx, s.db, userID, session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *PsqlStore) SaveRoutineSchedules(ctx context.Context, userID string, schedules []RoutineSchedule) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.save_schedules")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))
	span.SetAttributes(attribute.Int("count", len(schedules)))

	return s.inTx(ctx, func(tx pgx.Tx) error {
		return replaceSchedules(ctx, tx, userID, schedules)
	})
}

func (s *PsqlStore) SaveRoutines(ctx context.Context, userID string, routines []Routine) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.save_routines")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))
	span.SetAttributes(attribute.Int("count", len(routines)))

	return s.inTx(ctx, func(tx pgx.Tx) error {
		return replaceRoutines(ctx, tx, userID, routines)
	})
}

func (s *PsqlStore) SaveUserProfile(ctx context.Context, userID string, profile UserProfile) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.save_profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	return upsertProfile(ctx, s.db, userID, profile)
}

func (s *PsqlStore) Import(ctx context.Context, export Export) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.import")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", export.UserID))
	span.SetAttributes(attribute.Int("workouts", len(export.Workouts)))
	span.SetAttributes(attribute.Int("sessions", len(export.Sessions)))

	return s.inTx(ctx, func(tx pgx.Tx) error {
		userID := export.UserID
		for _, table := range []string{"workout_record", "routine_session", "user_profile"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1;`, userID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		for _, w := range export.Workouts {
			if w.ID == "" {
				w.ID = uuid.NewString()
			}
			if err := insertWorkout(ctx, tx, userID, w); err != nil {
				return err
			}
		}
		for _, rs := range export.Sessions {
			if rs.ID == "" {
				rs.ID = uuid.NewString()
			}
			if err := insertSession(ctx, tx, userID, rs); err != nil {
				return err
			}
		}
		if err := replaceSchedules(ctx, tx, userID, export.Schedules); err != nil {
			return err
		}
		if err := replaceRoutines(ctx, tx, userID, export.Routines); err != nil {
			return err
		}
		if export.Profile != nil {
			return upsertProfile(ctx, tx, userID, *export.Profile)
		}
		return nil
	})
}

func (s *PsqlStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// no-op after commit
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertWorkout(ctx context.Context, db execer, userID string, w WorkoutRecord) error {
	seriesJson, err := json.Marshal(nonNil(w.Series))
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	_, err = db.Exec(
		ctx,
		`INSERT INTO workout_record (id, user_id, date, exercise, muscle_group, series)
			VALUES ($1, $2, $3, $4, $5, $6);`,
		w.ID, userID, w.Date, w.Exercise, w.MuscleGroup, seriesJson,
	)
	if pkg.IsUniqueViolationError(err) {
		return fmt.Errorf("workout [%s]: %w", w.ID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("insert workout [%s]: %w", w.ID, err)
	}
	return nil
}

func insertSession(ctx context.Context, db execer, userID string, rs RoutineSession) error {
	exercisesJson, err := json.Marshal(nonNil(rs.Exercises))
	if err != nil {
		return fmt.Errorf("marshal exercises: %w", err)
	}
	totalsJson, err := json.Marshal(rs.Totals)
	if err != nil {
		return fmt.Errorf("marshal totals: %w", err)
	}
	_, err = db.Exec(
		ctx,
		`INSERT INTO routine_session (id, user_id, date, routine_id, exercises, totals)
			VALUES ($1, $2, $3, $4, $5, $6);`,
		rs.ID, userID, rs.Date, rs.RoutineID, exercisesJson, totalsJson,
	)
	if pkg.IsUniqueViolationError(err) {
		return fmt.Errorf("session [%s]: %w", rs.ID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("insert session [%s]: %w", rs.ID, err)
	}
	return nil
}

func replaceSchedules(ctx context.Context, tx pgx.Tx, userID string, schedules []RoutineSchedule) error {
	if _, err := tx.Exec(ctx, `DELETE FROM routine_schedule WHERE user_id = $1;`, userID); err != nil {
		return fmt.Errorf("clear schedules: %w", err)
	}
	for _, rs := range schedules {
		daysJson, err := json.Marshal(nonNil(rs.ScheduledDays))
		if err != nil {
			return fmt.Errorf("marshal days: %w", err)
		}
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO routine_schedule (user_id, routine_id, is_active, scheduled_days)
				VALUES ($1, $2, $3, $4);`,
			userID, rs.RoutineID, rs.IsActive, daysJson,
		); err != nil {
			return fmt.Errorf("insert schedule [%s]: %w", rs.RoutineID, err)
		}
	}
	return nil
}

func replaceRoutines(ctx context.Context, tx pgx.Tx, userID string, routines []Routine) error {
	if _, err := tx.Exec(ctx, `DELETE FROM routine WHERE user_id = $1;`, userID); err != nil {
		return fmt.Errorf("clear routines: %w", err)
	}
	for _, r := range routines {
		exercisesJson, err := json.Marshal(nonNil(r.Exercises))
		if err != nil {
			return fmt.Errorf("marshal exercises: %w", err)
		}
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO routine (user_id, id, title, exercises, total_time)
				VALUES ($1, $2, $3, $4, $5);`,
			userID, r.ID, r.Title, exercisesJson, r.TotalTime,
		); err != nil {
			return fmt.Errorf("insert routine [%s]: %w", r.ID, err)
		}
	}
	return nil
}

func upsertProfile(ctx context.Context, db execer, userID string, profile UserProfile) error {
	profileJson, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if _, err := db.Exec(
		ctx,
		`INSERT INTO user_profile (user_id, profile) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET profile = EXCLUDED.profile;`,
		userID, profileJson,
	); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
