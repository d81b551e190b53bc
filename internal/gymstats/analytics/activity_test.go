package analytics_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/2beens/gymdash/internal/gymstats/analytics"
	"github.com/2beens/gymdash/internal/gymstats/records"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestActivityDates(t *testing.T) {
	workouts := []records.WorkoutRecord{
		{Date: "2026-10-12T08:00:00.000Z"},
		{Date: "2026-10-12T18:30:00.000Z"},
		{Date: "2026-10-14T07:00:00.000Z"},
		// previous week
		{Date: "2026-10-05T07:00:00.000Z"},
		// malformed, silently ignored
		{Date: "lundi dernier"},
	}
	sessions := []records.RoutineSession{
		{Date: "2026-10-13T09:00:00.000Z", RoutineID: "r1"},
		{Date: "2026-10-14T19:00:00.000Z", RoutineID: "r1"},
	}

	dates := analytics.ActivityDates(workouts, sessions, analytics.WeekWindow(testNow, 0))
	assert.Len(t, dates, 3)
	assert.Contains(t, dates, "2026-10-12")
	assert.Contains(t, dates, "2026-10-13")
	assert.Contains(t, dates, "2026-10-14")

	prevWeek := analytics.ActivityDates(workouts, sessions, analytics.WeekWindow(testNow, 1))
	assert.Len(t, prevWeek, 1)
	assert.Contains(t, prevWeek, "2026-10-05")
}

func TestActivityDates_Empty(t *testing.T) {
	dates := analytics.ActivityDates(nil, nil, analytics.WeekWindow(testNow, 0))
	assert.NotNil(t, dates)
	assert.Empty(t, dates)
}

func TestActivityDates_DistinctDatesInWindow(t *testing.T) {
	faker := gofakeit.New(42)
	window := analytics.WeekWindow(testNow, 0)

	for run := 0; run < 20; run++ {
		var workouts []records.WorkoutRecord
		var sessions []records.RoutineSession
		expected := make(map[string]bool)

		n := faker.Number(0, 25)
		for i := 0; i < n; i++ {
			// spread over the current and previous week
			ts := window.Start.AddDate(0, 0, faker.Number(-7, 6)).
				Add(time.Duration(faker.Number(0, 23)) * time.Hour).
				Add(time.Duration(faker.Number(0, 59)) * time.Minute)
			encoded := ts.Format("2006-01-02T15:04:05.000Z")
			if window.Contains(ts) {
				expected[ts.Format("2006-01-02")] = true
			}
			if faker.Bool() {
				workouts = append(workouts, records.WorkoutRecord{Date: encoded, Exercise: faker.Word()})
			} else {
				sessions = append(sessions, records.RoutineSession{Date: encoded, RoutineID: faker.UUID()})
			}
		}

		dates := analytics.ActivityDates(workouts, sessions, window)
		assert.Len(t, dates, len(expected), fmt.Sprintf("run %d", run))
		for day := range expected {
			assert.Contains(t, dates, day)
		}
	}
}

func TestWorkoutsAndSessionsInWindow(t *testing.T) {
	window := analytics.WeekWindow(testNow, 0)
	workouts := []records.WorkoutRecord{
		{ID: "in", Date: "2026-10-11T00:00:00.000Z"},
		{ID: "out", Date: "2026-10-10T23:59:59.000Z"},
		{ID: "bad", Date: "???"},
	}
	sessions := []records.RoutineSession{
		{ID: "in", Date: "2026-10-17T23:59:59.999Z"},
		{ID: "out", Date: "2026-10-18T00:00:00.000Z"},
	}

	inWorkouts := analytics.WorkoutsInWindow(workouts, window)
	if assert.Len(t, inWorkouts, 1) {
		assert.Equal(t, "in", inWorkouts[0].ID)
	}
	inSessions := analytics.SessionsInWindow(sessions, window)
	if assert.Len(t, inSessions, 1) {
		assert.Equal(t, "in", inSessions[0].ID)
	}
}
