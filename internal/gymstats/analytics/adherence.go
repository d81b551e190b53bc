package analytics

import (
	"fmt"
	"time"

	"github.com/2beens/gymdash/internal/gymstats/records"
)

const (
	WeeksToAnalyze          = 4
	StreakWeeksThreshold    = 70.0
	streakWeeksBonusMinimum = 4

	// onTimePlaceholder is reported as the on-time percentage whenever this
	// week has any activity. There is no real on-time tracking behind it.
	onTimePlaceholder = 85.0

	progressionDelta = 10.0
)

type AdherenceLevel string

const (
	LevelLow       AdherenceLevel = "Faible"
	LevelMedium    AdherenceLevel = "Moyenne"
	LevelGood      AdherenceLevel = "Bonne"
	LevelExcellent AdherenceLevel = "Excellente"
)

type Progression string

const (
	ProgressionRising  Progression = "rising"
	ProgressionStable  Progression = "stable"
	ProgressionFalling Progression = "falling"
)

// WeekAdherence holds the planned vs. completed activity for a single week.
type WeekAdherence struct {
	Offset     int     `json:"offset"`
	Window     Window  `json:"window"`
	Activities int     `json:"activities"`
	Target     int     `json:"target"`
	Rate       float64 `json:"rate"`
}

type Adherence struct {
	Weeks                 []WeekAdherence `json:"weeks"`
	LongTermAdherenceRate float64         `json:"longTermAdherenceRate"`
	StreakWeeks           int             `json:"streakWeeks"`
	Level                 AdherenceLevel  `json:"level"`
	Progression           float64         `json:"progression"`
	Message               string          `json:"message"`
	OnTimePercentage      float64         `json:"onTimePercentage"`
}

// AnalyzeAdherence computes the adherence of the last WeeksToAnalyze weeks
// (offset 0 being the current, partial week) against the weekly target.
func AnalyzeAdherence(
	workouts []records.WorkoutRecord,
	sessions []records.RoutineSession,
	target int,
	now time.Time,
) Adherence {
	if target < 1 {
		target = 1
	}

	weeks := make([]WeekAdherence, 0, WeeksToAnalyze)
	var totalActivities, totalTargets int
	for offset := 0; offset < WeeksToAnalyze; offset++ {
		window := WeekWindow(now, offset)
		count := len(ActivityDates(workouts, sessions, window))
		weeks = append(weeks, WeekAdherence{
			Offset:     offset,
			Window:     window,
			Activities: count,
			Target:     target,
			Rate:       float64(count) / float64(target) * 100,
		})
		totalActivities += count
		totalTargets += target
	}

	longTermRate := float64(totalActivities) / float64(totalTargets) * 100

	streakWeeks := 0
	for _, w := range weeks {
		if w.Rate < StreakWeeksThreshold {
			break
		}
		streakWeeks++
	}

	recent := (weeks[0].Rate + weeks[1].Rate) / 2
	older := (weeks[2].Rate + weeks[3].Rate) / 2
	progression := recent - older

	level := adherenceLevel(longTermRate)

	onTime := 0.0
	if weeks[0].Activities > 0 {
		onTime = onTimePlaceholder
	}

	return Adherence{
		Weeks:                 weeks,
		LongTermAdherenceRate: longTermRate,
		StreakWeeks:           streakWeeks,
		Level:                 level,
		Progression:           progression,
		Message:               AdherenceMessage(level, progressionOf(progression), streakWeeks),
		OnTimePercentage:      onTime,
	}
}

func adherenceLevel(rate float64) AdherenceLevel {
	switch {
	case rate < 50:
		return LevelLow
	case rate < 70:
		return LevelMedium
	case rate < 85:
		return LevelGood
	default:
		return LevelExcellent
	}
}

func progressionOf(delta float64) Progression {
	switch {
	case delta > progressionDelta:
		return ProgressionRising
	case delta < -progressionDelta:
		return ProgressionFalling
	default:
		return ProgressionStable
	}
}

var adherenceMessages = map[AdherenceLevel]map[Progression]string{
	LevelLow: {
		ProgressionRising:  "Ça repart ! Continue sur cette lancée pour retrouver ton rythme.",
		ProgressionStable:  "Ta régularité est faible. Fixe-toi un petit objectif cette semaine.",
		ProgressionFalling: "Ta régularité baisse. Une séance courte vaut mieux que rien.",
	},
	LevelMedium: {
		ProgressionRising:  "Belle progression ! Tu te rapproches de ton objectif.",
		ProgressionStable:  "Régularité moyenne. Encore un effort pour atteindre tes objectifs.",
		ProgressionFalling: "Attention, ta régularité diminue. Reprends ton planning en main.",
	},
	LevelGood: {
		ProgressionRising:  "Très bonne dynamique ! Tu es sur la bonne voie.",
		ProgressionStable:  "Bonne régularité. Garde ce rythme.",
		ProgressionFalling: "Bonne régularité, mais elle fléchit un peu ces derniers temps.",
	},
	LevelExcellent: {
		ProgressionRising:  "Excellent ! Ta régularité ne cesse de s'améliorer.",
		ProgressionStable:  "Excellente régularité. Tu es un exemple !",
		ProgressionFalling: "Excellente régularité, même si elle ralentit légèrement.",
	},
}

// AdherenceMessage picks the motivational message for a level and progression,
// with a bonus clause for long streaks of weeks at or above the threshold.
func AdherenceMessage(level AdherenceLevel, progression Progression, streakWeeks int) string {
	msg := adherenceMessages[level][progression]
	if streakWeeks >= streakWeeksBonusMinimum {
		msg += fmt.Sprintf(" %d semaines consécutives au-dessus de 70%% !", streakWeeks)
	}
	return msg
}
