package analytics

import (
	"fmt"
	"math"
	"time"
)

const (
	challengeCompletedDescription = "Défi de la semaine relevé, bravo !"
	challengeOneLeftDescription   = "Plus qu'une séance pour relever le défi de la semaine !"
	challengeTargetDescription    = "%d séances prévues cette semaine"
)

type WeeklyChallenge struct {
	Current        int     `json:"current"`
	Target         int     `json:"target"`
	Progress       float64 `json:"progress"`
	DaysRemaining  int     `json:"daysRemaining"`
	IsCompleted    bool    `json:"isCompleted"`
	Description    string  `json:"description"`
	SpecialMessage string  `json:"specialMessage,omitempty"`
}

// EvaluateChallenge computes the progress towards the weekly target
// within the Sunday-start week containing now.
func EvaluateChallenge(current, target int, now time.Time) WeeklyChallenge {
	progress := 0.0
	if target > 0 {
		progress = math.Min(float64(current)/float64(target), 1)
	}

	week := WeekWindow(now, 0)
	daysRemaining := int(math.Ceil(float64(week.End.Sub(now)) / float64(24*time.Hour)))
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	isCompleted := current >= target

	var description string
	switch {
	case isCompleted:
		description = challengeCompletedDescription
	case target-current == 1:
		description = challengeOneLeftDescription
	default:
		description = fmt.Sprintf(challengeTargetDescription, target)
	}

	challenge := WeeklyChallenge{
		Current:       current,
		Target:        target,
		Progress:      progress,
		DaysRemaining: daysRemaining,
		IsCompleted:   isCompleted,
		Description:   description,
	}
	if isCompleted && daysRemaining > 0 {
		challenge.SpecialMessage = specialMessage(daysRemaining)
	}

	return challenge
}

func specialMessage(daysRemaining int) string {
	if daysRemaining == 1 {
		return "Objectif atteint avec 1 jour d'avance !"
	}
	return fmt.Sprintf("Objectif atteint avec %d jours d'avance !", daysRemaining)
}
