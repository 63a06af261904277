// Package workout holds the rule based recommendation and calorie estimation
// logic. Everything here is pure and safe for concurrent use.
package workout

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// FitnessLevel is the self-reported training experience.
type FitnessLevel int

const (
	LevelBeginner FitnessLevel = iota
	LevelIntermediate
	LevelAdvanced
)

// Goal is the training objective.
type Goal int

const (
	GoalWeightLoss Goal = iota
	GoalMuscleGain
	GoalEndurance
)

var (
	ErrInvalidFitnessLevel = errors.New("workout: fitness level must be 0, 1 or 2")
	ErrInvalidGoal         = errors.New("workout: goal must be 0, 1 or 2")
	ErrUnknownExercise     = errors.New("workout: exercise not supported")
	ErrInvalidDuration     = errors.New("workout: duration and weight must not be negative")
)

// Input describes the member asking for a plan.
type Input struct {
	FitnessLevel FitnessLevel
	Goal         Goal
	HoursPerWeek float64
	HasEquipment bool
}

type levelRules struct {
	base  string
	goals map[Goal]string
}

var rules = map[FitnessLevel]levelRules{
	LevelBeginner: {
		base: "Bodyweight exercises (Push-ups, Squats, Planks)",
		goals: map[Goal]string{
			GoalMuscleGain: "Focus on bodyweight exercises",
			GoalEndurance:  "Try more reps and increase workout time gradually",
		},
	},
	LevelIntermediate: {
		base: "Weight training (Dumbbells, Barbell)",
		goals: map[Goal]string{
			GoalMuscleGain: "Increase sets and weights gradually",
			GoalEndurance:  "Focus on circuit training with moderate weight",
		},
	},
	LevelAdvanced: {
		base: "Advanced weight training (Deadlifts, Squats, Bench Press)",
		goals: map[Goal]string{
			GoalMuscleGain: "Heavy lifting with low reps",
			GoalEndurance:  "High-intensity interval training (HIIT)",
		},
	},
}

// Recommend returns the ordered plan lines: level base, goal modifier,
// frequency advice and an equipment note. Weight loss adds no modifier line.
func Recommend(in Input) ([]string, error) {
	level, ok := rules[in.FitnessLevel]
	if !ok {
		return nil, ErrInvalidFitnessLevel
	}
	if in.Goal < GoalWeightLoss || in.Goal > GoalEndurance {
		return nil, ErrInvalidGoal
	}

	lines := []string{level.base}
	if modifier, ok := level.goals[in.Goal]; ok {
		lines = append(lines, modifier)
	}

	switch {
	case in.HoursPerWeek >= 5:
		lines = append(lines, "You can increase your workout frequency to 5 days a week")
	case in.HoursPerWeek >= 3:
		lines = append(lines, "Try to aim for 3-4 workout sessions per week")
	}

	if in.HasEquipment {
		lines = append(lines, "With equipment, you can try more weight training exercises")
	} else {
		lines = append(lines, "No equipment? Focus on bodyweight exercises")
	}

	return lines, nil
}

// metTable maps exercise names to their metabolic equivalent.
var metTable = map[string]float64{
	"push-ups":        8,
	"squats":          5,
	"planks":          3,
	"jumping jacks":   8,
	"running":         11.5,
	"cycling":         8,
	"walking":         3.8,
	"weight training": 6,
	"hiit":            9,
}

// CalorieBurn estimates MET * weight(kg) * hours, rounded to two decimals.
// The exercise name is matched case-insensitively.
func CalorieBurn(exercise string, durationMinutes, weightKg float64) (float64, error) {
	met, ok := MET(exercise)
	if !ok {
		return 0, ErrUnknownExercise
	}
	if durationMinutes < 0 || weightKg < 0 {
		return 0, ErrInvalidDuration
	}
	return math.Round(met*weightKg*(durationMinutes/60)*100) / 100, nil
}

// MET returns the metabolic equivalent for exercise.
func MET(exercise string) (float64, bool) {
	met, ok := metTable[normalize(exercise)]
	return met, ok
}

// Exercises lists the supported exercise names in alphabetical order.
func Exercises() []string {
	names := make([]string, 0, len(metTable))
	for name := range metTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(exercise string) string {
	return strings.ToLower(strings.TrimSpace(exercise))
}
