package workout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecommendBeginnerMuscleGain(t *testing.T) {
	lines, err := Recommend(Input{
		FitnessLevel: LevelBeginner,
		Goal:         GoalMuscleGain,
		HoursPerWeek: 4,
		HasEquipment: false,
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"Bodyweight exercises (Push-ups, Squats, Planks)",
		"Focus on bodyweight exercises",
		"Try to aim for 3-4 workout sessions per week",
		"No equipment? Focus on bodyweight exercises",
	}, lines)
}

func TestRecommendLines(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want []string
	}{
		{
			name: "weight loss adds no modifier",
			in:   Input{FitnessLevel: LevelIntermediate, Goal: GoalWeightLoss, HoursPerWeek: 1, HasEquipment: true},
			want: []string{
				"Weight training (Dumbbells, Barbell)",
				"With equipment, you can try more weight training exercises",
			},
		},
		{
			name: "advanced endurance five days",
			in:   Input{FitnessLevel: LevelAdvanced, Goal: GoalEndurance, HoursPerWeek: 5, HasEquipment: true},
			want: []string{
				"Advanced weight training (Deadlifts, Squats, Bench Press)",
				"High-intensity interval training (HIIT)",
				"You can increase your workout frequency to 5 days a week",
				"With equipment, you can try more weight training exercises",
			},
		},
		{
			name: "three hours boundary",
			in:   Input{FitnessLevel: LevelIntermediate, Goal: GoalEndurance, HoursPerWeek: 3},
			want: []string{
				"Weight training (Dumbbells, Barbell)",
				"Focus on circuit training with moderate weight",
				"Try to aim for 3-4 workout sessions per week",
				"No equipment? Focus on bodyweight exercises",
			},
		},
		{
			name: "just under three hours",
			in:   Input{FitnessLevel: LevelBeginner, Goal: GoalEndurance, HoursPerWeek: 2.99},
			want: []string{
				"Bodyweight exercises (Push-ups, Squats, Planks)",
				"Try more reps and increase workout time gradually",
				"No equipment? Focus on bodyweight exercises",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines, err := Recommend(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, lines)
		})
	}
}

func TestRecommendRejectsOutOfRange(t *testing.T) {
	_, err := Recommend(Input{FitnessLevel: 3})
	require.ErrorIs(t, err, ErrInvalidFitnessLevel)

	_, err = Recommend(Input{FitnessLevel: -1})
	require.ErrorIs(t, err, ErrInvalidFitnessLevel)

	_, err = Recommend(Input{Goal: 7})
	require.ErrorIs(t, err, ErrInvalidGoal)
}

func TestCalorieBurn(t *testing.T) {
	kcal, err := CalorieBurn("Running", 60, 70)
	require.NoError(t, err)
	require.InDelta(t, 805.00, kcal, 1e-9)

	kcal, err = CalorieBurn("Push-Ups", 30, 70)
	require.NoError(t, err)
	require.InDelta(t, 280.00, kcal, 1e-9)

	kcal, err = CalorieBurn("running", 0, 70)
	require.NoError(t, err)
	require.Zero(t, kcal)

	kcal, err = CalorieBurn("  squats ", 48, 70)
	require.NoError(t, err)
	require.InDelta(t, 280.00, kcal, 1e-9)

	kcal, err = CalorieBurn("walking", 10, 65.5)
	require.NoError(t, err)
	require.InDelta(t, 41.48, kcal, 1e-9)

	_, err = CalorieBurn("swimming", 30, 70)
	require.ErrorIs(t, err, ErrUnknownExercise)

	_, err = CalorieBurn("running", -1, 70)
	require.ErrorIs(t, err, ErrInvalidDuration)
}

func TestExercises(t *testing.T) {
	names := Exercises()
	require.Len(t, names, 9)
	require.IsIncreasing(t, names)
	require.Contains(t, names, "hiit")
}
