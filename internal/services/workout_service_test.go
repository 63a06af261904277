package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fitcentre/internal/database/testutil"
	"github.com/charlesng35/fitcentre/internal/workout"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
)

func TestWorkoutServiceLogs(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewWorkoutService(db)
	require.NoError(t, err)
	ctx := context.Background()

	member := createConsumer(t, db, "member@example.com", "+254700000001", true)
	other := createConsumer(t, db, "other@example.com", "+254700000002", true)

	earlier := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	entry, err := svc.LogWorkout(ctx, member.ID, LogWorkoutInput{
		Exercise:        " Running ",
		DurationMinutes: 60,
		WeightKg:        70,
		PerformedAt:     &earlier,
	})
	require.NoError(t, err)
	require.Equal(t, "running", entry.Exercise)
	require.InDelta(t, 805.0, entry.CaloriesBurned, 1e-9)

	_, err = svc.LogWorkout(ctx, member.ID, LogWorkoutInput{Exercise: "squats", DurationMinutes: 48, WeightKg: 70})
	require.NoError(t, err)
	_, err = svc.LogWorkout(ctx, other.ID, LogWorkoutInput{Exercise: "planks", DurationMinutes: 5, WeightKg: 60})
	require.NoError(t, err)

	logs, total, err := svc.ListLogs(ctx, member.ID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, "squats", logs[0].Exercise)
	require.InDelta(t, 280.0, logs[0].CaloriesBurned, 1e-9)

	_, err = svc.LogWorkout(ctx, member.ID, LogWorkoutInput{Exercise: "swimming", DurationMinutes: 30, WeightKg: 70})
	require.ErrorIs(t, err, apperrors.ErrUnknownExercise)
}

func TestWorkoutServiceMapsEngineErrors(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewWorkoutService(db)
	require.NoError(t, err)

	_, err = svc.Recommend(workout.Input{FitnessLevel: 5})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	lines, err := svc.Recommend(workout.Input{FitnessLevel: workout.LevelBeginner, Goal: workout.GoalMuscleGain, HoursPerWeek: 4})
	require.NoError(t, err)
	require.Len(t, lines, 4)

	_, err = svc.EstimateCalories("rowing", 10, 70)
	require.ErrorIs(t, err, apperrors.ErrUnknownExercise)

	require.Contains(t, svc.Exercises(), "running")
}
