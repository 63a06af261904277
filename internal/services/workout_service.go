package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/workout"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
)

// LogWorkoutInput describes a completed exercise.
type LogWorkoutInput struct {
	Exercise        string
	DurationMinutes float64
	WeightKg        float64
	PerformedAt     *time.Time
}

// WorkoutService exposes the workout rules engine and persists workout logs.
type WorkoutService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewWorkoutService constructs a WorkoutService.
func NewWorkoutService(db *gorm.DB) (*WorkoutService, error) {
	if db == nil {
		return nil, errors.New("workout service: db is required")
	}
	return &WorkoutService{db: db, now: time.Now}, nil
}

// Exercises lists the exercises the calorie estimator knows.
func (s *WorkoutService) Exercises() []string {
	return workout.Exercises()
}

// Recommend returns plan lines for the member's profile.
func (s *WorkoutService) Recommend(input workout.Input) ([]string, error) {
	lines, err := workout.Recommend(input)
	if err != nil {
		return nil, workoutError(err)
	}
	return lines, nil
}

// EstimateCalories returns the calories burned for the exercise.
func (s *WorkoutService) EstimateCalories(exercise string, durationMinutes, weightKg float64) (float64, error) {
	kcal, err := workout.CalorieBurn(exercise, durationMinutes, weightKg)
	if err != nil {
		return 0, workoutError(err)
	}
	return kcal, nil
}

// LogWorkout stores a workout with its calories computed server side.
func (s *WorkoutService) LogWorkout(ctx context.Context, accountID string, input LogWorkoutInput) (*models.WorkoutLog, error) {
	ctx = ensureContext(ctx)

	kcal, err := s.EstimateCalories(input.Exercise, input.DurationMinutes, input.WeightKg)
	if err != nil {
		return nil, err
	}

	performedAt := s.now().UTC()
	if input.PerformedAt != nil && !input.PerformedAt.IsZero() {
		performedAt = input.PerformedAt.UTC()
	}

	entry := &models.WorkoutLog{
		AccountID:       accountID,
		Exercise:        strings.ToLower(strings.TrimSpace(input.Exercise)),
		DurationMinutes: input.DurationMinutes,
		WeightKg:        input.WeightKg,
		CaloriesBurned:  kcal,
		PerformedAt:     performedAt,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("workout service: create log: %w", err)
	}
	return entry, nil
}

// ListLogs returns a page of the account's workouts, newest first.
func (s *WorkoutService) ListLogs(ctx context.Context, accountID string, page, perPage int) ([]models.WorkoutLog, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage = normalisePage(page, perPage)

	query := s.db.WithContext(ctx).Model(&models.WorkoutLog{}).Where("account_id = ?", accountID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("workout service: count logs: %w", err)
	}

	var logs []models.WorkoutLog
	if err := query.
		Order("performed_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("workout service: list logs: %w", err)
	}
	return logs, total, nil
}

func workoutError(err error) error {
	switch {
	case errors.Is(err, workout.ErrUnknownExercise):
		return apperrors.ErrUnknownExercise
	case errors.Is(err, workout.ErrInvalidFitnessLevel):
		return apperrors.NewBadRequest("fitness level must be 0, 1 or 2")
	case errors.Is(err, workout.ErrInvalidGoal):
		return apperrors.NewBadRequest("goal must be 0, 1 or 2")
	case errors.Is(err, workout.ErrInvalidDuration):
		return apperrors.NewBadRequest("duration and weight must not be negative")
	}
	return err
}
