package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fitcentre/internal/services"
	"github.com/charlesng35/fitcentre/internal/workout"
	"github.com/charlesng35/fitcentre/pkg/response"
)

// WorkoutHandler exposes the recommendation engine, calorie estimation and workout logs.
type WorkoutHandler struct {
	svc *services.WorkoutService
}

func NewWorkoutHandler(svc *services.WorkoutService) (*WorkoutHandler, error) {
	if svc == nil {
		return nil, errors.New("workout handler: service is required")
	}
	return &WorkoutHandler{svc: svc}, nil
}

type recommendRequest struct {
	FitnessLevel *int    `json:"fitness_level" validate:"required,min=0,max=2"`
	Goal         *int    `json:"goal" validate:"required,min=0,max=2"`
	HoursPerWeek float64 `json:"hours_per_week" validate:"gte=0,lte=168"`
	HasEquipment bool    `json:"has_equipment"`
}

type caloriesRequest struct {
	Exercise        string  `json:"exercise" validate:"required"`
	DurationMinutes float64 `json:"duration_minutes" validate:"gte=0"`
	WeightKg        float64 `json:"weight_kg" validate:"gte=0"`
}

type logWorkoutRequest struct {
	caloriesRequest
	PerformedAt *time.Time `json:"performed_at"`
}

// GET /api/workouts/exercises
func (h *WorkoutHandler) Exercises(c *gin.Context) {
	response.Success(c, http.StatusOK, "Exercises fetched successfully", h.svc.Exercises())
}

// POST /api/workouts/recommend
func (h *WorkoutHandler) Recommend(c *gin.Context) {
	var req recommendRequest
	if !bindAndValidate(c, &req) {
		return
	}

	plan, err := h.svc.Recommend(workout.Input{
		FitnessLevel: workout.FitnessLevel(*req.FitnessLevel),
		Goal:         workout.Goal(*req.Goal),
		HoursPerWeek: req.HoursPerWeek,
		HasEquipment: req.HasEquipment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Workout plan generated", gin.H{"plan": plan})
}

// POST /api/workouts/calories
func (h *WorkoutHandler) Calories(c *gin.Context) {
	var req caloriesRequest
	if !bindAndValidate(c, &req) {
		return
	}

	kcal, err := h.svc.EstimateCalories(req.Exercise, req.DurationMinutes, req.WeightKg)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Calories estimated", gin.H{
		"exercise":        req.Exercise,
		"calories_burned": kcal,
	})
}

// POST /api/workouts/logs
func (h *WorkoutHandler) CreateLog(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	var req logWorkoutRequest
	if !bindAndValidate(c, &req) {
		return
	}

	entry, err := h.svc.LogWorkout(requestContext(c), accountID, services.LogWorkoutInput{
		Exercise:        req.Exercise,
		DurationMinutes: req.DurationMinutes,
		WeightKg:        req.WeightKg,
		PerformedAt:     req.PerformedAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Workout logged", entry)
}

// GET /api/workouts/logs
func (h *WorkoutHandler) ListLogs(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	page, perPage := pagination(c)
	logs, total, err := h.svc.ListLogs(requestContext(c), accountID, page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Workout logs fetched successfully", response.NewPage(logs, page, perPage, total))
}
