package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charlesng35/fitcentre/internal/handlers"
	"github.com/charlesng35/fitcentre/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, checker *monitoring.Checker) {
	health := handlers.Health(checker)
	r.GET("/health", health)
	r.GET("/api/health", health)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAdvertisementRoutes(api *gin.RouterGroup, handler *handlers.AdvertisementHandler) {
	api.GET("/ads", handler.ListActive)
}

func registerWorkoutRoutes(api *gin.RouterGroup, handler *handlers.WorkoutHandler) {
	workouts := api.Group("/workouts")
	{
		workouts.GET("/exercises", handler.Exercises)
		workouts.POST("/recommend", handler.Recommend)
		workouts.POST("/calories", handler.Calories)
		workouts.GET("/logs", handler.ListLogs)
		workouts.POST("/logs", handler.CreateLog)
	}
}
