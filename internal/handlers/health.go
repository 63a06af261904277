package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fitcentre/internal/monitoring"
	"github.com/charlesng35/fitcentre/pkg/errors"
	"github.com/charlesng35/fitcentre/pkg/response"
)

// Health evaluates the registered probes. A degraded report still answers 200.
func Health(checker *monitoring.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := checker.Evaluate(requestContext(c))
		if !report.Healthy() {
			response.Error(c, errors.New("UNHEALTHY", "Service unavailable", http.StatusServiceUnavailable).WithDetails(report))
			return
		}
		response.Success(c, http.StatusOK, string(report.Status), report)
	}
}
