package response

import (
	"net/http"

	appErrors "github.com/charlesng35/fitcentre/pkg/errors"
	"github.com/gin-gonic/gin"
)

// Envelope is the uniform payload returned by every endpoint.
type Envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// Page wraps a paginated collection.
type Page struct {
	Items      any   `json:"items"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPage computes the page count for the given totals.
func NewPage(items any, page, perPage int, total int64) Page {
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Page{Items: items, Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}

// Success writes a JSON success envelope.
func Success(c *gin.Context, statusCode int, message string, data any) {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	c.JSON(statusCode, Envelope{
		Success:    true,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

// Error writes a JSON error envelope derived from an AppError. Internal causes are never rendered.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	message := appErr.Message
	if status >= http.StatusInternalServerError && appErr.Code == "INTERNAL_ERROR" {
		message = appErrors.ErrInternalServer.Message
	}

	c.JSON(status, Envelope{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Data:       appErr.Details,
	})
}
