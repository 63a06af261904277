package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/fitcentre/pkg/errors"
	"github.com/charlesng35/fitcentre/pkg/response"
	appValidator "github.com/charlesng35/fitcentre/pkg/validator"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// fieldError is one entry of the validation details returned in the envelope data.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		details := validationDetails(err)
		response.Error(c, appErrors.NewValidation(joinMessages(details), details))
		return false
	}

	return true
}

func validationDetails(err error) []fieldError {
	ve, ok := err.(appValidator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return []fieldError{{Field: "body", Message: "invalid request payload"}}
	}

	details := make([]fieldError, 0, len(ve))
	for _, failure := range ve {
		field := prettifyFieldName(failure.Field)
		var message string
		switch failure.Tag {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, failure.Param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, failure.Param)
		case "len":
			message = fmt.Sprintf("%s must be exactly %s characters", field, failure.Param)
		case "eqfield":
			message = fmt.Sprintf("%s must match %s", field, prettifyFieldName(toSnake(failure.Param)))
		case "phone":
			message = fmt.Sprintf("%s must be a valid phone number", field)
		case "oneof":
			message = fmt.Sprintf("%s must be one of %s", field, failure.Param)
		default:
			if failure.Param != "" {
				message = fmt.Sprintf("%s failed validation: %s=%s", field, failure.Tag, failure.Param)
			} else {
				message = fmt.Sprintf("%s failed validation: %s", field, failure.Tag)
			}
		}
		details = append(details, fieldError{Field: failure.Field, Message: message})
	}
	return details
}

func joinMessages(details []fieldError) string {
	messages := make([]string, len(details))
	for i, detail := range details {
		messages[i] = detail.Message
	}
	return strings.Join(messages, "; ")
}

func prettifyFieldName(name string) string {
	if name == "" {
		return "field"
	}
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToLower(name)
}

// toSnake converts a Go field name such as NewPassword to new_password.
func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// pagination reads page and per_page, clamped to the bounds the services apply.
func pagination(c *gin.Context) (int, int) {
	page := parseIntQuery(c, "page", 1)
	if page <= 0 {
		page = 1
	}
	perPage := parseIntQuery(c, "per_page", defaultPerPage)
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
