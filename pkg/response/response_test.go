package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appErrors "github.com/charlesng35/fitcentre/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Success(ctx, http.StatusCreated, "Role created", gin.H{"id": "1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decode(t, rec)
	require.True(t, env.Success)
	require.Equal(t, http.StatusCreated, env.StatusCode)
	require.Equal(t, "Role created", env.Message)
	require.NotNil(t, env.Data)
}

func TestSuccessDefaultsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Success(ctx, http.StatusOK, "", nil)

	env := decode(t, rec)
	require.Equal(t, "OK", env.Message)
}

func TestNewPage(t *testing.T) {
	page := NewPage([]string{"a", "b"}, 1, 10, 21)
	require.Equal(t, 3, page.TotalPages)

	empty := NewPage(nil, 1, 0, 5)
	require.Zero(t, empty.TotalPages)
}

func TestErrorWithAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Error(ctx, appErrors.ErrForbidden)

	require.Equal(t, http.StatusForbidden, rec.Code)
	env := decode(t, rec)
	require.False(t, env.Success)
	require.Equal(t, http.StatusForbidden, env.StatusCode)
	require.Equal(t, appErrors.ErrForbidden.Message, env.Message)
}

func TestErrorIncludesValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Error(ctx, appErrors.NewValidation("", []map[string]string{{"field": "email", "message": "Email is required"}}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	items, ok := env.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}

func TestErrorWithGenericErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Error(ctx, errors.New("dial tcp: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	require.Equal(t, appErrors.ErrInternalServer.Message, env.Message)
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func TestErrorHidesWrappedMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Error(ctx, appErrors.Wrap(errors.New("pq: relation missing"), "failed to load roles"))

	env := decode(t, rec)
	require.Equal(t, appErrors.ErrInternalServer.Message, env.Message)
}
