package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fitcentre/internal/handlers/testutil"
)

func TestHealthEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := env.Request(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var report struct {
			Status string `json:"status"`
			Checks []struct {
				Component string `json:"component"`
				Status    string `json:"status"`
			} `json:"checks"`
		}
		testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &report)
		require.NotEqual(t, "down", report.Status)
		require.NotEmpty(t, report.Checks)
		require.Equal(t, "database", report.Checks[0].Component)
		require.Equal(t, "up", report.Checks[0].Status)
	}
}

func TestHealthReportsDatabaseOutage(t *testing.T) {
	env := testutil.NewEnv(t)

	sqlDB, err := env.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())
	require.False(t, testutil.DecodeResponse(t, w).Success)
}

func TestUnknownRoutesUseEnvelope(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/nope", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	resp := testutil.DecodeResponse(t, w)
	require.False(t, resp.Success)
	require.Contains(t, resp.Message, "/api/nope")

	w = env.Request(http.MethodDelete, "/api/ads", nil, "")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.False(t, testutil.DecodeResponse(t, w).Success)
}
