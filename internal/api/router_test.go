package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fitcentre/internal/app"
	iauth "github.com/charlesng35/fitcentre/internal/auth"
	"github.com/charlesng35/fitcentre/internal/cache"
	"github.com/charlesng35/fitcentre/internal/database/testutil"
	"github.com/charlesng35/fitcentre/pkg/mail"
	"github.com/charlesng35/fitcentre/pkg/response"
)

type discardMailer struct{}

func (discardMailer) Send(context.Context, mail.Message) error { return nil }

func newTestDeps(t *testing.T) Dependencies {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "router-test-secret-0123456789abcdefgh",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	return Dependencies{
		DB:     db,
		JWT:    jwtSvc,
		Mailer: discardMailer{},
		Config: &app.Config{},
		Cache:  cache.NewDatabaseStore(db),
	}
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	deps := newTestDeps(t)

	missingDB := deps
	missingDB.DB = nil
	_, err := NewRouter(missingDB)
	require.Error(t, err)

	missingJWT := deps
	missingJWT.JWT = nil
	_, err = NewRouter(missingJWT)
	require.Error(t, err)

	missingMailer := deps
	missingMailer.Mailer = nil
	_, err = NewRouter(missingMailer)
	require.Error(t, err)
}

func TestRouterSmoke(t *testing.T) {
	router, err := NewRouter(newTestDeps(t))
	require.NoError(t, err)

	cases := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"api health", http.MethodGet, "/api/health", http.StatusOK},
		{"public ads", http.MethodGet, "/api/ads", http.StatusOK},
		{"profile requires token", http.MethodGet, "/api/profile", http.StatusUnauthorized},
		{"admin requires token", http.MethodGet, "/api/admin/roles", http.StatusUnauthorized},
		{"workouts require token", http.MethodGet, "/api/workouts/exercises", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			require.Equal(t, tc.status, w.Code, w.Body.String())

			var envelope response.Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			require.Equal(t, tc.status, envelope.StatusCode)
		})
	}
}

func TestRouterExposesMetrics(t *testing.T) {
	router, err := NewRouter(newTestDeps(t))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "fitcentre_")
}

func TestRouterSecurityHeaders(t *testing.T) {
	router, err := NewRouter(newTestDeps(t))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
