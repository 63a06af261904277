package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/fitcentre/internal/app"
	"github.com/charlesng35/fitcentre/internal/cache"
	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/monitoring"
)

func testConfig() *app.Config {
	return &app.Config{
		Server: app.ServerConfig{Port: 8000},
		Database: app.DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
		},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: "bootstrap-test-secret-0123456789abcdef",
				TTL:    24 * time.Hour,
			},
			OTP: app.OTPSettings{TTL: 3 * time.Minute},
		},
		Maintenance: app.MaintenanceConfig{CleanupSchedule: "@every 1h"},
		Bootstrap: app.BootstrapConfig{
			Email:       "Owner@FitCentre.test",
			Password:    "owner-password",
			FullName:    "Gym Owner",
			PhoneNumber: "+254711000000",
		},
	}
}

func TestBootstrapRuntime(t *testing.T) {
	cfg := testConfig()

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	var owner models.Account
	require.NoError(t, stack.DB.Preload("Role").Take(&owner, "email = ?", "owner@fitcentre.test").Error)
	require.Equal(t, models.PlatformAdminPortal, owner.Platform)
	require.NotNil(t, owner.Role)
	require.Equal(t, "Super Admin", owner.Role.Name)

	_, isDatabaseStore := stack.Cache.(*cache.DatabaseStore)
	require.True(t, isDatabaseStore)

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	sqlDB, err := stack.DB.DB()
	require.NoError(t, err)

	stack.Shutdown(context.Background(), zap.NewNop())
	require.Error(t, sqlDB.Ping())
}

func TestBootstrapRuntimeUsesRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Cache.Redis = app.RedisCacheConfig{Enabled: true, Address: mr.Addr(), Timeout: time.Second}

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.NotNil(t, stack.Redis)
	require.Same(t, stack.Redis, stack.Cache)

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data monitoring.HealthReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	statuses := make(map[string]monitoring.ProbeStatus, len(body.Data.Checks))
	for _, check := range body.Data.Checks {
		statuses[check.Component] = check.Status
	}
	require.Equal(t, monitoring.StatusUp, statuses["cache"], w.Body.String())
	require.Equal(t, monitoring.StatusUp, statuses["database"], w.Body.String())
}

func TestBootstrapRuntimeFallsBackWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Cache.Redis = app.RedisCacheConfig{Enabled: true, Address: addr, Timeout: 200 * time.Millisecond}

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.Nil(t, stack.Redis)
	_, isDatabaseStore := stack.Cache.(*cache.DatabaseStore)
	require.True(t, isDatabaseStore)
}

func TestBootstrapRuntimeRejectsBadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Maintenance.CleanupSchedule = "every so often"

	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestLoadApplicationConfig(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9100\n"), 0o600))

	t.Chdir(t.TempDir())

	cfg, err := loadApplicationConfig(file)
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)

	cfg, err = loadApplicationConfig(dir)
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
}
