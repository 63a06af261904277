package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fitcentre/internal/cache"
	"github.com/charlesng35/fitcentre/internal/database/testutil"
)

func newMemoryStore(t *testing.T, clock func() time.Time) *memoryRateStore {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	store := NewMemoryRateStore(ctx).(*memoryRateStore)
	store.clock = clock
	return store
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMemoryStore(t, func() time.Time { return current })

	r := gin.New()
	r.Use(RateLimit(store, 2, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	hit := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		return w
	}

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, hit().Code)
	}

	w := hit()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	current = current.Add(time.Minute)
	require.Equal(t, http.StatusOK, hit().Code)
}

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Duration) (int, time.Duration, error) {
	return 0, 0, errors.New("unavailable")
}

func TestRateLimitFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(failingStore{}, 1, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCacheRateStore(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := NewCacheRateStore(cache.NewDatabaseStore(db))

	count, ttl, err := store.Increment(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Greater(t, ttl, time.Duration(0))

	count, _, err = store.Increment(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.Nil(t, NewCacheRateStore(nil))
}
