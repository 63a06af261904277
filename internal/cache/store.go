package cache

import (
	"context"
	"time"
)

// Store holds short-lived counters shared between instances. It backs the
// request throttling on the OTP issuing endpoints.
type Store interface {
	// IncrementWithTTL bumps the counter for key inside a fixed window and
	// returns the new count with the time left in the window.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Ping(ctx context.Context) error
}
