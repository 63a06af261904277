package monitoring

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Pinger is implemented by cache stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseCheck pings the database. It is critical: the API cannot serve without it.
func DatabaseCheck(db *gorm.DB) Check {
	return Check{
		Name:     "database",
		Critical: true,
		Run: func(ctx context.Context) ProbeResult {
			if db == nil {
				return ResultFromError(errors.New("database not configured"))
			}
			sqlDB, err := db.DB()
			if err != nil {
				return ResultFromError(err)
			}
			return ResultFromError(sqlDB.PingContext(ctx))
		},
	}
}

// CacheCheck pings the rate limit store.
func CacheCheck(store Pinger) Check {
	return Check{
		Name: "cache",
		Run: func(ctx context.Context) ProbeResult {
			if store == nil {
				return ProbeResult{Status: StatusUp, Details: "cache disabled"}
			}
			return ResultFromError(store.Ping(ctx))
		},
	}
}

// MaintenanceCheck degrades when a background job keeps failing or has not
// succeeded within maxAge.
func MaintenanceCheck(tracker *JobTracker, maxAge time.Duration) Check {
	if tracker == nil {
		tracker = defaultTracker
	}
	return Check{
		Name: "maintenance",
		Run: func(context.Context) ProbeResult {
			jobs := tracker.Snapshot()
			if len(jobs) == 0 {
				return ProbeResult{Status: StatusUp, Details: "no runs recorded"}
			}

			now := time.Now()
			var problems []string
			for _, job := range jobs {
				if job.ConsecutiveFailures > 0 {
					problems = append(problems, job.Name+": "+job.LastError)
					continue
				}
				if maxAge > 0 && now.Sub(job.LastSuccessAt) > maxAge {
					problems = append(problems, job.Name+": last success "+job.LastSuccessAt.UTC().Format(time.RFC3339))
				}
			}
			if len(problems) > 0 {
				return ProbeResult{Status: StatusDegraded, Details: strings.Join(problems, "; ")}
			}
			return ProbeResult{Status: StatusUp}
		},
	}
}
