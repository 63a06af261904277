package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/monitoring"
	"github.com/charlesng35/fitcentre/pkg/logger"
	"github.com/charlesng35/fitcentre/pkg/metrics"
)

const (
	defaultSchedule      = "@every 5m"
	defaultCodeRetention = 24 * time.Hour
	jobName              = "credential_cleanup"
)

// CachePurger removes expired counters from a cache backend.
type CachePurger interface {
	Purge(ctx context.Context) (int64, error)
}

// Cleaner periodically clears one-time credentials that can no longer be
// redeemed and purges expired rate limit counters.
type Cleaner struct {
	db        *gorm.DB
	cache     CachePurger
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	schedule  string
	retention time.Duration
	jobs      *monitoring.JobTracker
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithJobTracker records run outcomes into tracker instead of the process wide one.
func WithJobTracker(tracker *monitoring.JobTracker) Option {
	return func(cleaner *Cleaner) {
		cleaner.jobs = tracker
	}
}

// WithSchedule overrides the cron specification of the sweep.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithCodeRetention sets how long after sending an emailed code is kept. It
// must stay well beyond the code validity window.
func WithCodeRetention(d time.Duration) Option {
	return func(cleaner *Cleaner) {
		if d > 0 {
			cleaner.retention = d
		}
	}
}

// NewCleaner constructs a Cleaner. A nil cache skips the counter purge.
func NewCleaner(db *gorm.DB, cache CachePurger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:        db,
		cache:     cache,
		now:       time.Now,
		schedule:  defaultSchedule,
		retention: defaultCodeRetention,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers the sweep with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.db == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("credential cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule %q: %w", c.schedule, err)
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return c.cron.Stop()
}

// RunOnce executes every cleanup routine, collecting all failures.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	var errs error

	if c.db != nil {
		stats, err := CleanupCredentials(ctx, c.db, c.now(), c.retention)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		stats.record()
		if stats.total() > 0 {
			c.log.Debug("expired credentials cleared",
				zap.Int64("otp_codes", stats.OTPCodes),
				zap.Int64("reset_otp_codes", stats.ResetOTPCodes),
				zap.Int64("reset_tokens", stats.ResetTokens),
			)
		}
	}

	if c.cache != nil {
		if _, err := c.cache.Purge(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("maintenance: purge cache: %w", err))
		}
	}

	if c.jobs != nil {
		c.jobs.Record(jobName, errs, time.Since(start))
	} else {
		monitoring.RecordJobRun(jobName, errs, time.Since(start))
	}
	return errs
}

// CredentialCleanupStats captures how many credentials of each kind were cleared.
type CredentialCleanupStats struct {
	OTPCodes      int64
	ResetOTPCodes int64
	ResetTokens   int64
}

func (s CredentialCleanupStats) total() int64 {
	return s.OTPCodes + s.ResetOTPCodes + s.ResetTokens
}

func (s CredentialCleanupStats) record() {
	metrics.MaintenanceCleared.WithLabelValues("otp_code").Add(float64(s.OTPCodes))
	metrics.MaintenanceCleared.WithLabelValues("reset_otp_code").Add(float64(s.ResetOTPCodes))
	metrics.MaintenanceCleared.WithLabelValues("reset_token").Add(float64(s.ResetTokens))
}

// CleanupCredentials nulls out OTP codes sent more than retention ago and reset
// tokens past their expiry. Accounts themselves are never removed.
func CleanupCredentials(ctx context.Context, db *gorm.DB, now time.Time, retention time.Duration) (CredentialCleanupStats, error) {
	if db == nil {
		return CredentialCleanupStats{}, errors.New("cleanup credentials: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if retention <= 0 {
		retention = defaultCodeRetention
	}

	stats := CredentialCleanupStats{}
	cutoff := now.Add(-retention)
	accounts := func() *gorm.DB { return db.WithContext(ctx).Model(&models.Account{}) }

	result := accounts().
		Where("otp_code IS NOT NULL AND otp_sent_at < ?", cutoff).
		Updates(map[string]any{"otp_code": nil, "otp_sent_at": nil})
	if result.Error != nil {
		return stats, fmt.Errorf("cleanup credentials: otp codes: %w", result.Error)
	}
	stats.OTPCodes = result.RowsAffected

	result = accounts().
		Where("reset_otp_code IS NOT NULL AND reset_otp_sent_at < ?", cutoff).
		Updates(map[string]any{"reset_otp_code": nil, "reset_otp_sent_at": nil})
	if result.Error != nil {
		return stats, fmt.Errorf("cleanup credentials: reset otp codes: %w", result.Error)
	}
	stats.ResetOTPCodes = result.RowsAffected

	result = accounts().
		Where("reset_token IS NOT NULL AND reset_token_expires_at < ?", now).
		Updates(map[string]any{"reset_token": nil, "reset_token_expires_at": nil})
	if result.Error != nil {
		return stats, fmt.Errorf("cleanup credentials: reset tokens: %w", result.Error)
	}
	stats.ResetTokens = result.RowsAffected

	return stats, nil
}
