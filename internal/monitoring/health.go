package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ProbeStatus encodes the outcome of a health probe.
type ProbeStatus string

const (
	StatusUp       ProbeStatus = "up"
	StatusDown     ProbeStatus = "down"
	StatusDegraded ProbeStatus = "degraded"
)

const defaultProbeTimeout = 2 * time.Second

// ProbeResult captures a single dependency check outcome.
type ProbeResult struct {
	Component string      `json:"component"`
	Status    ProbeStatus `json:"status"`
	Details   string      `json:"details,omitempty"`
	LatencyMS float64     `json:"latency_ms"`
}

// HealthReport aggregates probe results.
type HealthReport struct {
	Status    ProbeStatus   `json:"status"`
	Checks    []ProbeResult `json:"checks"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Healthy reports whether the service can take traffic. Degraded counts as healthy.
func (r HealthReport) Healthy() bool {
	return r.Status != StatusDown
}

// Check is a single named probe. A failing non-critical probe only degrades the report.
type Check struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context) ProbeResult
}

// Checker runs registered probes concurrently, each under its own timeout.
type Checker struct {
	mu      sync.RWMutex
	checks  []Check
	timeout time.Duration
}

// NewChecker constructs an empty checker. A non-positive timeout uses two seconds.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Checker{timeout: timeout}
}

// Register appends a probe. Unnamed or empty probes are ignored.
func (c *Checker) Register(check Check) {
	if check.Name == "" || check.Run == nil {
		return
	}
	c.mu.Lock()
	c.checks = append(c.checks, check)
	c.mu.Unlock()
}

// Evaluate executes every probe and folds the results into a report.
func (c *Checker) Evaluate(ctx context.Context) HealthReport {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.RLock()
	checks := append([]Check(nil), c.checks...)
	c.mu.RUnlock()

	results := make([]ProbeResult, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(i int, check Check) {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			results[i] = runCheck(probeCtx, check)
		}(i, check)
	}
	wg.Wait()

	report := HealthReport{Status: StatusUp, Checks: results, CheckedAt: time.Now().UTC()}
	for i, result := range results {
		switch {
		case result.Status == StatusUp:
		case checks[i].Critical && result.Status == StatusDown:
			report.Status = StatusDown
		case report.Status != StatusDown:
			report.Status = StatusDegraded
		}
	}
	return report
}

func runCheck(ctx context.Context, check Check) (result ProbeResult) {
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			result = ProbeResult{Status: StatusDown, Details: fmt.Sprint(rec)}
		}
		if result.Status == "" {
			result.Status = StatusDown
		}
		result.Component = check.Name
		result.LatencyMS = float64(time.Since(start).Microseconds()) / 1000
	}()

	return check.Run(ctx)
}

// ResultFromError converts an error into a ProbeResult. Timeouts degrade rather than fail.
func ResultFromError(err error) ProbeResult {
	if err == nil {
		return ProbeResult{Status: StatusUp}
	}

	status := StatusDown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = StatusDegraded
	}
	return ProbeResult{Status: status, Details: err.Error()}
}
