package monitoring

import (
	"sort"
	"sync"
	"time"
)

// JobStatus summarises the run history of a background job.
type JobStatus struct {
	Name                string        `json:"name"`
	TotalRuns           uint64        `json:"total_runs"`
	ConsecutiveFailures uint64        `json:"consecutive_failures"`
	LastRunAt           time.Time     `json:"last_run_at"`
	LastSuccessAt       time.Time     `json:"last_success_at"`
	LastDuration        time.Duration `json:"last_duration"`
	LastError           string        `json:"last_error,omitempty"`
}

// JobTracker records background job outcomes for the maintenance probe.
type JobTracker struct {
	mu   sync.Mutex
	jobs map[string]*JobStatus
}

var defaultTracker = NewJobTracker()

// NewJobTracker constructs an empty tracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{jobs: make(map[string]*JobStatus)}
}

// Record stores the outcome of one run.
func (t *JobTracker) Record(name string, err error, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[name]
	if !ok {
		job = &JobStatus{Name: name}
		t.jobs[name] = job
	}

	now := time.Now()
	job.TotalRuns++
	job.LastRunAt = now
	job.LastDuration = duration
	if err != nil {
		job.ConsecutiveFailures++
		job.LastError = err.Error()
		return
	}
	job.ConsecutiveFailures = 0
	job.LastError = ""
	job.LastSuccessAt = now
}

// Snapshot returns a copy of every job, sorted by name.
func (t *JobTracker) Snapshot() []JobStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]JobStatus, 0, len(t.jobs))
	for _, job := range t.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RecordJobRun records into the process wide tracker.
func RecordJobRun(name string, err error, duration time.Duration) {
	defaultTracker.Record(name, err, duration)
}
