package runner

import (
	"sync"
	"time"

	"github.com/aliemreo/real-time-scheduling/src/logging"
)

// Snapshot is the JSON view of the runner statistics served by /status.
type Snapshot struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"start_time"`
	Uptime          string    `json:"uptime"`
	FilesProcessed  uint64    `json:"files_processed"`
	RunsCompleted   uint64    `json:"runs_completed"`
	ParseFailures   uint64    `json:"parse_failures"`
	JobsReleased    uint64    `json:"jobs_released"`
	JobsCompleted   uint64    `json:"jobs_completed"`
	DeadlinesMissed uint64    `json:"deadlines_missed"`
	CurrentFile     string    `json:"current_file,omitempty"`
}

// Stats tracks the internal state of the runner across batch and API runs.
type Stats struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewStats(id string) *Stats {
	return &Stats{
		snap: Snapshot{
			ID:        id,
			StartTime: time.Now(),
		},
	}
}

// Update adds to the counters and mirrors them onto the active span.
func (s *Stats) Update(files, runs, parseFailures, released, completed, missed uint64, current string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.FilesProcessed += files
	s.snap.RunsCompleted += runs
	s.snap.ParseFailures += parseFailures
	s.snap.JobsReleased += released
	s.snap.JobsCompleted += completed
	s.snap.DeadlinesMissed += missed
	s.snap.CurrentFile = current

	logging.UpdateSpanValue("sim_runs_total", float64(s.snap.RunsCompleted))
	logging.UpdateSpanValue("sim_jobs_released", float64(s.snap.JobsReleased))
	logging.UpdateSpanValue("sim_jobs_completed", float64(s.snap.JobsCompleted))
	logging.UpdateSpanValue("sim_deadlines_missed", float64(s.snap.DeadlinesMissed))
	logging.UpdateSpanValue("sim_parse_failures", float64(s.snap.ParseFailures))
}

// Snapshot returns the current statistics with a freshly computed uptime.
func (s *Stats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snap
	snap.Uptime = time.Since(s.snap.StartTime).Truncate(time.Second).String()
	return snap
}
