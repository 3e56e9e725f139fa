package logging

import (
	"math"
	"time"
)

// ProgressSampler thins render progress down to one line per step of
// percent. A heartbeat lets a stalled render still log now and then. It is
// not safe for concurrent use.
type ProgressSampler struct {
	step      float64
	heartbeat time.Duration
	lastStep  float64
	lastEmit  time.Time
}

// NewProgressSampler emits whenever progress enters a new step (default 10)
// or heartbeat has passed since the last line. A zero heartbeat disables
// the time trigger.
func NewProgressSampler(step float64, heartbeat time.Duration) *ProgressSampler {
	if step <= 0 {
		step = 10
	}
	return &ProgressSampler{step: step, heartbeat: heartbeat, lastStep: -1}
}

// Sample reports whether percent, observed at now, deserves a log line.
// A nil sampler logs everything.
func (s *ProgressSampler) Sample(percent float64, now time.Time) bool {
	if s == nil {
		return true
	}
	if math.IsNaN(percent) {
		return false
	}
	bucket := math.Floor(min(max(percent, 0), 100) / s.step)
	stale := s.heartbeat > 0 && !s.lastEmit.IsZero() && now.Sub(s.lastEmit) >= s.heartbeat
	if bucket <= s.lastStep && !stale {
		return false
	}
	s.lastStep = max(s.lastStep, bucket)
	s.lastEmit = now
	return true
}
