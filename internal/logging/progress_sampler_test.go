package logging

import (
	"math"
	"testing"
	"time"
)

func TestProgressSamplerSteps(t *testing.T) {
	s := NewProgressSampler(10, 0)
	at := time.Unix(0, 0)
	steps := []struct {
		percent float64
		want    bool
	}{
		{0, true},
		{4, false},
		{9.9, false},
		{10, true},
		{15, false},
		{35, true},
		{20, false},
		{100, true},
		{140, false},
		{math.NaN(), false},
	}
	for i, step := range steps {
		if got := s.Sample(step.percent, at); got != step.want {
			t.Fatalf("step %d Sample(%v) = %v, want %v", i, step.percent, got, step.want)
		}
	}
}

func TestProgressSamplerHeartbeat(t *testing.T) {
	s := NewProgressSampler(25, time.Minute)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !s.Sample(30, start) {
		t.Fatal("first sample should log")
	}
	if s.Sample(31, start.Add(30*time.Second)) {
		t.Fatal("same step inside heartbeat should not log")
	}
	if !s.Sample(31, start.Add(61*time.Second)) {
		t.Fatal("heartbeat should force a line")
	}
	if s.Sample(32, start.Add(90*time.Second)) {
		t.Fatal("heartbeat restarts after each line")
	}
}

func TestProgressSamplerDefaultsAndNil(t *testing.T) {
	if s := NewProgressSampler(-3, 0); s.step != 10 {
		t.Fatalf("step = %v", s.step)
	}
	var s *ProgressSampler
	if !s.Sample(50, time.Now()) {
		t.Fatal("nil sampler should always log")
	}
}
