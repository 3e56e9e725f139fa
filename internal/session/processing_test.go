package session

import (
	"errors"
	"testing"
)

func TestBeginExportRequiresVideo(t *testing.T) {
	s := New()
	if _, err := s.BeginExport(false); !errors.Is(err, ErrNoVideo) {
		t.Fatalf("expected ErrNoVideo, got %v", err)
	}
	if s.Processing().State != StateIdle {
		t.Fatal("state should stay idle")
	}
}

func TestExportColdPath(t *testing.T) {
	s, _ := newTestSession(t)
	status, err := s.BeginExport(false)
	if err != nil {
		t.Fatalf("BeginExport: %v", err)
	}
	if status.State != StateInitializing || status.Message != "Loading video engine" {
		t.Fatalf("status = %+v", status)
	}
	if s.SetProgress(40) {
		t.Fatal("progress must be ignored while initializing")
	}
	if err := s.EngineReady(); err != nil {
		t.Fatalf("EngineReady: %v", err)
	}
	if got := s.Processing(); got.State != StateRendering || got.Progress != 0 {
		t.Fatalf("status = %+v", got)
	}
}

func TestExportWarmPathSkipsInitializing(t *testing.T) {
	s, _ := newTestSession(t)
	status, err := s.BeginExport(true)
	if err != nil {
		t.Fatalf("BeginExport: %v", err)
	}
	if status.State != StateRendering {
		t.Fatalf("state = %s", status.State)
	}
	if err := s.EngineReady(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestOnlyOneExportInFlight(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.BeginExport(false); err != nil {
		t.Fatalf("BeginExport: %v", err)
	}
	if _, err := s.BeginExport(true); !errors.Is(err, ErrExportInFlight) {
		t.Fatalf("expected ErrExportInFlight, got %v", err)
	}
	if err := s.EngineReady(); err != nil {
		t.Fatalf("EngineReady: %v", err)
	}
	if _, err := s.BeginExport(true); !errors.Is(err, ErrExportInFlight) {
		t.Fatalf("expected ErrExportInFlight while rendering, got %v", err)
	}
}

func TestSetProgressClamps(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.BeginExport(true); err != nil {
		t.Fatalf("BeginExport: %v", err)
	}
	steps := []struct {
		in   float64
		want float64
	}{
		{-5, 0},
		{25, 25},
		{10, 25},
		{180, 100},
		{50, 100},
	}
	for _, step := range steps {
		if !s.SetProgress(step.in) {
			t.Fatalf("SetProgress(%v) rejected", step.in)
		}
		if got := s.Processing().Progress; got != step.want {
			t.Fatalf("SetProgress(%v) -> %v, want %v", step.in, got, step.want)
		}
	}
}

func TestCompleteReleasesPreviousOutput(t *testing.T) {
	s, _ := newTestSession(t)
	first := &countingHandle{}
	second := &countingHandle{}

	for i, out := range []*countingHandle{first, second} {
		if _, err := s.BeginExport(true); err != nil {
			t.Fatalf("BeginExport %d: %v", i, err)
		}
		if err := s.Complete(out, "redacted.mp4"); err != nil {
			t.Fatalf("Complete %d: %v", i, err)
		}
	}
	status := s.Processing()
	if status.State != StateComplete || status.Progress != 100 || status.Filename != "redacted.mp4" {
		t.Fatalf("status = %+v", status)
	}
	if first.releases != 1 || second.releases != 0 {
		t.Fatalf("releases first=%d second=%d", first.releases, second.releases)
	}
	if h, ok := s.Output(); !ok || h != second {
		t.Fatal("latest output should be live")
	}

	s.ClearVideo()
	if second.releases != 1 {
		t.Fatalf("output released %d times on clear", second.releases)
	}
	if _, ok := s.Output(); ok {
		t.Fatal("output should be gone after clear")
	}
}

func TestCompleteOutsideRendering(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.Complete(&countingHandle{}, "x.mp4"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestFailThenRetry(t *testing.T) {
	s, _ := newTestSession(t)
	r := addRedaction(t, s, 0, 2)
	if _, err := s.BeginExport(false); err != nil {
		t.Fatalf("BeginExport: %v", err)
	}
	if err := s.Fail(""); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	status := s.Processing()
	if status.State != StateError || status.Message != "Export failed" {
		t.Fatalf("status = %+v", status)
	}
	if _, ok := s.Redaction(r.ID); !ok {
		t.Fatal("failure must not touch redactions")
	}
	if err := s.Fail("again"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := s.BeginExport(true); err != nil {
		t.Fatalf("retry BeginExport: %v", err)
	}
	if err := s.Fail("Conversion failed!"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if s.Processing().Message != "Conversion failed!" {
		t.Fatalf("message = %q", s.Processing().Message)
	}
}
