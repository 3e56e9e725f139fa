package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"redactor/internal/redaction"
)

func TestLoopSerializesMutations(t *testing.T) {
	loop := NewLoop(New())
	loop.Start(context.Background())
	defer loop.Stop()

	ctx := context.Background()
	err := loop.Do(ctx, func(s *Session) error {
		return s.SetVideo(redaction.VideoAsset{Name: "clip", Duration: 5, Width: 10, Height: 10})
	})
	if err != nil {
		t.Fatalf("SetVideo: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = loop.Do(ctx, func(s *Session) error {
				_, err := s.AddRedaction(NewRedaction{End: 1, Region: redaction.Region{Width: 2, Height: 2}})
				return err
			})
		}()
	}
	wg.Wait()

	snap, err := loop.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Redactions) != 20 {
		t.Fatalf("redactions = %d, want 20", len(snap.Redactions))
	}
}

func TestLoopPostRunsAsynchronously(t *testing.T) {
	s := New()
	if err := s.SetVideo(redaction.VideoAsset{Name: "clip", Width: 4, Height: 4}); err != nil {
		t.Fatalf("SetVideo: %v", err)
	}
	if _, err := s.BeginExport(true); err != nil {
		t.Fatalf("BeginExport: %v", err)
	}
	loop := NewLoop(s)
	loop.Start(context.Background())
	defer loop.Stop()

	if !loop.Post(func(s *Session) { s.SetProgress(42) }) {
		t.Fatal("Post rejected on a running loop")
	}
	snap, err := loop.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Processing.Progress != 42 {
		t.Fatalf("progress = %v", snap.Processing.Progress)
	}
}

func TestLoopDoPropagatesErrors(t *testing.T) {
	loop := NewLoop(New())
	loop.Start(context.Background())
	defer loop.Stop()

	err := loop.Do(context.Background(), func(s *Session) error {
		_, err := s.AddRedaction(NewRedaction{})
		return err
	})
	if !errors.Is(err, ErrNoVideo) {
		t.Fatalf("expected ErrNoVideo, got %v", err)
	}
}

func TestLoopStopped(t *testing.T) {
	loop := NewLoop(New())
	loop.Start(context.Background())
	loop.Stop()

	if err := loop.Do(context.Background(), func(*Session) error { return nil }); !errors.Is(err, ErrLoopStopped) {
		t.Fatalf("expected ErrLoopStopped, got %v", err)
	}
	if loop.Post(func(*Session) {}) {
		t.Fatal("Post should fail after Stop")
	}
}

func TestLoopDoHonoursContext(t *testing.T) {
	loop := NewLoop(New())
	loop.Start(context.Background())
	defer loop.Stop()

	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = loop.Do(context.Background(), func(*Session) error {
			close(started)
			<-block
			return nil
		})
	}()
	defer close(block)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := loop.Do(ctx, func(*Session) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}
