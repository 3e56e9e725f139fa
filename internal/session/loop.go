package session

import (
	"context"
	"sync"
)

const loopQueueSize = 64

// Loop serializes every session mutation onto one control goroutine.
type Loop struct {
	session *Session
	ops     chan func(*Session)
	quit    chan struct{}
	done    chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewLoop wraps s. Call Start before Do or Post.
func NewLoop(s *Session) *Loop {
	return &Loop{
		session: s,
		ops:     make(chan func(*Session), loopQueueSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start runs the control goroutine until ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		go l.run(ctx)
	})
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.quit:
			return
		case op := <-l.ops:
			op(l.session)
		}
	}
}

// Stop ends the control goroutine and waits for it to exit.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
	})
	<-l.done
}

// Do runs fn on the control goroutine and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func(*Session) error) error {
	result := make(chan error, 1)
	op := func(s *Session) { result <- fn(s) }
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}
	select {
	case l.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrLoopStopped
		}
	}
}

// Post queues fn without waiting for it to run. It is used for asynchronous
// notifications such as engine progress. Post reports false once the loop
// has stopped.
func (l *Loop) Post(fn func(*Session)) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.ops <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Snapshot is a convenience wrapper around Do.
func (l *Loop) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := l.Do(ctx, func(s *Session) error {
		snap = s.Snapshot()
		return nil
	})
	return snap, err
}
