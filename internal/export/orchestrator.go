package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"redactor/internal/engine"
	"redactor/internal/history"
	"redactor/internal/logging"
	"redactor/internal/media"
	"redactor/internal/session"
)

var (
	// ErrNoRedactions is returned when the session has nothing to export.
	ErrNoRedactions = errors.New("no redactions to export")
	// ErrWorkspaceBusy means another process holds the export lock.
	ErrWorkspaceBusy = errors.New("another export is running in this workspace")
	// ErrSuperseded means the session moved on (video replaced or cleared)
	// while the run was rendering.
	ErrSuperseded = errors.New("export superseded")
)

// LoadFailedMessage is shown when the engine cannot be started.
const LoadFailedMessage = "Failed to load the video engine"

// StagedOutputPrefix starts the name of every rendered output kept in the
// staging directory.
const StagedOutputPrefix = "export-"

// Engine is the render executor.
type Engine interface {
	Loaded() bool
	Load(ctx context.Context) error
	Subscribe(fn func(engine.Progress)) (unsubscribe func())
	Exec(ctx context.Context, job engine.Job) ([]byte, error)
}

// Recorder is told about every finished attempt (history journal, push
// notifications).
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder adds a recorder; recorders run in the order given.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorders = append(o.recorders, r)
		}
	}
}

// WithLockPath enables the cross-process workspace lock.
func WithLockPath(path string) Option {
	return func(o *Orchestrator) {
		o.lockPath = strings.TrimSpace(path)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logging.NewComponentLogger(logger, "export")
	}
}

// WithIDGenerator overrides run id assignment.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithClock overrides the time source used for journal timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// Orchestrator runs exports against a session loop.
type Orchestrator struct {
	loop       *session.Loop
	engine     Engine
	stagingDir string
	lockPath   string
	recorders  []Recorder
	logger     *slog.Logger
	newID      func() string
	clock      func() time.Time

	mu      sync.Mutex
	current string
}

// New constructs an orchestrator. Rendered outputs are staged in stagingDir.
func New(loop *session.Loop, eng Engine, stagingDir string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		loop:       loop,
		engine:     eng,
		stagingDir: stagingDir,
		logger:     logging.NewNop(),
		newID:      uuid.NewString,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Export runs Begin and Execute back to back.
func (o *Orchestrator) Export(ctx context.Context) (Result, error) {
	run, err := o.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	return run.Execute(ctx)
}

// Begin validates the session and moves it into initializing, or directly
// into rendering when the engine is warm. The returned run must be executed.
func (o *Orchestrator) Begin(ctx context.Context) (*Run, error) {
	lock, err := o.acquireLock()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, err
	}

	// Once queued, the transition must finish so the session and the
	// returned run never disagree about an export being in flight.
	run := &Run{o: o, ID: o.newID(), lock: lock, startedAt: o.clock()}
	err = o.loop.Do(context.WithoutCancel(ctx), func(s *session.Session) error {
		video, ok := s.Video()
		if !ok {
			return session.ErrNoVideo
		}
		redactions := s.Redactions()
		if len(redactions) == 0 {
			return ErrNoRedactions
		}
		status, err := s.BeginExport(o.engine.Loaded())
		if err != nil {
			return err
		}
		run.video = video
		run.redactions = redactions
		run.settings = s.ExportSettings()
		run.status = status
		return nil
	})
	if err != nil {
		run.unlock()
		return nil, err
	}

	o.mu.Lock()
	o.current = run.ID
	o.mu.Unlock()
	return run, nil
}

func (o *Orchestrator) isCurrent(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current == id
}

func (o *Orchestrator) acquireLock() (*flock.Flock, error) {
	if o.lockPath == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(o.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	lock := flock.New(o.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire export lock: %w", err)
	}
	if !ok {
		return nil, ErrWorkspaceBusy
	}
	return lock, nil
}

// Status is a convenience wrapper returning the session processing status.
func (o *Orchestrator) Status(ctx context.Context) (session.Status, error) {
	var status session.Status
	err := o.loop.Do(ctx, func(s *session.Session) error {
		status = s.Processing()
		return nil
	})
	return status, err
}

// Result describes a completed export. Output stays owned by the session and
// is released on the next completion, replacement, clear or reset.
type Result struct {
	ID       string
	Filename string
	Output   *media.File
	Bytes    int64
	Graph    string
	Effects  []string
	Elapsed  time.Duration
}
