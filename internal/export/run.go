package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"redactor/internal/engine"
	"redactor/internal/filtergraph"
	"redactor/internal/history"
	"redactor/internal/logging"
	"redactor/internal/media"
	"redactor/internal/redaction"
	"redactor/internal/services"
	"redactor/internal/session"
	"redactor/internal/textutil"
)

// progressHeartbeat forces a progress line when a render sits in one step.
const progressHeartbeat = 30 * time.Second

// Run is one export attempt between Begin and Execute.
type Run struct {
	ID string

	o          *Orchestrator
	lock       *flock.Flock
	video      redaction.VideoAsset
	redactions []redaction.Redaction
	settings   redaction.ExportSettings
	status     session.Status
	startedAt  time.Time

	graph   string
	effects []string
}

// Status is the processing status the run started in.
func (r *Run) Status() session.Status {
	return r.status
}

// Execute loads the engine if needed, renders and completes the session.
// Failures move the session into the error state; the session stays usable.
func (r *Run) Execute(ctx context.Context) (Result, error) {
	defer r.unlock()
	o := r.o
	ctx = services.WithExportID(ctx, r.ID)
	logger := logging.WithContext(ctx, o.logger)

	if r.status.State == session.StateInitializing {
		logger.Info("loading engine")
		if err := o.engine.Load(ctx); err != nil {
			return Result{}, r.fail(ctx, LoadFailedMessage, err)
		}
		if err := r.onSession(ctx, func(s *session.Session) error { return s.EngineReady() }); err != nil {
			return Result{}, err
		}
	}

	compiled, err := filtergraph.Compile(r.redactions, r.video.Width, r.video.Height)
	if err != nil {
		return Result{}, r.fail(ctx, err.Error(), services.Wrap(services.ErrValidation, "export", "compile", "", err))
	}
	r.graph = compiled.String()
	r.effects = compiled.Effects

	if r.video.Source == nil {
		return Result{}, r.fail(ctx, "Source video is not readable", services.Wrap(services.ErrValidation, "export", "read source", "no source handle", nil))
	}
	input, err := r.video.Source.ReadAll()
	if err != nil {
		return Result{}, r.fail(ctx, "Source video is not readable", services.Wrap(services.ErrTransient, "export", "read source", r.video.Name, err))
	}

	logger.Info("render started",
		logging.String("video", r.video.Name),
		logging.Int("redactions", len(r.redactions)),
		logging.Int("composites", len(compiled.Graph.Composites())),
		logging.Any("effects", compiled.Effects),
	)

	sampler := logging.NewProgressSampler(10, progressHeartbeat)
	unsubscribe := o.engine.Subscribe(func(p engine.Progress) {
		o.loop.Post(func(s *session.Session) {
			if !o.isCurrent(r.ID) || !s.SetProgress(p.Percent) {
				return
			}
			if percent := s.Processing().Progress; sampler.Sample(percent, time.Now()) {
				logger.Info("render progress", logging.Float64("percent", percent))
			}
		})
	})
	defer unsubscribe()

	output, err := o.engine.Exec(ctx, engine.Job{
		Input:     input,
		InputName: r.video.Name,
		Graph:     r.graph,
		Settings:  r.settings,
		Duration:  r.video.Duration,
	})
	if err != nil {
		return Result{}, r.fail(ctx, engineMessage(err), err)
	}

	file, err := r.stage(output)
	if err != nil {
		return Result{}, r.fail(ctx, "Could not store the rendered video", err)
	}

	err = r.onSession(ctx, func(s *session.Session) error {
		return s.Complete(file, r.settings.Filename)
	})
	if err != nil {
		if releaseErr := file.Release(); releaseErr != nil {
			logger.Warn("release unused output failed", logging.Error(releaseErr))
		}
		r.record(ctx, history.StatusError, 0, err)
		return Result{}, err
	}

	finished := o.clock()
	size := int64(len(output))
	r.record(ctx, history.StatusComplete, size, nil)
	logger.Info("render complete",
		logging.String("filename", r.settings.Filename),
		logging.Int64("bytes", size),
		logging.Duration("elapsed", finished.Sub(r.startedAt)),
	)
	return Result{
		ID:       r.ID,
		Filename: r.settings.Filename,
		Output:   file,
		Bytes:    size,
		Graph:    r.graph,
		Effects:  r.effects,
		Elapsed:  finished.Sub(r.startedAt),
	}, nil
}

// onSession runs fn on the loop only while this run is still the session's
// current export. Transitions ignore cancellation of ctx so a cancelled
// render still leaves the session in a terminal state.
func (r *Run) onSession(ctx context.Context, fn func(*session.Session) error) error {
	return r.o.loop.Do(context.WithoutCancel(ctx), func(s *session.Session) error {
		if !r.o.isCurrent(r.ID) || !s.Processing().InFlight() {
			return ErrSuperseded
		}
		return fn(s)
	})
}

func (r *Run) fail(ctx context.Context, message string, cause error) error {
	logger := logging.WithContext(ctx, r.o.logger)
	logging.ErrorWithContext(logger, "export failed", "export_failed",
		logging.String("message", message),
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "run `redactor doctor` to check the engine"),
	)
	err := r.onSession(ctx, func(s *session.Session) error { return s.Fail(message) })
	if err != nil && !errors.Is(err, ErrSuperseded) {
		logger.Warn("record failure on session", logging.Error(err))
	}
	r.record(ctx, history.StatusError, 0, cause)
	return cause
}

func (r *Run) stage(output []byte) (*media.File, error) {
	if err := os.MkdirAll(r.o.stagingDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "export", "staging dir", r.o.stagingDir, err)
	}
	path := filepath.Join(r.o.stagingDir, fmt.Sprintf("%s%s-%s", StagedOutputPrefix, r.ID, textutil.SanitizeFileName(r.settings.Filename)))
	if err := os.WriteFile(path, output, 0o644); err != nil {
		return nil, services.Wrap(services.ErrTransient, "export", "stage output", path, err)
	}
	return media.Own(path), nil
}

func (r *Run) record(ctx context.Context, status history.Status, size int64, cause error) {
	if len(r.o.recorders) == 0 {
		return
	}
	entry := history.Entry{
		ID:          r.ID,
		Status:      status,
		VideoName:   r.video.Name,
		Filename:    r.settings.Filename,
		Redactions:  len(r.redactions),
		Effects:     r.effects,
		GraphDigest: GraphDigest(r.graph),
		OutputBytes: size,
		StartedAt:   r.startedAt,
		FinishedAt:  r.o.clock(),
	}
	if cause != nil {
		entry.ErrorKind = services.Kind(cause)
		entry.ErrorMessage = engineMessage(cause)
	}
	ctx = context.WithoutCancel(ctx)
	for _, rec := range r.o.recorders {
		if err := rec.Record(ctx, entry); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, r.o.logger), "record export outcome failed", "export_record",
				logging.Error(err),
				logging.String("recorder", fmt.Sprintf("%T", rec)),
				logging.String(logging.FieldImpact, "export missing from history or notifications"),
			)
		}
	}
}

func (r *Run) unlock() {
	if r.lock == nil {
		return
	}
	if err := r.lock.Unlock(); err != nil {
		r.o.logger.Warn("release export lock failed", logging.Error(err))
	}
	r.lock = nil
}

// GraphDigest returns a short stable fingerprint of a graph description.
func GraphDigest(graph string) string {
	if graph == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(graph))
	return hex.EncodeToString(sum[:8])
}

// engineMessage extracts the engine's own text so it is surfaced as-is.
func engineMessage(err error) string {
	var execErr *engine.ExecError
	if errors.As(err, &execErr) && execErr.Message != "" {
		return execErr.Message
	}
	return err.Error()
}
