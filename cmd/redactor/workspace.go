package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"redactor/internal/config"
	"redactor/internal/engine"
	"redactor/internal/export"
	"redactor/internal/history"
	"redactor/internal/logging"
	"redactor/internal/media"
	"redactor/internal/notifications"
	"redactor/internal/plan"
	"redactor/internal/redaction"
	"redactor/internal/session"
	"redactor/internal/staging"
)

// staleStagingAge is how long an orphaned staged entry survives before the
// next workspace sweeps it.
const staleStagingAge = 24 * time.Hour

var stagingPrefixes = []string{engine.JobDirPrefix, export.StagedOutputPrefix}

// workspace is one session loop plus the engine, prober and journal that
// serve it.
type workspace struct {
	cfg          *config.Config
	logger       *slog.Logger
	loop         *session.Loop
	prober       *media.Prober
	engine       *engine.CLI
	history      *history.Store
	orchestrator *export.Orchestrator
}

func openWorkspace(ctx context.Context, c *commandContext) (*workspace, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	loop := session.NewLoop(session.New(
		session.WithExportSettings(cfg.ExportDefaults()),
		session.WithLogger(logger),
	))
	loop.Start(ctx)

	swept := staging.Sweep(ctx, cfg.Paths.StagingDir, staleStagingAge, stagingPrefixes, logger)
	if len(swept.Removed) > 0 {
		logger.Debug("staging sweep complete", logging.Int("removed", len(swept.Removed)))
	}

	eng := engine.NewCLI(
		engine.WithBinary(cfg.Engine.FFmpegBinary),
		engine.WithStagingDir(cfg.Paths.StagingDir),
		engine.WithTimeout(cfg.EngineTimeout()),
		engine.WithLogger(logger),
	)

	opts := []export.Option{
		export.WithLockPath(cfg.LockPath()),
		export.WithLogger(logger),
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "export history unavailable", "history_open",
			logging.Error(err),
			logging.String(logging.FieldImpact, "exports from this run are not journaled"),
			logging.String(logging.FieldErrorHint, "check paths.state_dir permissions"),
		)
		store = nil
	} else {
		opts = append(opts, export.WithRecorder(store))
	}
	if notifier := notifications.NewNotifier(cfg); notifier != nil {
		opts = append(opts, export.WithRecorder(notifier))
	}

	return &workspace{
		cfg:          cfg,
		logger:       logger,
		loop:         loop,
		prober:       media.NewProber(cfg.Engine.FFprobeBinary),
		engine:       eng,
		history:      store,
		orchestrator: export.New(loop, eng, cfg.Paths.StagingDir, opts...),
	}, nil
}

// Close releases every session handle (including staged outputs) and stops
// the loop.
func (w *workspace) Close() {
	if err := w.loop.Do(context.Background(), func(s *session.Session) error {
		s.Reset()
		return nil
	}); err != nil && !errors.Is(err, session.ErrLoopStopped) {
		w.logger.Warn("reset session on close failed", logging.Error(err))
	}
	w.loop.Stop()
	if w.history != nil {
		if err := w.history.Close(); err != nil {
			w.logger.Warn("close export history failed", logging.Error(err))
		}
	}
}

func (w *workspace) loadVideo(ctx context.Context, path string) (redaction.VideoAsset, error) {
	asset, err := w.prober.Open(ctx, path)
	if err != nil {
		return redaction.VideoAsset{}, err
	}
	err = w.loop.Do(ctx, func(s *session.Session) error {
		return s.SetVideo(asset)
	})
	return asset, err
}

func (w *workspace) applyPlan(ctx context.Context, p *plan.Plan) (plan.Applied, error) {
	var applied plan.Applied
	err := w.loop.Do(ctx, func(s *session.Session) error {
		var err error
		applied, err = p.Apply(s)
		return err
	})
	return applied, err
}

// planFlags are shared by commands that read a plan and a video.
type planFlags struct {
	planPath string
	width    int
	height   int
}

func (f *planFlags) register(cmd *cobra.Command, withDimensions bool) {
	cmd.Flags().StringVarP(&f.planPath, "plan", "p", "", "Redaction plan (TOML)")
	if withDimensions {
		cmd.Flags().IntVar(&f.width, "width", 0, "Frame width; with --height skips probing the video")
		cmd.Flags().IntVar(&f.height, "height", 0, "Frame height; with --width skips probing the video")
	}
}

func (f *planFlags) loadPlan() (*plan.Plan, error) {
	path := strings.TrimSpace(f.planPath)
	if path == "" {
		return nil, errors.New("a plan is required (--plan)")
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return plan.Load(expanded)
}

// videoPath picks the positional argument over the plan's video entry.
func videoPath(args []string, p *plan.Plan) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return config.ExpandPath(strings.TrimSpace(args[0]))
	}
	if p != nil {
		if path := p.VideoPath(); path != "" {
			return path, nil
		}
	}
	return "", errors.New("no video given: pass a path or set video in the plan")
}

// planSession builds a standalone session holding the plan, either probing
// the video or, when both dimensions are given, using a synthetic asset.
func (f *planFlags) planSession(ctx context.Context, c *commandContext, args []string) (*session.Session, redaction.VideoAsset, error) {
	p, err := f.loadPlan()
	if err != nil {
		return nil, redaction.VideoAsset{}, err
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, redaction.VideoAsset{}, err
	}

	var asset redaction.VideoAsset
	if f.width > 0 && f.height > 0 {
		asset = redaction.VideoAsset{Name: "preview", Width: f.width, Height: f.height}
	} else {
		path, err := videoPath(args, p)
		if err != nil {
			return nil, redaction.VideoAsset{}, err
		}
		if asset, err = media.NewProber(cfg.Engine.FFprobeBinary).Open(ctx, path); err != nil {
			return nil, redaction.VideoAsset{}, err
		}
	}

	s := session.New(session.WithExportSettings(cfg.ExportDefaults()))
	if err := s.SetVideo(asset); err != nil {
		return nil, asset, err
	}
	if _, err := p.Apply(s); err != nil {
		s.Reset()
		return nil, asset, fmt.Errorf("apply plan: %w", err)
	}
	return s, asset, nil
}
