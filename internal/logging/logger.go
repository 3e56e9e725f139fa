package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"redactor/internal/config"
)

// LogFileName is the file written under paths.log_dir.
const LogFileName = "redactor.log"

// Options selects the handler and where lines go. OutputPaths accepts file
// paths plus the special names "stdout" and "stderr"; empty means stderr.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
}

// New builds a logger. Caller locations are attached in development mode and
// at debug level.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	lv := new(slog.LevelVar)
	lv.Set(level)

	out, err := sink(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	withSource := opts.Development || level <= slog.LevelDebug

	switch f := strings.ToLower(strings.TrimSpace(opts.Format)); f {
	case "", "console":
		return slog.New(newConsoleHandler(out, lv, withSource)), nil
	case "json":
		return slog.New(newJSONHandler(out, lv, withSource)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q (want console or json)", opts.Format)
	}
}

// NewFromConfig logs to stderr and, when paths.log_dir is set, appends to
// LogFileName there as well. Nothing is written to stdout so command output
// stays parseable.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	paths := []string{"stderr"}
	if dir := cfg.Paths.LogDir; dir != "" {
		paths = append(paths, filepath.Join(dir, LogFileName))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: paths,
	})
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// sink opens each distinct destination once and fans writes out to all of
// them.
func sink(paths []string) (io.Writer, error) {
	var writers []io.Writer
	opened := make(map[string]bool)
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || opened[p] {
			continue
		}
		opened[p] = true
		w, err := destination(p)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func destination(p string) (io.Writer, error) {
	switch p {
	case "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("log dir for %s: %w", p, err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", p, err)
	}
	return f, nil
}
