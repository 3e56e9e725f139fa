package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"redactor/internal/logging"
	"redactor/internal/services"
)

var commandContext = exec.CommandContext

// ErrNotLoaded is returned by Exec before a successful Load.
var ErrNotLoaded = errors.New("engine not loaded")

// JobDirPrefix starts the name of each per-job scratch directory.
const JobDirPrefix = "job-"

// ExecError carries the engine's own failure text.
type ExecError struct {
	Message string
	Err     error
}

func (e *ExecError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Progress is one render progress notification.
type Progress struct {
	Percent float64
	OutTime time.Duration
	Done    bool
}

// Option configures the CLI engine.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary = strings.TrimSpace(binary); binary != "" {
			c.binary = binary
		}
	}
}

// WithStagingDir sets where job inputs and outputs are written.
func WithStagingDir(dir string) Option {
	return func(c *CLI) {
		if dir = strings.TrimSpace(dir); dir != "" {
			c.stagingDir = dir
		}
	}
}

// WithTimeout bounds a single render. Zero disables the limit.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		c.timeout = timeout
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		c.logger = logging.NewComponentLogger(logger, "engine")
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary     string
	stagingDir string
	timeout    time.Duration
	logger     *slog.Logger

	loadMu  sync.Mutex
	loaded  bool
	version string

	subMu   sync.Mutex
	subs    map[int]func(Progress)
	nextSub int
}

// NewCLI constructs an engine using defaults.
func NewCLI(opts ...Option) *CLI {
	c := &CLI{
		binary:     "ffmpeg",
		stagingDir: os.TempDir(),
		logger:     logging.NewNop(),
		subs:       make(map[int]func(Progress)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the configured executable.
func (c *CLI) Binary() string {
	return c.binary
}

// Loaded reports whether Load has succeeded.
func (c *CLI) Loaded() bool {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	return c.loaded
}

// Version returns the first line of `ffmpeg -version` once loaded.
func (c *CLI) Version() string {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	return c.version
}

// Load verifies the binary runs. A successful load is kept for the lifetime
// of the engine; failures can be retried.
func (c *CLI) Load(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if c.loaded {
		return nil
	}
	cmd := commandContext(ctx, c.binary, "-hide_banner", "-version") //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "engine", "load", c.binary, err)
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	c.version = strings.TrimSpace(first)
	c.loaded = true
	c.logger.Info("engine loaded", logging.String("binary", c.binary), logging.String("version", c.version))
	return nil
}

// Subscribe registers fn for progress notifications. The returned function
// removes the subscription and is safe to call more than once.
func (c *CLI) Subscribe(fn func(Progress)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *CLI) publish(p Progress) {
	c.subMu.Lock()
	fns := make([]func(Progress), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
}

// Exec renders job and returns the output bytes. Staged files are removed
// before returning. The engine's error text is surfaced as-is.
func (c *CLI) Exec(ctx context.Context, job Job) ([]byte, error) {
	if !c.Loaded() {
		return nil, ErrNotLoaded
	}
	if err := job.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "engine", "exec", "", err)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := os.MkdirAll(c.stagingDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "staging dir", c.stagingDir, err)
	}
	workDir, err := os.MkdirTemp(c.stagingDir, JobDirPrefix+"*")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "staging dir", c.stagingDir, err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			c.logger.Warn("remove staged job failed", logging.String("dir", workDir), logging.Error(err))
		}
	}()

	inputPath := filepath.Join(workDir, "input"+inputExt(job.InputName))
	if err := os.WriteFile(inputPath, job.Input, 0o600); err != nil {
		return nil, services.Wrap(services.ErrTransient, "engine", "stage input", "", err)
	}
	outputPath := filepath.Join(workDir, "output."+job.Settings.Format)

	args := BuildArgs(inputPath, outputPath, job)
	c.logger.Debug("engine exec", logging.String("args", strings.Join(args, " ")))

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "engine", "start", c.binary, err)
	}

	parser := newProgressParser(job.Duration)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if update, ok := parser.feed(scanner.Text()); ok {
			c.publish(update)
		}
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "engine", "exec", fmt.Sprintf("render exceeded %s", c.timeout), err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "engine", "exec", "", &ExecError{Message: lastLine(stderr.String()), Err: err})
	}
	if scanErr != nil {
		return nil, fmt.Errorf("read ffmpeg progress: %w", scanErr)
	}

	output, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "engine", "read output", "ffmpeg produced no output", err)
	}
	return output, nil
}

func inputExt(name string) string {
	if ext := filepath.Ext(strings.TrimSpace(name)); ext != "" {
		return strings.ToLower(ext)
	}
	return ".mp4"
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
