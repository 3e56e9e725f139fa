package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"redactor/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStubbedBinaries writes no-op executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		for _, name := range names {
			b.writeScript(name, "#!/bin/sh\nexit 0\n")
		}
		b.prependPath()
	}
}

// WithEngineStubs installs scripted ffmpeg and ffprobe binaries that behave
// like the real tools for a width x height video of the given duration, and
// points the engine configuration at them.
func WithEngineStubs(width, height int, duration float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.FFmpegBinary = b.writeScript("ffmpeg", FFmpegScript)
		b.cfg.Engine.FFprobeBinary = b.writeScript("ffprobe", FFprobeScript(width, height, duration))
	}
}

// WithFailingEngine installs an ffmpeg stub that loads but fails every render
// with message on stderr.
func WithFailingEngine(message string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.FFmpegBinary = b.writeScript("ffmpeg", FailingFFmpegScript(message))
	}
}

func (b *configBuilder) binDir() string {
	dir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	return dir
}

func (b *configBuilder) writeScript(name, script string) string {
	target := filepath.Join(b.binDir(), name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

func (b *configBuilder) prependPath() {
	b.t.Setenv("PATH", b.binDir()+string(os.PathListSeparator)+os.Getenv("PATH"))
}
