package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"redactor/internal/config"
	"redactor/internal/testsupport"
)

const testPlan = `
[export]
filename = "clip-redacted.mp4"

[[redactions]]
key = "face"
label = "Face"
x = 10
y = 10
width = 100
height = 100
start = 0
end = 5
effect = "blur"

[[redactions]]
label = "Plate"
x = 300
y = 200
width = 120
height = 40
start = 2
end = 8
effect = "blackout"
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	planPath   string
	videoPath  string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("REDACTOR_API_TOKEN", "")
	t.Setenv("REDACTOR_NTFY_TOPIC", "")
	t.Setenv("FFMPEG_BINARY", "")
	t.Setenv("FFPROBE_BINARY", "")

	opts = append([]testsupport.ConfigOption{testsupport.WithEngineStubs(640, 480, 10)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"

	configPath := filepath.Join(base, "redactor.toml")
	writeTestConfig(t, configPath, cfg)

	planPath := filepath.Join(base, "plan.toml")
	if err := os.WriteFile(planPath, []byte(testPlan), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	videoPath := filepath.Join(base, "clip.mp4")
	testsupport.WriteFile(t, videoPath, 4096)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		planPath:   planPath,
		videoPath:  videoPath,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
