package deps

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// versionTimeout bounds each "-version" call made while checking binaries.
const versionTimeout = 5 * time.Second

// Requirement names an external binary and what it is used for.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the outcome of one check. For binaries Path is the resolved
// executable; for directories it is the directory itself.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Path        string `json:"path,omitempty"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// EngineRequirements returns the ffmpeg and ffprobe checks for the
// configured commands.
func EngineRequirements(ffmpeg, ffprobe string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "Renders redacted exports"},
		{Name: "FFprobe", Command: ffprobe, Description: "Reads video duration and dimensions"},
	}
}

// CheckBinaries resolves every requirement on PATH and asks the ones found
// for their version.
func CheckBinaries(reqs []Requirement) []Status {
	out := make([]Status, len(reqs))
	for i, req := range reqs {
		out[i] = checkBinary(req)
	}
	return out
}

func checkBinary(req Requirement) Status {
	s := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if s.Command == "" {
		s.Detail = "command not configured"
		return s
	}
	path, err := exec.LookPath(s.Command)
	if err != nil {
		s.Detail = "binary " + strconv.Quote(s.Command) + " not found"
		return s
	}
	s.Path, s.Available = path, true
	s.Version = version(path)
	return s
}

// version returns the token after "version" on the first line of
// "<bin> -version", or "" when the binary prints nothing useful.
func version(path string) string {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()
	raw, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := bytes.Cut(raw, []byte("\n"))
	sc := bufio.NewScanner(bytes.NewReader(line))
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		if sc.Text() == "version" && sc.Scan() {
			return sc.Text()
		}
	}
	return ""
}

// Missing filters statuses down to required checks that failed.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Optional && !s.Available {
			missing = append(missing, s)
		}
	}
	return missing
}
