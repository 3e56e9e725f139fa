package engine

import (
	"errors"
	"strconv"
	"strings"

	"redactor/internal/filtergraph"
	"redactor/internal/redaction"
)

// VideoCodec is fixed; only the preset and crf vary.
const VideoCodec = "libx264"

// Job is a single render request.
type Job struct {
	Input     []byte
	InputName string
	Graph     string
	Settings  redaction.ExportSettings
	// Duration is the source length in seconds, used to turn output time
	// into a percentage.
	Duration float64
}

// Validate rejects jobs that cannot run.
func (j Job) Validate() error {
	if len(j.Input) == 0 {
		return errors.New("empty input")
	}
	if strings.TrimSpace(j.Graph) == "" {
		return errors.New("empty filter graph")
	}
	return j.Settings.Validate()
}

// BuildArgs assembles the ffmpeg argument list for job. The finalized video
// label is always mapped; audio is passed through when present or excluded
// with -an.
func BuildArgs(inputPath, outputPath string, job Job) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostats",
		"-progress", "pipe:1",
		"-y",
		"-i", inputPath,
		"-filter_complex", job.Graph,
		"-map", "[" + filtergraph.OutputLabel + "]",
	}
	if job.Settings.IncludeAudio {
		args = append(args, "-map", filtergraph.SourceAudio+"?", "-c:a", "aac")
	} else {
		args = append(args, "-an")
	}
	args = append(args,
		"-c:v", VideoCodec,
		"-preset", string(job.Settings.Preset),
		"-crf", strconv.Itoa(job.Settings.CRF),
		"-movflags", "+faststart",
		outputPath,
	)
	return args
}
