package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

const (
	codecVideo = "video"
	codecAudio = "audio"
)

// Probe is the subset of ffprobe's JSON report the redactor reads.
type Probe struct {
	Streams []Stream  `json:"streams"`
	Format  Container `json:"format"`
}

// Stream is one elementary stream of the probed file.
type Stream struct {
	Index     int               `json:"index"`
	CodecType string            `json:"codec_type"`
	CodecName string            `json:"codec_name"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Duration  string            `json:"duration"`
	FrameRate string            `json:"avg_frame_rate"`
	Tags      map[string]string `json:"tags,omitempty"`
	SideData  []SideData        `json:"side_data_list,omitempty"`
}

// SideData carries per-stream side data such as the display matrix.
type SideData struct {
	Type     string  `json:"side_data_type"`
	Rotation float64 `json:"rotation"`
}

// Container holds the format section of the report.
type Container struct {
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect runs binary against path and decodes its report. Stderr is kept
// apart from the JSON so warnings never corrupt decoding.
func Inspect(ctx context.Context, binary, path string) (Probe, error) {
	if strings.TrimSpace(path) == "" {
		return Probe{}, errors.New("probe: empty path")
	}
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-hide_banner",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"--", path,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return Probe{}, fmt.Errorf("probe %s: %w (%s)", path, err, msg)
		}
		return Probe{}, fmt.Errorf("probe %s: %w", path, err)
	}
	return Decode(stdout.Bytes())
}

// Decode parses a JSON report produced with -print_format json.
func Decode(data []byte) (Probe, error) {
	var p Probe
	if err := json.Unmarshal(data, &p); err != nil {
		return Probe{}, fmt.Errorf("decode probe report: %w", err)
	}
	return p, nil
}

// Video returns the first video stream.
func (p Probe) Video() (Stream, bool) {
	return p.first(codecVideo)
}

// HasAudio reports whether any audio stream is present.
func (p Probe) HasAudio() bool {
	_, ok := p.first(codecAudio)
	return ok
}

func (p Probe) first(kind string) (Stream, bool) {
	for _, s := range p.Streams {
		if strings.EqualFold(s.CodecType, kind) {
			return s, true
		}
	}
	return Stream{}, false
}

// Seconds returns the container duration. Missing or unparsable values
// yield ok=false.
func (p Probe) Seconds() (float64, bool) {
	return seconds(p.Format.Duration)
}

// Seconds returns the stream duration. Missing or unparsable values yield
// ok=false.
func (s Stream) Seconds() (float64, bool) {
	return seconds(s.Duration)
}

// FPS parses avg_frame_rate ("30000/1001" or "25"). Zero means unknown.
func (s Stream) FPS() float64 {
	num, den, split := strings.Cut(strings.TrimSpace(s.FrameRate), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0
	}
	if !split {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0
	}
	return n / d
}

// Rotation returns the clockwise display rotation normalised to 0, 90, 180
// or 270. The display matrix wins over the legacy rotate tag.
func (s Stream) Rotation() int {
	for _, sd := range s.SideData {
		if strings.EqualFold(sd.Type, "Display Matrix") {
			return quarterTurns(sd.Rotation)
		}
	}
	if tag, ok := s.Tags["rotate"]; ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(tag), 64); err == nil {
			return quarterTurns(v)
		}
	}
	return 0
}

// DisplaySize returns the frame size after rotation is applied, which is
// the geometry ffmpeg's autorotation hands to filters.
func (s Stream) DisplaySize() (width, height int) {
	if r := s.Rotation(); r == 90 || r == 270 {
		return s.Height, s.Width
	}
	return s.Width, s.Height
}

func quarterTurns(deg float64) int {
	turns := int(math.Round(deg/90)) % 4
	if turns < 0 {
		turns += 4
	}
	return turns * 90
}

func seconds(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
