package redaction

import (
	"fmt"
	"strings"
)

// Handle is a transient resource owned by the session (source media, rendered
// output). Release is called exactly once by the owner.
type Handle interface {
	Release() error
}

// Source is the releasable handle behind a VideoAsset.
type Source interface {
	Handle
	ReadAll() ([]byte, error)
}

// VideoAsset is the active source video.
type VideoAsset struct {
	Name      string  `json:"name"`
	Duration  float64 `json:"duration"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frameRate,omitempty"`
	HasAudio  bool    `json:"hasAudio"`
	Source    Source  `json:"-"`
}

// Validate rejects assets that cannot be rendered.
func (v VideoAsset) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: video name is empty", ErrInvalid)
	}
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: video dimensions %dx%d", ErrInvalid, v.Width, v.Height)
	}
	if v.Duration < 0 {
		return fmt.Errorf("%w: negative video duration", ErrInvalid)
	}
	return nil
}

// Preset trades encode speed for quality.
type Preset string

const (
	PresetVeryFast Preset = "veryfast"
	PresetFaster   Preset = "faster"
	PresetMedium   Preset = "medium"
)

// Valid reports whether p is a supported preset.
func (p Preset) Valid() bool {
	switch p {
	case PresetVeryFast, PresetFaster, PresetMedium:
		return true
	default:
		return false
	}
}

// FormatMP4 is the only supported output container.
const FormatMP4 = "mp4"

const (
	MinCRF = 0
	MaxCRF = 51
)

// ExportSettings are forwarded to the engine when rendering.
type ExportSettings struct {
	Filename     string `json:"filename"`
	Format       string `json:"format"`
	Preset       Preset `json:"preset"`
	CRF          int    `json:"crf"`
	IncludeAudio bool   `json:"includeAudio"`
}

// DefaultExportSettings returns the settings a fresh session starts with.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		Filename:     "redacted.mp4",
		Format:       FormatMP4,
		Preset:       PresetVeryFast,
		CRF:          23,
		IncludeAudio: true,
	}
}

// Validate checks the settings against the supported ranges.
func (s ExportSettings) Validate() error {
	if strings.TrimSpace(s.Filename) == "" {
		return fmt.Errorf("%w: export filename is empty", ErrInvalid)
	}
	if s.Format != FormatMP4 {
		return fmt.Errorf("%w: unsupported format %q", ErrInvalid, s.Format)
	}
	if !s.Preset.Valid() {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalid, s.Preset)
	}
	if s.CRF < MinCRF || s.CRF > MaxCRF {
		return fmt.Errorf("%w: crf %d outside %d-%d", ErrInvalid, s.CRF, MinCRF, MaxCRF)
	}
	return nil
}
