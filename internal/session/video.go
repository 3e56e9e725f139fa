package session

import (
	"fmt"

	"redactor/internal/redaction"
)

// Video returns the active asset.
func (s *Session) Video() (redaction.VideoAsset, bool) {
	if s.video == nil {
		return redaction.VideoAsset{}, false
	}
	return *s.video, true
}

// SetVideo replaces the active asset. The previous source handle is released
// and every redaction, annotation, the selection, transport and processing
// state are discarded. Invalid assets are rejected without touching the
// session.
func (s *Session) SetVideo(asset redaction.VideoAsset) error {
	if err := asset.Validate(); err != nil {
		return fmt.Errorf("set video: %w", err)
	}
	s.discard()
	s.video = &asset
	return nil
}

// ClearVideo drops the active asset and everything derived from it.
func (s *Session) ClearVideo() {
	s.discard()
}

// Reset clears the session and also restores the default export settings.
func (s *Session) Reset() {
	s.discard()
	s.exportSettings = s.defaultSettings
}

func (s *Session) discard() {
	if s.video != nil {
		s.release("source", s.video.Source)
		s.video = nil
	}
	s.redactions = nil
	s.annotations = nil
	s.selected = ""
	s.draft = nil
	s.currentTime = 0
	s.playing = false
	s.resetProcessing()
}

// CurrentTime returns the playback position in seconds.
func (s *Session) CurrentTime() float64 {
	return s.currentTime
}

// SetCurrentTime moves the playback position, clamped to the video duration.
func (s *Session) SetCurrentTime(seconds float64) {
	seconds = max(seconds, 0)
	if s.video != nil && s.video.Duration > 0 {
		seconds = min(seconds, s.video.Duration)
	}
	s.currentTime = seconds
}

// Playing reports whether playback is running.
func (s *Session) Playing() bool {
	return s.playing
}

// SetPlaying toggles playback.
func (s *Session) SetPlaying(playing bool) {
	s.playing = playing
}

// ExportSettings returns the current export settings.
func (s *Session) ExportSettings() redaction.ExportSettings {
	return s.exportSettings
}

// ExportSettingsPatch holds optional export setting changes.
type ExportSettingsPatch struct {
	Filename     *string           `json:"filename,omitempty"`
	Preset       *redaction.Preset `json:"preset,omitempty"`
	CRF          *int              `json:"crf,omitempty"`
	IncludeAudio *bool             `json:"includeAudio,omitempty"`
}

// SetExportSettings merges patch into the settings. The merged settings must
// validate; on failure nothing changes.
func (s *Session) SetExportSettings(patch ExportSettingsPatch) (redaction.ExportSettings, error) {
	next := s.exportSettings
	if patch.Filename != nil {
		next.Filename = *patch.Filename
	}
	if patch.Preset != nil {
		next.Preset = *patch.Preset
	}
	if patch.CRF != nil {
		next.CRF = *patch.CRF
	}
	if patch.IncludeAudio != nil {
		next.IncludeAudio = *patch.IncludeAudio
	}
	if err := next.Validate(); err != nil {
		return s.exportSettings, fmt.Errorf("export settings: %w", err)
	}
	s.exportSettings = next
	return next, nil
}
