package plan

import (
	"fmt"
	"strings"

	"redactor/internal/redaction"
	"redactor/internal/session"
)

// Applied maps plan keys to the ids the session assigned.
type Applied struct {
	RedactionIDs map[string]string
	Redactions   []redaction.Redaction
	Annotations  []redaction.Annotation
	Export       redaction.ExportSettings
}

// Apply adds the plan's redactions and annotations to s and merges the export
// overrides. A video must already be loaded. Apply must run on the session's
// control goroutine.
func (p *Plan) Apply(s *session.Session) (Applied, error) {
	applied := Applied{RedactionIDs: make(map[string]string, len(p.Redactions))}

	settings, err := s.SetExportSettings(p.Export.patch())
	if err != nil {
		return applied, err
	}
	applied.Export = settings

	for i, entry := range p.Redactions {
		params := session.NewRedaction{
			Region: entry.Region(),
			Start:  entry.Start,
			End:    entry.End,
			Color:  entry.Color,
			Label:  entry.Label,
		}
		if entry.Effect != "" {
			params.Effect, _ = redaction.ParseEffect(entry.Effect)
		}
		if entry.Strength != "" {
			params.Strength, _ = redaction.ParseStrength(entry.Strength)
		}
		r, err := s.AddRedaction(params)
		if err != nil {
			return applied, fmt.Errorf("redactions[%d]: %w", i, err)
		}
		if entry.Enabled != nil && !*entry.Enabled {
			if r, err = s.UpdateRedaction(r.ID, session.RedactionPatch{Enabled: entry.Enabled}); err != nil {
				return applied, fmt.Errorf("redactions[%d]: %w", i, err)
			}
		}
		if key := strings.TrimSpace(entry.Key); key != "" {
			applied.RedactionIDs[key] = r.ID
		}
		applied.Redactions = append(applied.Redactions, r)
	}

	for i, entry := range p.Annotations {
		a, err := s.AddAnnotation(session.NewAnnotation{
			Time:        entry.Time,
			Text:        entry.Text,
			Color:       entry.Color,
			RedactionID: applied.RedactionIDs[strings.TrimSpace(entry.Redaction)],
		})
		if err != nil {
			return applied, fmt.Errorf("annotations[%d]: %w", i, err)
		}
		applied.Annotations = append(applied.Annotations, a)
	}
	return applied, nil
}

func (e Export) patch() session.ExportSettingsPatch {
	patch := session.ExportSettingsPatch{
		Filename:     e.Filename,
		CRF:          e.CRF,
		IncludeAudio: e.IncludeAudio,
	}
	if e.Preset != nil {
		preset := redaction.Preset(strings.ToLower(strings.TrimSpace(*e.Preset)))
		patch.Preset = &preset
	}
	return patch
}
