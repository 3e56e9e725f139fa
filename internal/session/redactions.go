package session

import (
	"fmt"
	"strings"

	"redactor/internal/redaction"
)

// NewRedaction describes a redaction to create. Zero values take defaults:
// blur, medium strength, the strength colour and a positional label.
type NewRedaction struct {
	Region   redaction.Region   `json:"region"`
	Start    float64            `json:"start"`
	End      float64            `json:"end"`
	Effect   redaction.Effect   `json:"effect,omitempty"`
	Strength redaction.Strength `json:"strength,omitempty"`
	Color    string             `json:"color,omitempty"`
	Label    string             `json:"label,omitempty"`
}

// RedactionPatch holds optional field changes for UpdateRedaction.
type RedactionPatch struct {
	Label    *string             `json:"label,omitempty"`
	Effect   *redaction.Effect   `json:"effect,omitempty"`
	Strength *redaction.Strength `json:"strength,omitempty"`
	Color    *string             `json:"color,omitempty"`
	Start    *float64            `json:"start,omitempty"`
	End      *float64            `json:"end,omitempty"`
	Region   *redaction.Region   `json:"region,omitempty"`
	Enabled  *bool               `json:"enabled,omitempty"`
}

// Redactions returns a copy of the redactions in compositing order.
func (s *Session) Redactions() []redaction.Redaction {
	out := make([]redaction.Redaction, len(s.redactions))
	copy(out, s.redactions)
	return out
}

// Redaction looks up a redaction by id.
func (s *Session) Redaction(id string) (redaction.Redaction, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.redactions[i], true
	}
	return redaction.Redaction{}, false
}

// AddRedaction creates an enabled redaction at the end of the list, selects
// it and clears any draft.
func (s *Session) AddRedaction(params NewRedaction) (redaction.Redaction, error) {
	if s.video == nil {
		return redaction.Redaction{}, ErrNoVideo
	}
	effect := params.Effect
	if effect == "" {
		effect = redaction.EffectBlur
	}
	if !effect.Valid() {
		return redaction.Redaction{}, fmt.Errorf("add redaction: %w: effect %q", redaction.ErrInvalid, effect)
	}
	strength := params.Strength
	if strength == "" {
		strength = redaction.StrengthMedium
	}
	if !strength.Valid() {
		return redaction.Redaction{}, fmt.Errorf("add redaction: %w: strength %q", redaction.ErrInvalid, strength)
	}
	color := strings.TrimSpace(params.Color)
	if color == "" {
		color = redaction.StrengthColor(strength)
	}
	label := strings.TrimSpace(params.Label)
	if label == "" {
		label = fmt.Sprintf("Redaction %d", len(s.redactions)+1)
	}

	now := s.now()
	r := redaction.Redaction{
		ID:        s.newID(),
		Label:     label,
		Effect:    effect,
		Strength:  strength,
		Color:     color,
		Start:     params.Start,
		End:       params.End,
		Region:    params.Region,
		Enabled:   true,
		Shape:     redaction.ShapeRectangle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.redactions = append(s.redactions, r)
	s.selected = r.ID
	s.draft = nil
	return r, nil
}

// UpdateRedaction merges patch into the redaction and refreshes UpdatedAt.
// When the strength changes and the colour still matches the old strength's
// default tint, the colour follows the new strength.
func (s *Session) UpdateRedaction(id string, patch RedactionPatch) (redaction.Redaction, error) {
	i := s.indexOf(id)
	if i < 0 {
		return redaction.Redaction{}, fmt.Errorf("update %s: %w", id, ErrRedactionNotFound)
	}
	r := s.redactions[i]
	if patch.Effect != nil && !patch.Effect.Valid() {
		return r, fmt.Errorf("update %s: %w: effect %q", id, redaction.ErrInvalid, *patch.Effect)
	}
	if patch.Strength != nil && !patch.Strength.Valid() {
		return r, fmt.Errorf("update %s: %w: strength %q", id, redaction.ErrInvalid, *patch.Strength)
	}

	if patch.Label != nil {
		r.Label = *patch.Label
	}
	if patch.Effect != nil {
		r.Effect = *patch.Effect
	}
	if patch.Strength != nil {
		if patch.Color == nil && r.Color == redaction.StrengthColor(r.Strength) {
			r.Color = redaction.StrengthColor(*patch.Strength)
		}
		r.Strength = *patch.Strength
	}
	if patch.Color != nil {
		r.Color = *patch.Color
	}
	if patch.Start != nil {
		r.Start = *patch.Start
	}
	if patch.End != nil {
		r.End = *patch.End
	}
	if patch.Region != nil {
		r.Region = *patch.Region
	}
	if patch.Enabled != nil {
		r.Enabled = *patch.Enabled
	}
	r.UpdatedAt = s.now()
	s.redactions[i] = r
	return r, nil
}

// RemoveRedaction deletes the redaction, every annotation that references it
// and the selection if it pointed at it.
func (s *Session) RemoveRedaction(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("remove %s: %w", id, ErrRedactionNotFound)
	}
	s.redactions = append(s.redactions[:i:i], s.redactions[i+1:]...)
	kept := s.annotations[:0:0]
	for _, a := range s.annotations {
		if !a.References(id) {
			kept = append(kept, a)
		}
	}
	s.annotations = kept
	if s.selected == id {
		s.selected = ""
	}
	return nil
}

// ToggleRedaction flips the enabled flag.
func (s *Session) ToggleRedaction(id string) (redaction.Redaction, error) {
	i := s.indexOf(id)
	if i < 0 {
		return redaction.Redaction{}, fmt.Errorf("toggle %s: %w", id, ErrRedactionNotFound)
	}
	s.redactions[i].Enabled = !s.redactions[i].Enabled
	s.redactions[i].UpdatedAt = s.now()
	return s.redactions[i], nil
}

// ReorderRedactions moves the listed redactions to the front in the given
// order. Unknown and repeated ids are ignored; unlisted redactions keep their
// relative order after the listed ones.
func (s *Session) ReorderRedactions(ids []string) {
	placed := make(map[string]bool, len(ids))
	ordered := make([]redaction.Redaction, 0, len(s.redactions))
	for _, id := range ids {
		if placed[id] {
			continue
		}
		if i := s.indexOf(id); i >= 0 {
			ordered = append(ordered, s.redactions[i])
			placed[id] = true
		}
	}
	for _, r := range s.redactions {
		if !placed[r.ID] {
			ordered = append(ordered, r)
		}
	}
	s.redactions = ordered
}

// Selected returns the selected redaction id, or "".
func (s *Session) Selected() string {
	return s.selected
}

// SelectRedaction selects an existing redaction. An empty id clears the
// selection.
func (s *Session) SelectRedaction(id string) error {
	if id == "" {
		s.selected = ""
		return nil
	}
	if s.indexOf(id) < 0 {
		return fmt.Errorf("select %s: %w", id, ErrRedactionNotFound)
	}
	s.selected = id
	return nil
}

func (s *Session) indexOf(id string) int {
	for i := range s.redactions {
		if s.redactions[i].ID == id {
			return i
		}
	}
	return -1
}
