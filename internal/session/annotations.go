package session

import (
	"fmt"
	"strings"

	"redactor/internal/redaction"
)

// NewAnnotation describes an annotation to create.
type NewAnnotation struct {
	Time        float64 `json:"time"`
	Text        string  `json:"text"`
	Color       string  `json:"color,omitempty"`
	RedactionID string  `json:"redactionId,omitempty"`
}

// AnnotationPatch holds optional annotation changes. Setting RedactionID to
// an empty string detaches the annotation.
type AnnotationPatch struct {
	Time        *float64 `json:"time,omitempty"`
	Text        *string  `json:"text,omitempty"`
	Color       *string  `json:"color,omitempty"`
	RedactionID *string  `json:"redactionId,omitempty"`
}

// Annotations returns a copy of the annotations.
func (s *Session) Annotations() []redaction.Annotation {
	out := make([]redaction.Annotation, len(s.annotations))
	copy(out, s.annotations)
	return out
}

// AddAnnotation creates an annotation. A back-reference must name an
// existing redaction.
func (s *Session) AddAnnotation(params NewAnnotation) (redaction.Annotation, error) {
	if err := s.checkReference(params.RedactionID); err != nil {
		return redaction.Annotation{}, fmt.Errorf("add annotation: %w", err)
	}
	color := strings.TrimSpace(params.Color)
	if color == "" {
		color = redaction.DefaultAnnotationColor
	}
	a := redaction.Annotation{
		ID:          s.newID(),
		Time:        max(params.Time, 0),
		Text:        params.Text,
		Color:       color,
		RedactionID: params.RedactionID,
	}
	s.annotations = append(s.annotations, a)
	return a, nil
}

// UpdateAnnotation merges patch into the annotation.
func (s *Session) UpdateAnnotation(id string, patch AnnotationPatch) (redaction.Annotation, error) {
	i := s.annotationIndex(id)
	if i < 0 {
		return redaction.Annotation{}, fmt.Errorf("update annotation %s: %w", id, ErrAnnotationNotFound)
	}
	a := s.annotations[i]
	if patch.RedactionID != nil {
		if err := s.checkReference(*patch.RedactionID); err != nil {
			return a, fmt.Errorf("update annotation %s: %w", id, err)
		}
		a.RedactionID = *patch.RedactionID
	}
	if patch.Time != nil {
		a.Time = max(*patch.Time, 0)
	}
	if patch.Text != nil {
		a.Text = *patch.Text
	}
	if patch.Color != nil {
		a.Color = *patch.Color
	}
	s.annotations[i] = a
	return a, nil
}

// RemoveAnnotation deletes an annotation.
func (s *Session) RemoveAnnotation(id string) error {
	i := s.annotationIndex(id)
	if i < 0 {
		return fmt.Errorf("remove annotation %s: %w", id, ErrAnnotationNotFound)
	}
	s.annotations = append(s.annotations[:i:i], s.annotations[i+1:]...)
	return nil
}

// AnnotatedRedaction resolves an annotation's back-reference, checking that
// the redaction still exists.
func (s *Session) AnnotatedRedaction(a redaction.Annotation) (redaction.Redaction, bool) {
	if a.RedactionID == "" {
		return redaction.Redaction{}, false
	}
	return s.Redaction(a.RedactionID)
}

func (s *Session) checkReference(redactionID string) error {
	if redactionID == "" {
		return nil
	}
	if s.indexOf(redactionID) < 0 {
		return fmt.Errorf("%s: %w", redactionID, ErrRedactionNotFound)
	}
	return nil
}

func (s *Session) annotationIndex(id string) int {
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			return i
		}
	}
	return -1
}
