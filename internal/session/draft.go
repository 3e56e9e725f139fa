package session

import "redactor/internal/redaction"

// Draft is a rectangle being drawn before it becomes a redaction.
type Draft struct {
	Region redaction.Region `json:"region"`
	Start  *float64         `json:"start,omitempty"`
	End    *float64         `json:"end,omitempty"`
}

func (d Draft) clone() Draft {
	out := Draft{Region: d.Region}
	if d.Start != nil {
		v := *d.Start
		out.Start = &v
	}
	if d.End != nil {
		v := *d.End
		out.End = &v
	}
	return out
}

// DraftPatch holds optional draft changes.
type DraftPatch struct {
	Region *redaction.Region `json:"region,omitempty"`
	Start  *float64          `json:"start,omitempty"`
	End    *float64          `json:"end,omitempty"`
}

// Draft returns the current draft.
func (s *Session) Draft() (Draft, bool) {
	if s.draft == nil {
		return Draft{}, false
	}
	return s.draft.clone(), true
}

// CreateDraft starts a new draft, replacing any existing one.
func (s *Session) CreateDraft(region redaction.Region) {
	s.draft = &Draft{Region: region}
}

// UpdateDraft merges patch into the current draft.
func (s *Session) UpdateDraft(patch DraftPatch) error {
	if s.draft == nil {
		return ErrNoDraft
	}
	if patch.Region != nil {
		s.draft.Region = *patch.Region
	}
	if patch.Start != nil {
		v := *patch.Start
		s.draft.Start = &v
	}
	if patch.End != nil {
		v := *patch.End
		s.draft.End = &v
	}
	return nil
}

// ClearDraft discards the draft.
func (s *Session) ClearDraft() {
	s.draft = nil
}

// CommitDraft turns the draft into a redaction. Missing bounds default to
// the current time and the end of the video.
func (s *Session) CommitDraft(params NewRedaction) (redaction.Redaction, error) {
	if s.draft == nil {
		return redaction.Redaction{}, ErrNoDraft
	}
	params.Region = s.draft.Region
	params.Start = s.currentTime
	if s.draft.Start != nil {
		params.Start = *s.draft.Start
	}
	if s.video != nil {
		params.End = s.video.Duration
	}
	if s.draft.End != nil {
		params.End = *s.draft.End
	}
	return s.AddRedaction(params)
}
