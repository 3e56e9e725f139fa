package session

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"redactor/internal/logging"
	"redactor/internal/redaction"
)

// Session is the single owned aggregate of redaction state.
type Session struct {
	video       *redaction.VideoAsset
	redactions  []redaction.Redaction
	annotations []redaction.Annotation
	selected    string
	draft       *Draft
	currentTime float64
	playing     bool

	defaultSettings redaction.ExportSettings
	exportSettings  redaction.ExportSettings
	processing      Status
	output          redaction.Handle

	clock     func() time.Time
	lastStamp time.Time
	newID     func() string
	logger    *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides id assignment for redactions and annotations.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger attaches a logger used for handle release failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logging.NewComponentLogger(logger, "session")
	}
}

// WithExportSettings replaces the default export settings a session starts
// with and returns to on Reset.
func WithExportSettings(settings redaction.ExportSettings) Option {
	return func(s *Session) {
		s.defaultSettings = settings
	}
}

// New constructs an empty session in the idle state.
func New(opts ...Option) *Session {
	s := &Session{
		defaultSettings: redaction.DefaultExportSettings(),
		processing:      Status{State: StateIdle},
		clock:           time.Now,
		newID:           uuid.NewString,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.exportSettings = s.defaultSettings
	return s
}

// Snapshot is a copy of the session state safe to hand to other goroutines.
type Snapshot struct {
	Video          *redaction.VideoAsset    `json:"video,omitempty"`
	Redactions     []redaction.Redaction    `json:"redactions"`
	Annotations    []redaction.Annotation   `json:"annotations"`
	SelectedID     string                   `json:"selectedRedactionId,omitempty"`
	Draft          *Draft                   `json:"draft,omitempty"`
	CurrentTime    float64                  `json:"currentTime"`
	Playing        bool                     `json:"playing"`
	ExportSettings redaction.ExportSettings `json:"exportSettings"`
	Processing     Status                   `json:"processing"`
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Redactions:     s.Redactions(),
		Annotations:    s.Annotations(),
		SelectedID:     s.selected,
		CurrentTime:    s.currentTime,
		Playing:        s.playing,
		ExportSettings: s.exportSettings,
		Processing:     s.processing,
	}
	if s.video != nil {
		video := *s.video
		snap.Video = &video
	}
	if s.draft != nil {
		draft := s.draft.clone()
		snap.Draft = &draft
	}
	return snap
}

// now returns a timestamp that never goes backwards within the session.
func (s *Session) now() time.Time {
	t := s.clock()
	if t.Before(s.lastStamp) {
		t = s.lastStamp
	}
	s.lastStamp = t
	return t
}

func (s *Session) release(kind string, h redaction.Handle) {
	if h == nil {
		return
	}
	if err := h.Release(); err != nil {
		s.logger.Warn("release handle failed",
			logging.String("handle", kind),
			logging.Error(err),
		)
	}
}
