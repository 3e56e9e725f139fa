package session

import (
	"fmt"
	"math"
	"strings"

	"redactor/internal/redaction"
)

// State is a processing state machine node.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateRendering    State = "rendering"
	StateComplete     State = "complete"
	StateError        State = "error"
)

// Status is the externally visible processing status.
type Status struct {
	State    State   `json:"state"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message,omitempty"`
	Filename string  `json:"filename,omitempty"`
}

// InFlight reports whether an export is being prepared or rendered.
func (s Status) InFlight() bool {
	return s.State == StateInitializing || s.State == StateRendering
}

const initializingMessage = "Loading video engine"

// Processing returns the current processing status.
func (s *Session) Processing() Status {
	return s.processing
}

// Output returns the live output handle of the last completed export.
func (s *Session) Output() (redaction.Handle, bool) {
	return s.output, s.output != nil
}

// BeginExport moves the session into initializing, or straight into
// rendering when the engine is already warm. It fails while another export is
// in flight.
func (s *Session) BeginExport(engineWarm bool) (Status, error) {
	if s.video == nil {
		return s.processing, ErrNoVideo
	}
	if s.processing.InFlight() {
		return s.processing, ErrExportInFlight
	}
	if engineWarm {
		s.processing = Status{State: StateRendering}
	} else {
		s.processing = Status{State: StateInitializing, Message: initializingMessage}
	}
	return s.processing, nil
}

// EngineReady completes initialization and starts rendering at 0%.
func (s *Session) EngineReady() error {
	if s.processing.State != StateInitializing {
		return s.invalidTransition(StateRendering)
	}
	s.processing = Status{State: StateRendering}
	return nil
}

// SetProgress records a rendering progress update. Values are clamped into
// [current, 100] so late or out-of-range updates never move progress
// backwards. Updates outside rendering are ignored; the return value reports
// whether the update was applied.
func (s *Session) SetProgress(percent float64) bool {
	if s.processing.State != StateRendering {
		return false
	}
	if math.IsNaN(percent) {
		return false
	}
	s.processing.Progress = min(max(percent, s.processing.Progress, 0), 100)
	return true
}

// Complete records a finished export. Any previous output handle is released
// first so at most one output is live per session.
func (s *Session) Complete(output redaction.Handle, filename string) error {
	if s.processing.State != StateRendering {
		return s.invalidTransition(StateComplete)
	}
	s.releaseOutput()
	s.output = output
	s.processing = Status{State: StateComplete, Progress: 100, Filename: strings.TrimSpace(filename)}
	return nil
}

// Fail moves an in-flight export into the error state. Session data is left
// untouched so the export can be retried.
func (s *Session) Fail(message string) error {
	if !s.processing.InFlight() {
		return s.invalidTransition(StateError)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = "Export failed"
	}
	s.processing = Status{State: StateError, Message: message}
	return nil
}

func (s *Session) invalidTransition(to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.processing.State, to)
}

func (s *Session) resetProcessing() {
	s.releaseOutput()
	s.processing = Status{State: StateIdle}
}

func (s *Session) releaseOutput() {
	if s.output == nil {
		return
	}
	s.release("output", s.output)
	s.output = nil
}
