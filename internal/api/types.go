package api

import (
	"time"

	"redactor/internal/deps"
	"redactor/internal/history"
	"redactor/internal/redaction"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	UptimeS int64  `json:"uptimeS"`
}

// VideoRequest loads a video from a local path.
type VideoRequest struct {
	Path string `json:"path"`
}

// TransportRequest moves the playhead or toggles playback.
type TransportRequest struct {
	CurrentTime *float64 `json:"currentTime,omitempty"`
	Playing     *bool    `json:"playing,omitempty"`
}

// OrderRequest lists redaction ids in their new compositing order.
type OrderRequest struct {
	IDs []string `json:"ids"`
}

// SelectRequest selects a redaction; an empty id clears the selection.
type SelectRequest struct {
	ID string `json:"id"`
}

// DraftRequest starts a new draft rectangle.
type DraftRequest struct {
	Region redaction.Region `json:"region"`
}

// LaneEntry places one redaction on a timeline lane.
type LaneEntry struct {
	ID   string `json:"id"`
	Lane int    `json:"lane"`
}

// LanesResponse is the timeline layout of the current redactions.
type LanesResponse struct {
	Count   int         `json:"count"`
	Display int         `json:"display"`
	Lanes   []LaneEntry `json:"lanes"`
}

// GraphResponse previews the processing graph an export would run.
type GraphResponse struct {
	Graph      string   `json:"graph"`
	Effects    []string `json:"effects"`
	Composites int      `json:"composites"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
}

// HistoryEntry is a journaled export attempt.
type HistoryEntry struct {
	ID           string   `json:"id"`
	Status       string   `json:"status"`
	VideoName    string   `json:"videoName"`
	Filename     string   `json:"filename"`
	Redactions   int      `json:"redactions"`
	Effects      []string `json:"effects"`
	GraphDigest  string   `json:"graphDigest,omitempty"`
	OutputBytes  int64    `json:"outputBytes"`
	ErrorKind    string   `json:"errorKind,omitempty"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
	StartedAt    string   `json:"startedAt"`
	FinishedAt   string   `json:"finishedAt"`
	ElapsedMs    int64    `json:"elapsedMs"`
}

// FromHistoryEntry converts a journal entry into its transport form.
func FromHistoryEntry(e history.Entry) HistoryEntry {
	effects := e.Effects
	if effects == nil {
		effects = []string{}
	}
	return HistoryEntry{
		ID:           e.ID,
		Status:       string(e.Status),
		VideoName:    e.VideoName,
		Filename:     e.Filename,
		Redactions:   e.Redactions,
		Effects:      effects,
		GraphDigest:  e.GraphDigest,
		OutputBytes:  e.OutputBytes,
		ErrorKind:    e.ErrorKind,
		ErrorMessage: e.ErrorMessage,
		StartedAt:    formatTime(e.StartedAt),
		FinishedAt:   formatTime(e.FinishedAt),
		ElapsedMs:    e.Elapsed().Milliseconds(),
	}
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// FromDependencyStatus converts a doctor result into its transport form.
func FromDependencyStatus(s deps.Status) DependencyStatus {
	command := s.Command
	if s.Path != "" {
		command = s.Path
	}
	return DependencyStatus{
		Name:        s.Name,
		Command:     command,
		Version:     s.Version,
		Description: s.Description,
		Optional:    s.Optional,
		Available:   s.Available,
		Detail:      s.Detail,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
