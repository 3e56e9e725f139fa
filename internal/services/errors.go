package services

import (
	"errors"
	"fmt"
	"strings"
)

// Markers classify failures. Wrap attaches one; Kind and errors.Is read it
// back.
var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrTimeout       = errors.New("timeout")
	ErrExternalTool  = errors.New("external tool error")
	ErrTransient     = errors.New("transient failure")
)

// kinds is checked in order; the first marker found names the error.
var kinds = []struct {
	marker error
	name   string
}{
	{ErrValidation, "validation"},
	{ErrConfiguration, "configuration"},
	{ErrNotFound, "not_found"},
	{ErrConflict, "conflict"},
	{ErrTimeout, "timeout"},
	{ErrExternalTool, "external_tool"},
}

// Wrap returns "marker: component: operation: message: err", skipping empty
// parts. A nil marker means ErrTransient and a nil err is left out.
func Wrap(marker error, component, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	var parts []string
	for _, p := range []string{component, operation, message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	detail := strings.Join(parts, ": ")
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// Kind names the marker carried by err: "validation", "not_found" and so
// on, "transient" for unmarked errors and "" for nil. It is recorded in the
// export history and picks API status codes.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.marker) {
			return k.name
		}
	}
	return "transient"
}
