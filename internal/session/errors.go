package session

import "errors"

var (
	ErrNoVideo            = errors.New("no video loaded")
	ErrRedactionNotFound  = errors.New("redaction not found")
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrNoDraft            = errors.New("no draft in progress")
	ErrExportInFlight     = errors.New("an export is already in progress")
	ErrInvalidTransition  = errors.New("invalid processing transition")
	ErrLoopStopped        = errors.New("session loop stopped")
)
