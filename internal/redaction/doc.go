// Package redaction defines the entities a redaction session works with.
//
// Key types:
//   - Redaction: a timed rectangular masking instruction (blur, pixelate or
//     blackout) positioned in source pixel space
//   - Annotation: a time-anchored note that may point back at a Redaction
//   - VideoAsset: the active source video plus its releasable handle
//   - ExportSettings: encoder knobs forwarded to the engine
//
// The package also owns the strength lookup tables (blur radius, pixelation
// divisor, UI colour). It has no dependencies on other redactor packages so
// the timeline, compiler and session layers can all build on it.
package redaction
