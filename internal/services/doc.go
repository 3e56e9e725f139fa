// Package services defines shared utilities consumed by the export pipeline
// and the command-line and HTTP surfaces.
//
// Key responsibilities:
//   - Context helpers that stamp export run IDs and correlation identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified with errors.Is and recorded in the export history.
package services
