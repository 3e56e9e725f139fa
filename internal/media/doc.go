// Package media turns files on disk into session video assets and owns the
// file-backed handles the session releases.
package media
