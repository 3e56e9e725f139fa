// Package session owns the mutable state of one redaction session.
//
// A Session holds the active VideoAsset, the ordered redactions and
// annotations, selection, transport position, export settings and the
// processing state machine:
//
//	idle -> initializing -> rendering(progress) -> complete | error
//
// It enforces the referential rules between entities (annotations cascade
// with their redaction, selection is cleared with it) and the single-owner
// discipline for transient handles: the source handle and the rendered
// output handle are each released exactly once, at the next replace, clear,
// reset or completion.
//
// Session itself is not safe for concurrent use. Loop runs every mutation on
// a single control goroutine; asynchronous notifications such as engine
// progress are posted onto it rather than touching the session directly.
package session
