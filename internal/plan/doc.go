// Package plan reads TOML redaction plans.
//
// A plan lists the redactions to apply to a video, optional annotations that
// point at those redactions through plan-local keys, and export overrides.
// Plans are applied to a session through its normal CRUD operations so the
// same defaults and validation apply as for interactive edits.
package plan
