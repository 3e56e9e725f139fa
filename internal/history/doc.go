// Package history keeps a sqlite journal of export attempts.
//
// Each render, successful or not, is recorded with its outcome, the number of
// redactions compiled, the effects used and a digest of the filter graph so
// repeated exports of the same plan can be spotted. The database lives under
// paths.state_dir and uses WAL mode so the CLI and `redactor serve` can share
// it.
package history
