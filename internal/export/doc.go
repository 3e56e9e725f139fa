// Package export sequences a render: it moves the session into
// initializing or rendering, loads the engine once, compiles the filter
// graph, streams engine progress back onto the session loop and hands the
// finished output to the session as its live output handle.
//
// Begin performs the synchronous checks (video present, redactions present,
// nothing in flight, workspace lock free) so callers can reject a second
// export immediately; Execute does the slow work and may run in a goroutine.
package export
