// Package ffprobe runs ffprobe and decodes the parts of its JSON report
// needed to place redactions: the primary video stream's displayed size,
// durations, frame rate and whether audio is present.
package ffprobe
