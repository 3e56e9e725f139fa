// Package engine runs ffmpeg as the external render executor.
//
// The engine accepts a filter graph description plus raw source bytes and
// returns raw output bytes. It is loaded lazily once per process (Load runs
// `ffmpeg -version`), and render progress is published to subscribers parsed
// from ffmpeg's `-progress pipe:1` key=value stream.
package engine
