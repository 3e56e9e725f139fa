// Package main hosts the redactor CLI entrypoint and command graph.
//
// The Cobra-based command tree renders redaction plans through the video
// engine, previews processing graphs and timeline lanes, probes media,
// checks external dependencies, lists the export history and serves the local
// control API. It centralizes configuration resolution and structured logging
// setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
