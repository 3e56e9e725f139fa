// Package config loads, normalizes, and validates redactor configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as REDACTOR_API_TOKEN
// and FFMPEG_BINARY. Obtain settings through this package so downstream code
// receives absolute paths and clear validation errors.
package config
