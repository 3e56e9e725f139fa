// Package logs reads the redactor log file for `redactor logs`.
//
// Tail returns the last N lines and the byte offset they end at; Follow
// polls from an offset and hands each new line to a callback until the
// context ends. Memory stays bounded by the requested line count.
package logs
