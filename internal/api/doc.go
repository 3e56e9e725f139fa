// Package api exposes the editing session over a local HTTP API.
//
// The router is built with chi. Every mutation is funnelled through the
// session loop so HTTP handlers never touch session state directly. Exports
// are started asynchronously; clients poll the processing status and then
// download the staged output.
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
// Errors are returned as {"error": "...", "code": "..."} with the status code
// chosen from the error's classification.
package api
