// Package api exposes the task REST endpoints. Handlers decode and validate
// requests, call the task service, and write every response in the shared
// envelope format. Error-to-status mapping lives in errors.go.
package api
