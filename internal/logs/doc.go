// Package logs reads the filecycle log file back for the `filecycle logs`
// command: the last N lines, follow mode that polls for appended lines, and
// filtering by event type for both JSON and console formatted lines.
package logs
