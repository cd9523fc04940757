// Command filecycle rotates a "latest" working folder into dated snapshot
// folders and prunes snapshots past the retention window.
//
// One-shot commands (rotate, prune, recover, list, history, paths, doctor) work
// directly against the configured root and share the rotation lock with the
// long-running "filecycle run" scheduler.
package main
