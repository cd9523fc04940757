// Package daemon coordinates rotation runs and the long-running filecycle
// process.
//
// It wires configuration, the rotation manager, the run journal, the metrics
// collector and the notifier into a single lifecycle. Every rotate, prune or
// recover goes through a flock-based lock kept in the state directory, so a
// scheduled run and a manual "filecycle rotate" never touch the root at the
// same time.
//
// Keep filesystem semantics in the rotation package: the daemon focuses on
// locking, journaling, logging, and scheduling.
package daemon
