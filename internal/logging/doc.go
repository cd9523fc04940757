// Package logging assembles the structured slog loggers used by filecycle.
//
// It owns the console and JSON handlers, picks a format automatically when
// asked to, and exposes attribute helpers and standard field keys so the
// daemon and CLI emit log lines with the same shape. Rotation runs carry a
// correlation ID in their context; WithContext copies it onto the logger.
package logging
