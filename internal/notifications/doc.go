// Package notifications delivers rotation events to ntfy.
//
// NewService returns a no-op notifier when no topic is configured, so the
// daemon can publish unconditionally. Successful rotations are only sent when
// notifications.notify_on_success is set; failures always are.
package notifications
