package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"filecycle/internal/config"
)

const userAgent = "filecycle/0.1"

// Event identifies a notification type.
type Event string

const (
	EventRotationCompleted   Event = "rotation_completed"
	EventRotationFailed      Event = "rotation_failed"
	EventRetentionIncomplete Event = "retention_incomplete"
	EventDiscardFailed       Event = "discard_failed"
	EventLeftoversFound      Event = "leftovers_found"
	EventTest                Event = "test"
)

// Payload carries event fields. Keys are event specific.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		onSuccess: cfg.Notifications.NotifyOnSuccess,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	onSuccess bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	root := payload.str("root")
	switch event {
	case EventRotationCompleted:
		if !n.onSuccess {
			return message{}, false
		}
		body := fmt.Sprintf("Rotated %s into %s", root, payload.str("snapshot"))
		if payload.boolean("replaced") {
			body += " (replaced earlier snapshot)"
		}
		if pruned := payload.integer("pruned"); pruned > 0 {
			body += fmt.Sprintf("\nPruned %d expired snapshot(s)", pruned)
		}
		return message{
			title: "filecycle - Rotation Complete",
			body:  body,
			tags:  []string{"filecycle", "rotation", "completed"},
		}, true
	case EventRotationFailed:
		return message{
			title:    "filecycle - Rotation Failed",
			body:     fmt.Sprintf("Rotation of %s failed: %s", root, payload.str("error")),
			tags:     []string{"filecycle", "rotation", "error"},
			priority: "high",
		}, true
	case EventRetentionIncomplete:
		return message{
			title: "filecycle - Retention Incomplete",
			body: fmt.Sprintf("Snapshot %s published but %d expired snapshot(s) could not be removed: %s",
				payload.str("snapshot"), payload.integer("failed"), payload.str("error")),
			tags: []string{"filecycle", "retention", "warning"},
		}, true
	case EventDiscardFailed:
		return message{
			title: "filecycle - Replaced Snapshot Not Removed",
			body: fmt.Sprintf("Snapshot %s published but the replaced copy under %s could not be removed: %s\nRun `filecycle recover` to clean it up",
				payload.str("snapshot"), root, payload.str("error")),
			tags: []string{"filecycle", "discard", "warning"},
		}, true
	case EventLeftoversFound:
		return message{
			title: "filecycle - Interrupted Rotation",
			body:  fmt.Sprintf("%d leftover folder(s) under %s; run `filecycle recover`", payload.integer("count"), root),
			tags:  []string{"filecycle", "recover"},
		}, true
	case EventTest:
		return message{
			title:    "filecycle - Test",
			body:     "Notification system test",
			tags:     []string{"filecycle", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p Payload) str(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}

func (p Payload) integer(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func (p Payload) boolean(key string) bool {
	v, _ := p[key].(bool)
	return v
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
