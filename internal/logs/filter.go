package logs

import (
	"encoding/json"
	"strings"

	"filecycle/internal/logging"
)

// MatchEvent reports whether line carries the given event type. JSON lines
// are decoded; console lines are matched on their event_type=value pair. An
// empty event matches every line.
func MatchEvent(line, event string) bool {
	event = strings.TrimSpace(event)
	if event == "" {
		return true
	}
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var fields map[string]any
		if err := json.Unmarshal([]byte(trimmed), &fields); err == nil {
			value, _ := fields[logging.FieldEventType].(string)
			return value == event
		}
	}
	for _, token := range strings.Fields(trimmed) {
		if token == logging.FieldEventType+"="+event {
			return true
		}
	}
	return false
}
