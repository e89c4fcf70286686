package core

import "github.com/hashicorp/go-hclog"

// EventLogger receives catalog and assistant events. Write failures never
// fail the operation that produced the event.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// emit writes an event when events is set and logs write failures at debug.
func emit(events EventLogger, logger hclog.Logger, eventType string, data map[string]any) {
	if events == nil {
		return
	}
	if err := events.LogEvent(eventType, data); err != nil {
		logger.Debug("writing event", "type", eventType, "error", err)
	}
}
