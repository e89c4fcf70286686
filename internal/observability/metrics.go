package observability

import (
	"fmt"
	"time"
)

// Metrics holds counts derived from the event log over a time window.
type Metrics struct {
	WorkflowsCreated  int            `json:"workflows_created"`
	WorkflowsUpdated  int            `json:"workflows_updated"`
	WorkflowsDeleted  int            `json:"workflows_deleted"`
	CreatedByCategory map[string]int `json:"created_by_category"`
	Saves             int            `json:"saves"`
	SaveFailures      int            `json:"save_failures"`
	LoadFallbacks     int            `json:"load_fallbacks"`
	AssistantReplies  int            `json:"assistant_replies"`
	AssistantFailures int            `json:"assistant_failures"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		CreatedByCategory: make(map[string]int),
		EventCount:        len(events),
	}

	for i, event := range events {
		t := event.Time
		if i == 0 {
			m.OldestEvent = &t
		}
		m.NewestEvent = &t

		switch event.Type {
		case EventWorkflowCreated:
			m.WorkflowsCreated++
			if category, ok := event.Data["category"].(string); ok {
				m.CreatedByCategory[category]++
			}
		case EventWorkflowUpdated:
			m.WorkflowsUpdated++
		case EventWorkflowDeleted:
			m.WorkflowsDeleted++
		case EventCatalogSaved:
			m.Saves++
		case EventCatalogSaveFailed:
			m.SaveFailures++
		case EventCatalogFallback:
			m.LoadFallbacks++
		case EventAssistantReplied:
			m.AssistantReplies++
		case EventAssistantFailed:
			m.AssistantFailures++
		}
	}

	return m, nil
}

// ParseSince parses a window like "7d", "30d" or "24h" into the matching
// point in the past.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	var num int
	if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
