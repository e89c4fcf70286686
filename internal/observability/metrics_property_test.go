package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// For any N workflow.created events, WorkflowsCreated equals N and the
// per-category counts sum to N.
func TestProperty_MetricsCreatedMatchesEvents(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		numEvents := rapid.IntRange(1, 20).Draw(rt, "numEvents")
		baseTime := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
		categories := []string{"AI Agents", "Data Extraction", "Business Ops", "Marketing"}

		for i := 0; i < numEvents; i++ {
			category := rapid.SampledFrom(categories).Draw(rt, fmt.Sprintf("category_%d", i))
			hoursOffset := rapid.IntRange(0, 168).Draw(rt, fmt.Sprintf("hoursOffset_%d", i))

			event := Event{
				Time:    baseTime.Add(time.Duration(hoursOffset) * time.Hour),
				Level:   "INFO",
				Type:    EventWorkflowCreated,
				Message: "workflow created",
				Data:    map[string]any{"id": fmt.Sprint(i), "category": category},
			}
			if err := el.Write(event); err != nil {
				t.Fatalf("writing event: %v", err)
			}
		}

		metrics, err := NewMetricsCalculator(el).Calculate(baseTime.Add(-time.Hour))
		if err != nil {
			t.Fatalf("calculating metrics: %v", err)
		}

		if metrics.WorkflowsCreated != numEvents {
			rt.Errorf("WorkflowsCreated = %d, want %d", metrics.WorkflowsCreated, numEvents)
		}
		sum := 0
		for _, n := range metrics.CreatedByCategory {
			sum += n
		}
		if sum != numEvents {
			rt.Errorf("category counts sum to %d, want %d", sum, numEvents)
		}
	})
}

// For any mix of event types, EventCount equals the number written.
func TestProperty_MetricsEventCountIsTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		numEvents := rapid.IntRange(1, 20).Draw(rt, "numEvents")
		baseTime := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
		eventTypes := []string{
			EventWorkflowCreated,
			EventWorkflowUpdated,
			EventWorkflowDeleted,
			EventCatalogSaved,
			EventCatalogSaveFailed,
			EventAssistantReplied,
			"unrelated.event",
		}

		for i := 0; i < numEvents; i++ {
			eventType := rapid.SampledFrom(eventTypes).Draw(rt, fmt.Sprintf("eventType_%d", i))
			hoursOffset := rapid.IntRange(0, 168).Draw(rt, fmt.Sprintf("hoursOffset_%d", i))

			event := Event{
				Time:    baseTime.Add(time.Duration(hoursOffset) * time.Hour),
				Level:   LevelFor(eventType),
				Type:    eventType,
				Message: eventType,
			}
			if err := el.Write(event); err != nil {
				t.Fatalf("writing event: %v", err)
			}
		}

		metrics, err := NewMetricsCalculator(el).Calculate(baseTime.Add(-time.Hour))
		if err != nil {
			t.Fatalf("calculating metrics: %v", err)
		}

		if metrics.EventCount != numEvents {
			rt.Errorf("EventCount = %d, want %d", metrics.EventCount, numEvents)
		}
	})
}
