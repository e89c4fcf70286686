package observability

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestEventLog_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC().Truncate(time.Millisecond)
	events := []Event{
		{
			Time:    now,
			Level:   "INFO",
			Type:    EventWorkflowCreated,
			Message: "workflow created",
			Data:    map[string]any{"id": "1700000000000", "category": "Marketing"},
		},
		{
			Time:    now.Add(time.Second),
			Level:   "WARN",
			Type:    EventWorkflowUpdated,
			Message: "workflow updated",
			Data:    map[string]any{"id": "1700000000000", "title": "Lead Scorer"},
		},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result))
	}

	if result[0].Type != EventWorkflowCreated {
		t.Errorf("expected type workflow.created, got %s", result[0].Type)
	}
	if result[0].Message != "workflow created" {
		t.Errorf("expected message 'workflow created', got %s", result[0].Message)
	}
	if result[1].Level != "WARN" {
		t.Errorf("expected level WARN, got %s", result[1].Level)
	}
	if got := result[0].Data["category"]; got != "Marketing" {
		t.Errorf("expected category data Marketing, got %v", got)
	}
}

func TestEventLog_FilterByType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC()
	events := []Event{
		{Time: now, Level: "INFO", Type: EventWorkflowCreated, Message: "created"},
		{Time: now.Add(time.Second), Level: "INFO", Type: EventWorkflowUpdated, Message: "updated"},
		{Time: now.Add(2 * time.Second), Level: "INFO", Type: EventWorkflowCreated, Message: "another created"},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{Type: EventWorkflowCreated})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events of type workflow.created, got %d", len(result))
	}

	for _, e := range result {
		if e.Type != EventWorkflowCreated {
			t.Errorf("expected type workflow.created, got %s", e.Type)
		}
	}
}

func TestEventLog_FilterByTimeRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Time: base, Level: "INFO", Type: EventWorkflowCreated, Message: "first"},
		{Time: base.Add(time.Hour), Level: "INFO", Type: EventWorkflowCreated, Message: "second"},
		{Time: base.Add(2 * time.Hour), Level: "INFO", Type: EventWorkflowCreated, Message: "third"},
		{Time: base.Add(3 * time.Hour), Level: "INFO", Type: EventWorkflowCreated, Message: "fourth"},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	since := base.Add(30 * time.Minute)
	until := base.Add(2*time.Hour + 30*time.Minute)
	result, err := log.Read(EventFilter{Since: &since, Until: &until})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events in time range, got %d", len(result))
	}

	if result[0].Message != "second" {
		t.Errorf("expected 'second', got %s", result[0].Message)
	}
	if result[1].Message != "third" {
		t.Errorf("expected 'third', got %s", result[1].Message)
	}
}

func TestEventLog_FilterByLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC()
	events := []Event{
		{Time: now, Level: "INFO", Type: EventWorkflowCreated, Message: "info event"},
		{Time: now.Add(time.Second), Level: "WARN", Type: EventWorkflowUpdated, Message: "warn event"},
		{Time: now.Add(2 * time.Second), Level: "ERROR", Type: EventAssistantFailed, Message: "error event"},
		{Time: now.Add(3 * time.Second), Level: "WARN", Type: EventCatalogFallback, Message: "another warn"},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{Level: "WARN"})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 WARN events, got %d", len(result))
	}

	for _, e := range result {
		if e.Level != "WARN" {
			t.Errorf("expected level WARN, got %s", e.Level)
		}
	}
}

func TestEventLog_EmptyLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading empty log: %v", err)
	}

	if len(result) != 0 {
		t.Errorf("expected 0 events from empty log, got %d", len(result))
	}
}

func TestEventLog_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	const goroutines = 10
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < eventsPerGoroutine; i++ {
				event := Event{
					Time:    time.Now().UTC(),
					Level:   "INFO",
					Type:    EventWorkflowCreated,
					Message: "concurrent event",
					Data:    map[string]any{"goroutine": id, "index": i},
				}
				if err := log.Write(event); err != nil {
					t.Errorf("concurrent write error: %v", err)
				}
			}
		}(g)
	}

	wg.Wait()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events after concurrent writes: %v", err)
	}

	expected := goroutines * eventsPerGoroutine
	if len(result) != expected {
		t.Errorf("expected %d events, got %d", expected, len(result))
	}
}

func TestEventLog_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	if err := log.Write(Event{Time: time.Now().UTC(), Level: "INFO", Type: EventCatalogSaved, Message: "saved"}); err != nil {
		t.Fatalf("writing event: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	_, _ = f.WriteString("{not json\n\n")
	_ = f.Close()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("expected 1 event after skipping garbage, got %d", len(result))
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		eventType string
		want      string
	}{
		{EventWorkflowCreated, "INFO"},
		{EventWorkflowDeleted, "INFO"},
		{EventCatalogSaved, "INFO"},
		{EventCatalogFallback, "WARN"},
		{EventCatalogSaveFailed, "ERROR"},
		{EventAssistantFailed, "ERROR"},
		{EventAssistantReplied, "INFO"},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.eventType); got != tt.want {
			t.Errorf("LevelFor(%q) = %q, want %q", tt.eventType, got, tt.want)
		}
	}
}

func TestEventLog_WriteFillsDefaults(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("NewJSONLEventLog: %v", err)
	}
	defer log.Close()

	before := time.Now().UTC()
	if err := log.Write(Event{Type: EventCatalogSaveFailed}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR", e.Level)
	}
	if e.Message != EventCatalogSaveFailed {
		t.Errorf("Message = %q, want the event type", e.Message)
	}
	if e.Time.Before(before.Add(-time.Second)) {
		t.Errorf("expected Time to be stamped, got %s", e.Time)
	}
}

func TestEventLog_WriteAfterClose(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("NewJSONLEventLog: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := log.Write(Event{Type: EventCatalogSaved}); err == nil {
		t.Error("expected error writing to a closed log")
	}
}
