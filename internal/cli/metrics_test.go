package cli

import (
	"fmt"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valter-silva-au/flowfolio/internal/observability"
)

type metricsMock struct {
	calcFn func(since time.Time) (*observability.Metrics, error)
	since  time.Time
}

func (m *metricsMock) Calculate(since time.Time) (*observability.Metrics, error) {
	m.since = since
	return m.calcFn(since)
}

func installMetrics(t *testing.T, mock *metricsMock) {
	t.Helper()
	orig := MetricsCalc
	t.Cleanup(func() { MetricsCalc = orig })
	MetricsCalc = mock
	resetFlags(t, metricsCmd)
}

func sampleMetrics(time.Time) (*observability.Metrics, error) {
	return &observability.Metrics{
		WorkflowsCreated:  3,
		WorkflowsDeleted:  1,
		CreatedByCategory: map[string]int{"Marketing": 1, "AI Agents": 2},
		Saves:             4,
		SaveFailures:      1,
		AssistantReplies:  7,
		AssistantFailures: 2,
		EventCount:        18,
	}, nil
}

func TestMetricsCmd_NilCalculator(t *testing.T) {
	orig := MetricsCalc
	defer func() { MetricsCalc = orig }()
	MetricsCalc = nil

	err := metricsCmd.RunE(metricsCmd, []string{})
	if err == nil {
		t.Fatal("expected error when MetricsCalc is nil")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMetricsCmd_InvalidSinceFormat(t *testing.T) {
	tests := []struct {
		name   string
		since  string
		errMsg string
	}{
		{"not a number", "abc", "invalid duration"},
		{"too short", "d", "invalid duration"},
		{"unknown suffix", "5w", "unsupported duration suffix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			installMetrics(t, &metricsMock{calcFn: sampleMetrics})

			_, _, err := runRoot(t, "metrics", "--since", tt.since)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestMetricsCmd_SinceWindow(t *testing.T) {
	mock := &metricsMock{calcFn: sampleMetrics}
	installMetrics(t, mock)

	before := time.Now().UTC()
	if _, _, err := runRoot(t, "metrics", "--since", "24h"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	window := before.Sub(mock.since)
	if window < 23*time.Hour || window > 25*time.Hour {
		t.Errorf("expected a 24h window, got %s", window)
	}
}

func TestMetricsCmd_EmptySinceDefaultsToWeek(t *testing.T) {
	mock := &metricsMock{calcFn: sampleMetrics}
	installMetrics(t, mock)

	before := time.Now().UTC()
	if _, _, err := runRoot(t, "metrics", "--since", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days := before.Sub(mock.since).Hours() / 24; days < 6.9 || days > 7.1 {
		t.Errorf("expected a 7 day window, got %.2f days", days)
	}
}

func TestMetricsCmd_Success_TableFormat(t *testing.T) {
	installMetrics(t, &metricsMock{calcFn: sampleMetrics})

	stdout, _, err := runRoot(t, "metrics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Workflows created:", "Assistant failures:", "Created by category:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("table output missing %q:\n%s", want, stdout)
		}
	}
	// Categories are listed alphabetically.
	if strings.Index(stdout, "AI Agents:") > strings.Index(stdout, "Marketing:") {
		t.Errorf("expected sorted categories:\n%s", stdout)
	}
}

func TestMetricsCmd_Success_JSONFormat(t *testing.T) {
	installMetrics(t, &metricsMock{calcFn: sampleMetrics})

	stdout, _, err := runRoot(t, "metrics", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got observability.Metrics
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if got.AssistantReplies != 7 || got.CreatedByCategory["AI Agents"] != 2 {
		t.Errorf("unexpected metrics %+v", got)
	}
}

func TestMetricsCmd_CalculateError(t *testing.T) {
	installMetrics(t, &metricsMock{
		calcFn: func(since time.Time) (*observability.Metrics, error) {
			return nil, fmt.Errorf("event log corrupted")
		},
	})

	_, _, err := runRoot(t, "metrics")
	if err == nil {
		t.Fatal("expected error from Calculate")
	}
	if !strings.Contains(err.Error(), "calculating metrics") {
		t.Errorf("unexpected error: %v", err)
	}
}
