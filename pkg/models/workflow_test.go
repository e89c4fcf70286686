package models

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want Category
	}{
		{"AI Agents", true, CategoryAIAgents},
		{"Marketing", true, CategoryMarketing},
		{"All", false, Category("All")},
		{"marketing", false, Category("marketing")},
		{"", false, Category("")},
	}
	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseCategory(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseComplexity(t *testing.T) {
	for _, c := range Complexities {
		if got, ok := ParseComplexity(string(c)); !ok || got != c {
			t.Errorf("ParseComplexity(%q) = (%q, %v)", c, got, ok)
		}
	}
	if _, ok := ParseComplexity("Extreme"); ok {
		t.Error("expected Extreme to be rejected")
	}
}

func TestComplexitySeverity(t *testing.T) {
	tests := map[Complexity]string{
		ComplexitySimple:   "low",
		ComplexityMedium:   "medium",
		ComplexityAdvanced: "high",
		Complexity("odd"):  "medium",
	}
	for c, want := range tests {
		if got := c.Severity(); got != want {
			t.Errorf("%q.Severity() = %q, want %q", c, got, want)
		}
	}
}

func TestWorkflowRecordClone(t *testing.T) {
	orig := WorkflowRecord{ID: "1", Title: "T", Tags: []string{"a", "b"}}
	cp := orig.Clone()
	cp.Tags[0] = "changed"
	cp.Title = "other"

	if orig.Tags[0] != "a" {
		t.Errorf("clone shares tag storage: %v", orig.Tags)
	}
	if orig.Title != "T" {
		t.Errorf("clone changed original title: %q", orig.Title)
	}
}

func TestWorkflowRecordClone_NilTags(t *testing.T) {
	cp := WorkflowRecord{ID: "1"}.Clone()
	if cp.Tags == nil || len(cp.Tags) != 0 {
		t.Errorf("expected empty non-nil tags, got %#v", cp.Tags)
	}
}

func TestHasInlineImage(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"data:image/png;base64,AAAA", true},
		{"https://example.com/a.png", false},
		{"data", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := (WorkflowRecord{ImageURL: tt.url}).HasInlineImage(); got != tt.want {
			t.Errorf("HasInlineImage(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
