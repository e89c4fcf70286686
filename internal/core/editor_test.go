package core

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/valter-silva-au/flowfolio/internal/storage"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func newTestEditor(t *testing.T, existing *models.WorkflowRecord) (CatalogEditor, CatalogStore) {
	t.Helper()
	store, _ := newLoadedStore(t, storage.NewMemorySlot())
	return NewCatalogEditor(store, existing, EditorOptions{Now: fixedClock(1700000000000)}), store
}

func fillRequired(t *testing.T, e CatalogEditor) {
	t.Helper()
	if err := e.SetField(FieldTitle, "Invoice Parser"); err != nil {
		t.Fatalf("SetField title: %v", err)
	}
	if err := e.SetField(FieldShortDescription, "Extracts line items from PDFs."); err != nil {
		t.Fatalf("SetField short: %v", err)
	}
}

func TestCatalogEditor_CreateModeDefaults(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	d := e.Draft()

	if e.IsEditing() {
		t.Error("nil existing should start create mode")
	}
	if d.Category != models.CategoryAIAgents {
		t.Errorf("Category = %q, want AI Agents", d.Category)
	}
	if d.Complexity != models.ComplexityMedium {
		t.Errorf("Complexity = %q, want Medium", d.Complexity)
	}
	if d.NodesCount != 5 {
		t.Errorf("NodesCount = %d, want 5", d.NodesCount)
	}
	if d.ImageURL != PlaceholderImageURL {
		t.Errorf("ImageURL = %q, want placeholder", d.ImageURL)
	}
	if d.Tags == nil || len(d.Tags) != 0 {
		t.Errorf("Tags = %v, want empty list", d.Tags)
	}
}

func TestCatalogEditor_EditModeCopiesRecord(t *testing.T) {
	_, store := newTestEditor(t, nil)
	existing, _ := store.Get("2")

	e := NewCatalogEditor(store, &existing, EditorOptions{})
	e.AddTag("Extra")

	if !e.IsEditing() {
		t.Error("expected edit mode")
	}
	if e.Draft().ID != "2" {
		t.Errorf("draft id = %q, want 2", e.Draft().ID)
	}
	if slices.Contains(existing.Tags, "Extra") {
		t.Error("editing the draft mutated the caller's record")
	}
}

func TestCatalogEditor_SetField(t *testing.T) {
	e, _ := newTestEditor(t, nil)

	tests := []struct {
		name    string
		field   string
		value   string
		wantErr bool
		check   func(models.WorkflowRecord) bool
	}{
		{"title", FieldTitle, "T", false, func(r models.WorkflowRecord) bool { return r.Title == "T" }},
		{"full description", FieldFullDescription, "F", false, func(r models.WorkflowRecord) bool { return r.FullDescription == "F" }},
		{"image url", FieldImageURL, "https://x/y.png", false, func(r models.WorkflowRecord) bool { return r.ImageURL == "https://x/y.png" }},
		{"category", FieldCategory, "Marketing", false, func(r models.WorkflowRecord) bool { return r.Category == models.CategoryMarketing }},
		{"bad category", FieldCategory, "Robots", true, func(r models.WorkflowRecord) bool { return r.Category == models.CategoryMarketing }},
		{"complexity", FieldComplexity, "Advanced", false, func(r models.WorkflowRecord) bool { return r.Complexity == models.ComplexityAdvanced }},
		{"bad complexity", FieldComplexity, "Hard", true, func(r models.WorkflowRecord) bool { return r.Complexity == models.ComplexityAdvanced }},
		{"nodes", FieldNodesCount, " 42 ", false, func(r models.WorkflowRecord) bool { return r.NodesCount == 42 }},
		{"negative nodes clamp", FieldNodesCount, "-3", false, func(r models.WorkflowRecord) bool { return r.NodesCount == 0 }},
		{"non numeric nodes", FieldNodesCount, "many", true, func(r models.WorkflowRecord) bool { return r.NodesCount == 0 }},
		{"unknown field", "owner", "me", true, func(models.WorkflowRecord) bool { return true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.SetField(tt.field, tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidField) {
					t.Errorf("err = %v, want ErrInvalidField", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.check(e.Draft()) {
				t.Errorf("draft after SetField(%q, %q) = %+v", tt.field, tt.value, e.Draft())
			}
		})
	}
}

func TestCatalogEditor_Tags(t *testing.T) {
	e, _ := newTestEditor(t, nil)

	e.AddTag("  Gemini ")
	e.AddTag("Gemini")
	e.AddTag("   ")
	e.AddTag("Slack")
	e.RemoveTag("gemini")
	e.RemoveTag("Missing")

	if got := e.Draft().Tags; !slices.Equal(got, []string{"Gemini", "Slack"}) {
		t.Errorf("Tags = %v, want [Gemini Slack]", got)
	}

	e.RemoveTag("Gemini")
	if got := e.Draft().Tags; !slices.Equal(got, []string{"Slack"}) {
		t.Errorf("Tags = %v, want [Slack]", got)
	}
}

func TestCatalogEditor_Submit_CreateMintsTimeID(t *testing.T) {
	e, store := newTestEditor(t, nil)
	fillRequired(t, e)

	rec, err := e.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rec.ID != "1700000000000" {
		t.Errorf("ID = %q, want 1700000000000", rec.ID)
	}
	all := store.All()
	if all[0].ID != rec.ID {
		t.Errorf("new record should be first, got %v", ids(all))
	}

	// A second submit of the same draft updates rather than duplicates.
	if err := e.SetField(FieldTitle, "Invoice Parser v2"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if _, err := e.Submit(context.Background()); err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if store.Len() != 5 {
		t.Errorf("Len = %d, want 5", store.Len())
	}
}

func TestCatalogEditor_Submit_IDCollisionSteps(t *testing.T) {
	_, store := newTestEditor(t, nil)
	if err := store.Upsert(context.Background(), sampleRecord("1700000000000", models.CategoryMarketing)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	e := NewCatalogEditor(store, nil, EditorOptions{Now: fixedClock(1700000000000)})
	fillRequired(t, e)
	rec, err := e.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rec.ID != "1700000000001" {
		t.Errorf("ID = %q, want 1700000000001", rec.ID)
	}
}

func TestCatalogEditor_Submit_ConcurrentCreatesKeepEveryRecord(t *testing.T) {
	store, _ := newLoadedStore(t, storage.NewMemorySlot())
	const editors = 8

	var wg sync.WaitGroup
	ids := make([]string, editors)
	for i := range editors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := NewCatalogEditor(store, nil, EditorOptions{Now: fixedClock(1700000000000)})
			fillRequired(t, e)
			rec, err := e.Submit(context.Background())
			if err != nil {
				t.Errorf("Submit: %v", err)
				return
			}
			ids[i] = rec.ID
		}()
	}
	wg.Wait()

	if store.Len() != 4+editors {
		t.Errorf("Len = %d, want %d", store.Len(), 4+editors)
	}
	slices.Sort(ids)
	if len(slices.Compact(ids)) != editors {
		t.Errorf("minted ids are not unique: %v", ids)
	}
}

func TestCatalogEditor_Submit_EditKeepsID(t *testing.T) {
	_, store := newTestEditor(t, nil)
	existing, _ := store.Get("3")

	e := NewCatalogEditor(store, &existing, EditorOptions{Now: fixedClock(1)})
	if err := e.SetField(FieldTitle, "Lead Enrichment v2"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	rec, err := e.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rec.ID != "3" {
		t.Errorf("ID = %q, want 3", rec.ID)
	}
	all := store.All()
	if all[2].Title != "Lead Enrichment v2" || len(all) != 4 {
		t.Errorf("edit did not replace in place: %v", ids(all))
	}
}

func TestCatalogEditor_Submit_ValidationKeepsDraft(t *testing.T) {
	e, store := newTestEditor(t, nil)
	_ = e.SetField(FieldTitle, "   ")
	_ = e.SetField(FieldShortDescription, "")
	e.AddTag("keep")

	_, err := e.Submit(context.Background())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	for _, field := range []string{"title", "shortDescription"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q should name %s", err, field)
		}
	}
	if store.Len() != 4 {
		t.Errorf("store changed on validation failure: Len = %d", store.Len())
	}
	if d := e.Draft(); d.Title != "   " || !slices.Equal(d.Tags, []string{"keep"}) {
		t.Errorf("draft was not kept: %+v", d)
	}
}

func TestCatalogEditor_Submit_RejectsInvalidEnumsFromExistingRecord(t *testing.T) {
	_, store := newTestEditor(t, nil)
	bad := sampleRecord("9", "Robots")

	e := NewCatalogEditor(store, &bad, EditorOptions{})
	if _, err := e.Submit(context.Background()); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestCatalogEditor_IngestImageFile(t *testing.T) {
	e, _ := newTestEditor(t, nil)

	if err := <-e.IngestImageFile(context.Background(), pngHeader); err != nil {
		t.Fatalf("IngestImageFile: %v", err)
	}
	d := e.Draft()
	if !strings.HasPrefix(d.ImageURL, "data:image/png;base64,") {
		t.Errorf("ImageURL = %q, want a png data URI", d.ImageURL)
	}
	if !d.HasInlineImage() {
		t.Error("expected HasInlineImage")
	}
}

func TestCatalogEditor_IngestImageFile_RejectsNonImage(t *testing.T) {
	e, _ := newTestEditor(t, nil)

	for _, payload := range [][]byte{[]byte("just some text"), nil} {
		err := <-e.IngestImageFile(context.Background(), payload)
		if !errors.Is(err, ErrNotImage) {
			t.Errorf("err = %v, want ErrNotImage", err)
		}
	}
	if e.Draft().ImageURL != PlaceholderImageURL {
		t.Error("rejected payload changed the image")
	}
}

func TestCatalogEditor_IngestImageFile_DiscardedAfterReinitialize(t *testing.T) {
	e, _ := newTestEditor(t, nil)

	done := e.IngestImageFile(context.Background(), pngHeader)
	e.Initialize(nil)
	if err := <-done; err != nil {
		t.Fatalf("IngestImageFile: %v", err)
	}

	if got := e.Draft().ImageURL; got != PlaceholderImageURL {
		t.Errorf("stale image reached the new draft: %q", got)
	}
}

func TestCatalogEditor_IngestImageFile_CancelledContext(t *testing.T) {
	e, _ := newTestEditor(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := <-e.IngestImageFile(ctx, pngHeader); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
