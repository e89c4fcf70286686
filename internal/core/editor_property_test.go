package core

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/valter-silva-au/flowfolio/internal/storage"
	"pgregory.net/rapid"
)

// Any sequence of AddTag and RemoveTag calls leaves a duplicate-free,
// trimmed tag list.
func TestProperty_EditorTagsStayUnique(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store := NewCatalogStore(storage.NewMemorySlot(), CatalogStoreOptions{})
		e := NewCatalogEditor(store, nil, EditorOptions{})

		pool := []string{"n8n", " n8n", "n8n ", "Gemini", "Slack", "", "  ", "slack"}
		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			tag := rapid.SampledFrom(pool).Draw(rt, fmt.Sprintf("tag_%d", i))
			if rapid.IntRange(0, 3).Draw(rt, fmt.Sprintf("op_%d", i)) == 0 {
				e.RemoveTag(tag)
			} else {
				e.AddTag(tag)
			}
		}

		seen := make(map[string]bool)
		for _, tag := range e.Draft().Tags {
			if seen[tag] {
				rt.Fatalf("duplicate tag %q in %v", tag, e.Draft().Tags)
			}
			if tag == "" || tag != strings.TrimSpace(tag) {
				rt.Fatalf("untrimmed tag %q", tag)
			}
			seen[tag] = true
		}
	})
}

// Submitting a draft whose title or short description is blank never
// changes the catalog.
func TestProperty_EditorBlankSubmitNeverMutates(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store := NewCatalogStore(storage.NewMemorySlot(), CatalogStoreOptions{})
		store.Load(context.Background())
		before := store.All()

		var e CatalogEditor
		if rapid.Bool().Draw(rt, "editExisting") {
			existing, _ := store.Get(rapid.SampledFrom([]string{"1", "2", "3", "4"}).Draw(rt, "id"))
			e = NewCatalogEditor(store, &existing, EditorOptions{})
		} else {
			e = NewCatalogEditor(store, nil, EditorOptions{})
		}

		blank := rapid.StringMatching(`[ \t\n]{0,4}`)
		title := rapid.String().Draw(rt, "title")
		short := rapid.String().Draw(rt, "short")
		switch rapid.IntRange(0, 2).Draw(rt, "which") {
		case 0:
			title = blank.Draw(rt, "blankTitle")
		case 1:
			short = blank.Draw(rt, "blankShort")
		default:
			title = blank.Draw(rt, "blankTitle")
			short = blank.Draw(rt, "blankShort")
		}
		_ = e.SetField(FieldTitle, title)
		_ = e.SetField(FieldShortDescription, short)

		if _, err := e.Submit(context.Background()); !errors.Is(err, ErrValidation) {
			rt.Fatalf("Submit err = %v, want ErrValidation", err)
		}
		if !reflect.DeepEqual(store.All(), before) {
			rt.Fatalf("catalog changed after a rejected submit")
		}
	})
}
