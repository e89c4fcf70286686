package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/valter-silva-au/flowfolio/internal/core"
	"github.com/valter-silva-au/flowfolio/internal/storage"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// stubCompleter returns a canned reply, or err when set.
type stubCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (s *stubCompleter) Complete(_ context.Context, _ core.CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

var errCompletionDown = errors.New("completion service down")

// installTestCatalog points the package-level services at a fresh catalog
// seeded with the default workflows and restores them after the test.
func installTestCatalog(t *testing.T, completer core.Completer) (core.CatalogStore, storage.Slot) {
	t.Helper()

	origCatalog, origEditor, origAssistant := Catalog, NewEditor, NewAssistant
	origConfirm, origCreator := ConfirmDelete, CreatorMode
	t.Cleanup(func() {
		Catalog, NewEditor, NewAssistant = origCatalog, origEditor, origAssistant
		ConfirmDelete, CreatorMode = origConfirm, origCreator
	})

	slot := storage.NewMemorySlot()
	store := core.NewCatalogStore(slot, core.CatalogStoreOptions{})
	store.Load(context.Background())

	Catalog = store
	NewEditor = func(existing *models.WorkflowRecord) core.CatalogEditor {
		return core.NewCatalogEditor(store, existing, core.EditorOptions{})
	}
	NewAssistant = nil
	if completer != nil {
		NewAssistant = func() core.AssistantSession {
			return core.NewAssistantSession(store, completer, core.AssistantOptions{})
		}
	}
	return store, slot
}

// resetFlags restores every flag of cmd (and its subcommands) to its
// default so package-level flag variables do not leak between tests.
func resetFlags(t *testing.T, cmds ...*cobra.Command) {
	t.Helper()
	reset := func() {
		for _, cmd := range cmds {
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				if sv, ok := f.Value.(pflag.SliceValue); ok {
					_ = sv.Replace(nil)
				} else {
					_ = f.Value.Set(f.DefValue)
				}
				f.Changed = false
			})
		}
	}
	reset()
	t.Cleanup(reset)
}

// runRoot executes the root command with args and returns stdout and stderr.
func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runRootWithInput(t, "", args...)
}

// runRootWithInput is runRoot with input available on stdin.
func runRootWithInput(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
