package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/flowfolio/internal/core"
)

var (
	wfTitle      string
	wfShort      string
	wfFull       string
	wfCategory   string
	wfComplexity string
	wfNodes      string
	wfImageURL   string
	wfImageFile  string
	wfTags       []string
	wfUntags     []string

	deleteYes bool
)

var workflowCmd = &cobra.Command{
	Use:     "workflow",
	Aliases: []string{"wf"},
	Short:   "Create, edit, and delete portfolio workflows",
}

var workflowCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a workflow to the portfolio",
	Long: `Add a workflow to the front of the portfolio.

Unset fields take the editor defaults: category "AI Agents", complexity
"Medium", 5 nodes, and a placeholder image. --title and --short are required.
--image-file embeds a local image as a data URI.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Catalog == nil || NewEditor == nil {
			return fmt.Errorf("catalog not initialized")
		}
		return runEditor(cmd, NewEditor(nil), "Created")
	},
}

var workflowEditCmd = &cobra.Command{
	Use:   "edit <workflow-id>",
	Short: "Edit a workflow in place",
	Long: `Edit the fields given as flags and keep the rest. The workflow keeps its
id and its position in the portfolio.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeWorkflowIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Catalog == nil || NewEditor == nil {
			return fmt.Errorf("catalog not initialized")
		}
		existing, err := Catalog.Get(args[0])
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("workflow %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("reading workflow %s: %w", args[0], err)
		}
		return runEditor(cmd, NewEditor(&existing), "Updated")
	},
}

var workflowDeleteCmd = &cobra.Command{
	Use:   "delete <workflow-id>",
	Short: "Remove a workflow from the portfolio",
	Long: `Remove a workflow after asking "Delete this workflow?". Declining leaves the
portfolio unchanged. --yes skips the question, as does confirm_delete: false
in .folioconfig.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeWorkflowIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Catalog == nil {
			return fmt.Errorf("catalog not initialized")
		}
		id := args[0]
		if _, err := Catalog.Get(id); err != nil {
			return fmt.Errorf("workflow %s not found", id)
		}

		confirmer := core.AlwaysConfirm
		if ConfirmDelete && !deleteYes {
			confirmer = core.PromptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
		}

		removed, err := Catalog.Remove(commandContext(cmd), id, confirmer)
		if !removed {
			fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled.")
			return nil
		}
		if err != nil && !errors.Is(err, core.ErrSaveFailed) {
			return fmt.Errorf("removing workflow %s: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted workflow %s\n", id)
		warnNotSaved(cmd, err)
		return nil
	},
}

// runEditor applies the flags that were set to the editor draft and
// submits it.
func runEditor(cmd *cobra.Command, editor core.CatalogEditor, verb string) error {
	flags := cmd.Flags()
	fields := []struct {
		flag  string
		field string
		value string
	}{
		{"title", core.FieldTitle, wfTitle},
		{"short", core.FieldShortDescription, wfShort},
		{"full", core.FieldFullDescription, wfFull},
		{"category", core.FieldCategory, wfCategory},
		{"complexity", core.FieldComplexity, wfComplexity},
		{"nodes", core.FieldNodesCount, wfNodes},
		{"image-url", core.FieldImageURL, wfImageURL},
	}
	for _, f := range fields {
		if !flags.Changed(f.flag) {
			continue
		}
		if err := editor.SetField(f.field, f.value); err != nil {
			return fmt.Errorf("--%s: %w", f.flag, err)
		}
	}

	if flags.Changed("image-file") {
		data, err := os.ReadFile(wfImageFile)
		if err != nil {
			return fmt.Errorf("reading --image-file: %w", err)
		}
		if err := <-editor.IngestImageFile(commandContext(cmd), data); err != nil {
			return fmt.Errorf("--image-file %s: %w", wfImageFile, err)
		}
	}

	for _, t := range wfUntags {
		editor.RemoveTag(t)
	}
	for _, t := range wfTags {
		editor.AddTag(t)
	}

	record, err := editor.Submit(commandContext(cmd))
	if err != nil && !errors.Is(err, core.ErrSaveFailed) {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s workflow %s: %s\n", verb, record.ID, record.Title)
	warnNotSaved(cmd, err)
	return nil
}

// warnNotSaved reports a failed catalog write on stderr. The store has
// already logged it; the command itself still succeeds.
func warnNotSaved(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
}

func registerEditorFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&wfTitle, "title", "", "Workflow title")
	f.StringVar(&wfShort, "short", "", "One-line summary")
	f.StringVar(&wfFull, "full", "", "Full case-study description")
	f.StringVar(&wfCategory, "category", "", "Category (AI Agents, Data Extraction, Business Ops, Marketing)")
	f.StringVar(&wfComplexity, "complexity", "", "Complexity (Simple, Medium, Advanced)")
	f.StringVar(&wfNodes, "nodes", "", "Number of nodes in the workflow")
	f.StringVar(&wfImageURL, "image-url", "", "Remote image URL")
	f.StringVar(&wfImageFile, "image-file", "", "Local image file to embed")
	f.StringArrayVar(&wfTags, "tag", nil, "Add a tag (repeatable)")
	f.StringArrayVar(&wfUntags, "untag", nil, "Remove a tag (repeatable)")
	_ = cmd.RegisterFlagCompletionFunc("category", completeCategories)
	_ = cmd.RegisterFlagCompletionFunc("complexity", completeComplexities)
}

func init() {
	registerEditorFlags(workflowCreateCmd)
	registerEditorFlags(workflowEditCmd)
	workflowDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking")

	workflowCmd.AddCommand(workflowCreateCmd, workflowEditCmd, workflowDeleteCmd)
	rootCmd.AddCommand(workflowCmd)
}

