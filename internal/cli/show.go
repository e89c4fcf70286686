package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/flowfolio/internal/core"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

var showCmd = &cobra.Command{
	Use:   "show <workflow-id>",
	Short: "Show a workflow case study",
	Long: `Show the full case study for a workflow: descriptions, category,
complexity with its severity indicator, node count, image, and tags.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeWorkflowIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Catalog == nil {
			return fmt.Errorf("catalog not initialized")
		}

		r, err := Catalog.Get(args[0])
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("workflow %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("reading workflow %s: %w", args[0], err)
		}

		printWorkflowDetail(cmd.OutOrStdout(), r)
		return nil
	},
}

// printWorkflowDetail renders the detail view of a workflow.
func printWorkflowDetail(w io.Writer, r models.WorkflowRecord) {
	fmt.Fprintf(w, "%s\n", r.Title)
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", len(r.Title)))
	fmt.Fprintf(w, "  %-12s %s\n", "ID:", r.ID)
	fmt.Fprintf(w, "  %-12s %s\n", "Category:", r.Category)
	fmt.Fprintf(w, "  %-12s %s (%s)\n", "Complexity:", r.Complexity, r.Complexity.Severity())
	fmt.Fprintf(w, "  %-12s %d\n", "Nodes:", r.NodesCount)
	fmt.Fprintf(w, "  %-12s %s\n", "Image:", displayImage(r))
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "  %-12s %s\n", "Tags:", strings.Join(r.Tags, ", "))
	}
	fmt.Fprintf(w, "\n%s\n", r.ShortDescription)
	if r.FullDescription != "" {
		fmt.Fprintf(w, "\n%s\n", r.FullDescription)
	}
}

// displayImage keeps inline data URIs from flooding the terminal.
func displayImage(r models.WorkflowRecord) string {
	if r.HasInlineImage() {
		mime, _, _ := strings.Cut(strings.TrimPrefix(r.ImageURL, "data:"), ";")
		return fmt.Sprintf("(inline %s, %d bytes)", mime, len(r.ImageURL))
	}
	return r.ImageURL
}

func init() {
	rootCmd.AddCommand(showCmd)
}
