package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

var listCategory string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List portfolio workflows",
	Long: `List the workflows in the portfolio in display order.

Filter to a single category with --category (e.g. --category "Business Ops").
Output is formatted as a table with columns: ID, Complexity, Category, Title.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Catalog == nil {
			return fmt.Errorf("catalog not initialized")
		}

		category := listCategory
		if category == "" {
			category = models.AllCategories
		}
		if category != models.AllCategories {
			if _, ok := models.ParseCategory(category); !ok {
				return fmt.Errorf("unknown category %q (valid: %s)", category, joinedCategoryNames())
			}
		}

		var records []models.WorkflowRecord
		for r := range Catalog.FilteredBy(category) {
			records = append(records, r)
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No workflows found.")
			return nil
		}
		printWorkflowTable(out, records)
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the category filters in use",
	Long:  `List "All" followed by every category present in the catalog, in first-seen order.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Catalog == nil {
			return fmt.Errorf("catalog not initialized")
		}
		for _, c := range Catalog.Categories() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

// printWorkflowTable prints one row per workflow.
func printWorkflowTable(w io.Writer, records []models.WorkflowRecord) {
	fmt.Fprintf(w, "%-15s %-10s %-16s %s\n", "ID", "LEVEL", "CATEGORY", "TITLE")
	fmt.Fprintf(w, "%-15s %-10s %-16s %s\n", "--", "-----", "--------", "-----")
	for _, r := range records {
		fmt.Fprintf(w, "%-15s %-10s %-16s %s\n", r.ID, r.Complexity, r.Category, r.Title)
	}
}

func joinedCategoryNames() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "Only list workflows in this category")
	_ = listCmd.RegisterFlagCompletionFunc("category", completeCategories)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(categoriesCmd)
}
