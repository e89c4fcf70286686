package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// completeWorkflowIDs lists workflow ids with their titles as descriptions.
func completeWorkflowIDs(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if Catalog == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var ids []string
	for _, r := range Catalog.All() {
		if toComplete == "" || strings.HasPrefix(r.ID, toComplete) {
			ids = append(ids, r.ID+"\t"+r.Title)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeCategories returns the category values.
func completeCategories(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = string(c)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeComplexities returns the complexity values with their severity.
func completeComplexities(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(models.Complexities))
	for i, c := range models.Complexities {
		out[i] = string(c) + "\t" + c.Severity() + " severity"
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeExportFormats returns the export formats.
func completeExportFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"ts\tTypeScript data module (data.ts)",
		"json\tJSON array (workflows.json)",
		"yaml\tYAML list (workflows.yaml)",
	}, cobra.ShellCompDirectiveNoFileComp
}
