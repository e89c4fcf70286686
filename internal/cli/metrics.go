package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/flowfolio/internal/observability"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display catalog and assistant metrics",
	Long: `Display aggregated metrics derived from the event log.

Metrics include workflows created, updated and deleted (with a per-category
breakdown of creations), catalog saves and save failures, load fallbacks,
and assistant replies and failures.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (observability may be disabled)")
		}

		since := strings.TrimSpace(metricsSince)
		if since == "" {
			since = "7d"
		}
		sinceTime, err := observability.ParseSince(since, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		// Table format.
		fmt.Fprintf(out, "Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(out, "  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(out, "  %-24s %d\n", "Workflows created:", metrics.WorkflowsCreated)
		fmt.Fprintf(out, "  %-24s %d\n", "Workflows updated:", metrics.WorkflowsUpdated)
		fmt.Fprintf(out, "  %-24s %d\n", "Workflows deleted:", metrics.WorkflowsDeleted)
		fmt.Fprintf(out, "  %-24s %d\n", "Catalog saves:", metrics.Saves)
		fmt.Fprintf(out, "  %-24s %d\n", "Save failures:", metrics.SaveFailures)
		fmt.Fprintf(out, "  %-24s %d\n", "Load fallbacks:", metrics.LoadFallbacks)
		fmt.Fprintf(out, "  %-24s %d\n", "Assistant replies:", metrics.AssistantReplies)
		fmt.Fprintf(out, "  %-24s %d\n", "Assistant failures:", metrics.AssistantFailures)

		if len(metrics.CreatedByCategory) > 0 {
			fmt.Fprintln(out, "\n  Created by category:")
			categories := make([]string, 0, len(metrics.CreatedByCategory))
			for c := range metrics.CreatedByCategory {
				categories = append(categories, c)
			}
			slices.Sort(categories)
			for _, c := range categories {
				fmt.Fprintf(out, "    %-20s %d\n", c+":", metrics.CreatedByCategory[c])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
