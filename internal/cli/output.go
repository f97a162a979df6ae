package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"toolupdater/internal/tui"
	"toolupdater/internal/updater"
)

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func writeUpdateTable(cmd *cobra.Command, summary updater.Summary) {
	if len(summary.Results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(no tools to update)")
		return
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tRESULT\tLOCAL\tLATEST\tFOLDER")
	for _, res := range summary.Results {
		fields := tui.ResultFields(res)
		folder := res.InstallDir
		if res.Outcome == updater.OutcomeFailed {
			folder = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			res.Tool,
			res.Outcome,
			fields[tui.ColLocal],
			fields[tui.ColLatest],
			tui.NonEmptyOrDash(folder),
		)
	}
	w.Flush()
	printUpdateCounts(cmd.OutOrStdout(), summary)
}

func printUpdateCounts(out io.Writer, summary updater.Summary) {
	fmt.Fprintf(out, "\n%d updated, %d up to date, %d failed\n",
		summary.Count(updater.OutcomeUpdated),
		summary.Count(updater.OutcomeUpToDate),
		summary.Count(updater.OutcomeFailed),
	)
}

func writeUpdateFailures(cmd *cobra.Command, summary updater.Summary) {
	if summary.Count(updater.OutcomeFailed) == 0 {
		return
	}
	out := cmd.ErrOrStderr()
	fmt.Fprintln(out, "\nFailures:")
	for _, res := range summary.Results {
		if res.Outcome != updater.OutcomeFailed {
			continue
		}
		fmt.Fprintf(out, "  %s (%s): %s\n", res.Tool, tui.NonEmptyOrDash(res.FailedAt), res.Error)
	}
}
