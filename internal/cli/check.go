package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"toolupdater/internal/tui"
	"toolupdater/internal/updater"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [tool...]",
		Short: "Report which tools have a newer version published, without downloading",
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := env.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	p, err := env.pipeline(pipelineDeps{logger: logger, options: updater.DefaultOptions()})
	if err != nil {
		return err
	}

	var status *tui.StatusWriter
	if !outputJSON && tui.IsTerminal(cmd.ErrOrStderr()) {
		status = tui.NewStatusWriter(cmd.ErrOrStderr())
		status.Update("checking published versions")
	}
	results := p.Check(cmd.Context(), args)
	if status != nil {
		status.Stop()
	}

	if outputJSON {
		return writeJSON(cmd, results)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tLOCAL\tLATEST\tSTATUS")
	available := 0
	for _, r := range results {
		state := "up-to-date"
		switch {
		case r.Error != "":
			state = "error: " + r.Error
		case r.Available:
			state = "available"
			available++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Tool, tui.NonEmptyOrDash(r.Local), tui.NonEmptyOrDash(r.Latest), state)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d tools have an update available\n", available, len(results))
	return nil
}
