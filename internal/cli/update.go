package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"toolupdater/internal/tui"
	"toolupdater/internal/updater"
)

var (
	updateForce         bool
	updateDisableRepack bool
	updateDisableClean  bool
	updateNoProgress    bool
)

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [tool...]",
		Short: "Update the named tools, or every tool in the catalog",
		Long: "Resolve the latest version of each tool, then download, unpack and install it " +
			"when it differs from the recorded version. A failing tool never stops the batch.",
		RunE: runUpdate,
	}

	cmd.Flags().BoolVarP(&updateForce, "force", "f", false, "Download even when the recorded version is current")
	cmd.Flags().BoolVar(&updateDisableRepack, "disable-repack", false, "Install the unpacked tree instead of a single archive")
	cmd.Flags().BoolVar(&updateDisableClean, "disable-folder-clean", false, "Keep existing files in the install folder")
	cmd.Flags().BoolVar(&updateNoProgress, "no-progress", false, "Disable the interactive progress table")
	cmd.Flags().Bool("strict-hooks", false, "Fail a tool when its pre_update or post_unpack hook exits non-zero")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	outWriter := cmd.OutOrStdout()
	mode := tui.DetectMode(outWriter, updateNoProgress, outputJSON)

	var console, hookOut io.Writer = cmd.ErrOrStderr(), cmd.ErrOrStderr()
	if mode == tui.ModeTUI {
		console, hookOut = nil, io.Discard
	}
	logger, closer, err := env.logger(console)
	if err != nil {
		return err
	}
	defer closer.Close()

	names := args
	if len(names) == 0 {
		names = env.store.Names()
	}

	opts := updater.Options{
		Force:       updateForce,
		Repack:      !updateDisableRepack,
		Clean:       !updateDisableClean,
		StrictHooks: env.settings.StrictHooks,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var summary updater.Summary
	if mode == tui.ModeTUI {
		fmt.Fprintf(outWriter, "Catalog: %s\n", env.paths.CatalogFile)
		model := tui.NewUpdateModel("Updating tools", names)
		err := tui.RunWithWork(outWriter, model, func(send func(tea.Msg)) {
			p, perr := env.pipeline(pipelineDeps{
				logger:   logger,
				hookOut:  hookOut,
				reporter: tui.NewPipelineReporter(send),
				options:  opts,
			})
			if perr != nil {
				send(tui.ErrorMsg{Err: perr})
				return
			}
			summary = p.RunBatch(ctx, names)
		})
		if err != nil {
			cancel()
			return err
		}
	} else {
		p, err := env.pipeline(pipelineDeps{logger: logger, hookOut: hookOut, options: opts})
		if err != nil {
			return err
		}
		summary = p.RunBatch(ctx, names)
	}

	if mode == tui.ModeJSON {
		return writeJSON(cmd, summary)
	}
	if mode == tui.ModeTUI {
		printUpdateCounts(outWriter, summary)
	} else {
		writeUpdateTable(cmd, summary)
	}
	writeUpdateFailures(cmd, summary)
	return nil
}
