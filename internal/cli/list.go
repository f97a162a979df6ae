package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"toolupdater/internal/catalog"
	"toolupdater/internal/tui"
	"toolupdater/internal/updater"
)

type listEntry struct {
	Name         string `json:"name"`
	Source       string `json:"source,omitempty"`
	Location     string `json:"url,omitempty"`
	LocalVersion string `json:"local_version,omitempty"`
	Folder       string `json:"folder,omitempty"`
	Error        string `json:"error,omitempty"`
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tools in the catalog",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	entries := make([]listEntry, 0, len(env.store.Names()))
	for _, name := range env.store.Names() {
		spec, err := env.store.Lookup(name)
		if err != nil {
			entries = append(entries, listEntry{Name: name, Error: err.Error()})
			continue
		}
		entries = append(entries, listEntry{
			Name:         spec.Name,
			Source:       spec.Source.String(),
			Location:     spec.Location,
			LocalVersion: spec.LocalVersion,
			Folder:       installFolder(env, spec),
		})
	}

	if outputJSON {
		return writeJSON(cmd, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(catalog is empty)")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tSOURCE\tLOCAL\tFOLDER")
	for _, e := range entries {
		if e.Error != "" {
			fmt.Fprintf(w, "%s\t-\t-\terror: %s\n", e.Name, e.Error)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Source, tui.NonEmptyOrDash(e.LocalVersion), e.Folder)
	}
	return w.Flush()
}

func installFolder(env workEnv, spec catalog.ToolSpec) string {
	folder, err := updater.ResolveInstallPath(env.paths.Root, spec.InstallPath)
	if err != nil {
		return spec.InstallPath
	}
	return folder
}
