package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var outputJSON bool

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "toolupdater",
		Short:         "Keep a catalog of portable tools up to date",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := defaultSettings()
	flags := cmd.PersistentFlags()
	flags.String("root", "", "Working directory (default: current directory)")
	flags.String("catalog", defaults.Catalog, "Tool catalog file, relative to the root")
	flags.String("staging", defaults.Staging, "Staging directory for downloads, relative to the root")
	flags.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("log-dir", "", "Also write a timestamped log file into this directory")
	flags.String("release-api", defaults.ReleaseAPI, "Base URL of the GitHub release API")
	flags.String("user-agent", defaults.UserAgent, "User-Agent sent with every request")
	flags.BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
