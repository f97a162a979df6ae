package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"toolupdater/internal/catalog"
	"toolupdater/internal/hooks"
	"toolupdater/internal/logx"
	"toolupdater/internal/paths"
	"toolupdater/internal/settings"
	"toolupdater/internal/updater"
)

var defaultSettings = settings.Defaults

// workEnv is everything a command needs once flags are parsed.
type workEnv struct {
	settings settings.Settings
	paths    paths.WorkPaths
	store    *catalog.Store
}

func loadEnv(cmd *cobra.Command) (workEnv, error) {
	s, err := settings.Load(cmd.Flags())
	if err != nil {
		return workEnv{}, err
	}
	wp, err := paths.Resolve(s.Root)
	if err != nil {
		return workEnv{}, err
	}
	wp = paths.Apply(wp, s)

	exists, err := paths.FileExists(wp.CatalogFile)
	if err != nil {
		return workEnv{}, fmt.Errorf("check catalog: %w", err)
	}
	if !exists {
		return workEnv{}, fmt.Errorf("catalog %s not found (use --catalog or --root)", wp.CatalogFile)
	}
	store, err := catalog.Open(wp.CatalogFile)
	if err != nil {
		return workEnv{}, err
	}
	return workEnv{settings: s, paths: wp, store: store}, nil
}

// logger builds the run logger. console may be nil to log to the file only.
func (e workEnv) logger(console io.Writer) (*log.Logger, io.Closer, error) {
	return logx.New(logx.Options{
		Level:   e.settings.Level(),
		Console: console,
		LogsDir: e.paths.LogsDir,
	})
}

type pipelineDeps struct {
	logger   *log.Logger
	hookOut  io.Writer
	reporter updater.Reporter
	options  updater.Options
}

func (e workEnv) pipeline(deps pipelineDeps) (*updater.Pipeline, error) {
	return updater.New(updater.Config{
		Catalog:    e.store,
		Fetcher:    updater.NewClient(e.settings.UserAgent),
		Hooks:      hooks.NewShellRunner(e.paths.Root, deps.hookOut, deps.hookOut),
		Root:       e.paths.Root,
		Staging:    e.paths.StagingDir,
		ReleaseAPI: e.settings.ReleaseAPI,
		Protected:  e.paths.Protected(),
		Options:    deps.options,
		Logger:     deps.logger,
		Reporter:   deps.reporter,
	})
}
