// Package updater resolves, downloads, unpacks and installs new versions of the
// tools listed in a catalog, one tool at a time.
package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"toolupdater/internal/archive"
	"toolupdater/internal/catalog"
	"toolupdater/internal/hooks"
)

// Catalog is the version store the pipeline reads specs from and records new
// versions into. *catalog.Store implements it.
type Catalog interface {
	Names() []string
	Lookup(name string) (catalog.ToolSpec, error)
	Persist(spec catalog.ToolSpec, version string) (catalog.ToolSpec, error)
}

// Options are the per-batch switches.
type Options struct {
	// Force downloads even when the published version is already installed.
	Force bool
	// Repack installs a single archive instead of the extracted tree.
	Repack bool
	// Clean empties the install folder before writing.
	Clean bool
	// StrictHooks fails a run when pre_update or post_unpack exit non-zero.
	StrictHooks bool
}

// DefaultOptions returns repack and folder clean enabled.
func DefaultOptions() Options {
	return Options{Repack: true, Clean: true}
}

// Config wires a Pipeline to its collaborators.
type Config struct {
	Catalog Catalog
	Fetcher Fetcher
	Hooks   hooks.Runner
	// Root is the directory relative install paths are resolved against.
	Root string
	// Staging is the scratch directory for downloads and extraction.
	Staging    string
	ReleaseAPI string
	// Protected paths make a folder clean fail instead of deleting them.
	Protected []string
	Options   Options
	Logger    *log.Logger
	Reporter  Reporter
}

// Run is the state of one tool's update.
type Run struct {
	ID           string
	Tool         string
	FromVersion  string
	Version      string
	URL          string
	DownloadPath string
	ExtractDir   string
	InstallDir   string
	State        State
	Err          error
}

// Pipeline runs the update state machine for catalog entries.
type Pipeline struct {
	id        string
	catalog   Catalog
	fetch     Fetcher
	hooks     hooks.Runner
	resolver  *Resolver
	installer installer
	staging   string
	opts      Options
	log       *log.Logger
	reporter  Reporter
}

// New validates cfg and returns a Pipeline with a fresh run ID.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("updater: catalog is required")
	}
	if cfg.Fetcher == nil {
		return nil, errors.New("updater: fetcher is required")
	}
	if cfg.Staging == "" {
		return nil, errors.New("updater: staging directory is required")
	}
	staging, err := filepath.Abs(cfg.Staging)
	if err != nil {
		return nil, fmt.Errorf("updater: resolve staging directory: %w", err)
	}

	runner := cfg.Hooks
	if runner == nil {
		runner = hooks.NewShellRunner(cfg.Root, nil, nil)
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	id := uuid.NewString()
	return &Pipeline{
		id:        id,
		catalog:   cfg.Catalog,
		fetch:     cfg.Fetcher,
		hooks:     runner,
		resolver:  NewResolver(cfg.Fetcher, cfg.ReleaseAPI),
		installer: installer{root: cfg.Root, staging: staging, protected: append([]string{staging}, cfg.Protected...)},
		staging:   staging,
		opts:      cfg.Options,
		log:       logger.With("run", id[:8]),
		reporter:  reporter,
	}, nil
}

// ID returns the run ID shared by every Run of this pipeline.
func (p *Pipeline) ID() string { return p.id }

type job struct {
	run  Run
	spec catalog.ToolSpec
	// root is the normalized extraction directory.
	root string
}

type step struct {
	state State
	fn    func(ctx context.Context, j *job) error
}

func (p *Pipeline) steps() []step {
	return []step{
		{StatePreHook, p.preHook},
		{StateResolving, p.resolve},
		{StateDownloading, p.download},
		{StateExtracting, p.extract},
		{StatePostUnpackHook, p.postUnpackHook},
		{StateInstalling, p.install},
		{StatePersisting, p.persist},
		{StatePostHook, p.postHook},
	}
}

// Update runs the full pipeline for one tool. The returned error is a
// *StageError naming the state the run failed in.
func (p *Pipeline) Update(ctx context.Context, name string) (Run, error) {
	j := &job{run: Run{ID: p.id, Tool: name, State: StatePending}}

	spec, err := p.catalog.Lookup(name)
	if err != nil {
		return j.run, p.fail(j, err)
	}
	j.spec = spec
	j.run.FromVersion = spec.LocalVersion

	for _, s := range p.steps() {
		p.enter(j, s.state)
		if err := s.fn(ctx, j); err != nil {
			return j.run, p.fail(j, err)
		}
	}
	p.enter(j, StateDone)
	p.log.Info("updated", "tool", name, "from", j.run.FromVersion, "version", j.run.Version)
	return j.run, nil
}

func (p *Pipeline) enter(j *job, state State) {
	j.run.State = state
	p.log.Debug("state", "tool", j.run.Tool, "state", state)
	p.reporter.Transition(j.run)
}

func (p *Pipeline) fail(j *job, err error) error {
	stageErr := &StageError{Tool: j.run.Tool, State: j.run.State, Err: err}
	j.run.Err = stageErr
	j.run.State = StateFailed
	if errors.Is(err, ErrNoUpdateAvailable) {
		p.log.Info("up to date", "tool", j.run.Tool, "version", j.spec.LocalVersion)
	} else {
		p.log.Error("update failed", "tool", j.run.Tool, "state", stageErr.State, "err", err)
	}
	p.reporter.Transition(j.run)
	return stageErr
}

func (p *Pipeline) preHook(ctx context.Context, j *job) error {
	return p.runHook(ctx, j, "pre_update", j.spec.Hooks.PreUpdate, p.opts.StrictHooks)
}

func (p *Pipeline) postUnpackHook(ctx context.Context, j *job) error {
	return p.runHook(ctx, j, "post_unpack", j.spec.Hooks.PostUnpack, p.opts.StrictHooks)
}

func (p *Pipeline) postHook(ctx context.Context, j *job) error {
	return p.runHook(ctx, j, "post_update", j.spec.Hooks.PostUpdate, false)
}

func (p *Pipeline) runHook(ctx context.Context, j *job, kind, command string, strict bool) error {
	if command == "" {
		return nil
	}
	p.log.Info("running hook", "tool", j.run.Tool, "hook", kind)
	status, err := p.hooks.Run(ctx, command)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrHook, kind, err)
	}
	if status != 0 {
		if strict {
			return fmt.Errorf("%w: %s exited with status %d", ErrHook, kind, status)
		}
		p.log.Warn("hook exited with non-zero status", "tool", j.run.Tool, "hook", kind, "status", status)
	}
	return nil
}

func (p *Pipeline) resolve(ctx context.Context, j *job) error {
	rel, err := p.resolver.Resolve(ctx, j.spec, p.opts.Force)
	if err != nil {
		return err
	}
	j.run.Version = rel.Version
	j.run.URL = rel.URL
	p.log.Info("new version", "tool", j.run.Tool, "version", rel.Version, "url", rel.URL)
	return nil
}

func (p *Pipeline) download(ctx context.Context, j *job) error {
	name, err := fileNameFromURL(j.run.URL)
	if err != nil {
		return err
	}
	if err := clearDir(p.staging); err != nil {
		return fmt.Errorf("%w: clear staging %s: %w", ErrInstall, p.staging, err)
	}
	dest := filepath.Join(p.staging, name)
	n, err := p.fetch.Download(ctx, j.run.URL, dest)
	if err != nil {
		return err
	}
	j.run.DownloadPath = dest
	p.log.Info("downloaded", "tool", j.run.Tool, "file", name, "size", humanize.Bytes(uint64(n)))
	return nil
}

func (p *Pipeline) extract(_ context.Context, j *job) error {
	dir := archive.DestDir(j.run.DownloadPath)
	if err := archive.Extract(j.run.DownloadPath, dir, j.spec.ArchivePassword); err != nil {
		return err
	}
	j.run.ExtractDir = dir
	return nil
}

func (p *Pipeline) install(_ context.Context, j *job) error {
	root, err := Normalize(j.run.ExtractDir)
	if err != nil {
		return err
	}
	j.root = root
	target, err := p.installer.install(root, j.spec, j.run.Version, p.opts)
	if err != nil {
		return err
	}
	j.run.InstallDir = target
	return nil
}

func (p *Pipeline) persist(_ context.Context, j *job) error {
	updated, err := p.catalog.Persist(j.spec, j.run.Version)
	if err != nil {
		return fmt.Errorf("persist version: %w", err)
	}
	j.spec = updated
	return nil
}
