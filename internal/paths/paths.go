package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"toolupdater/internal/settings"
)

// WorkPaths captures the canonical locations of one updater working directory.
type WorkPaths struct {
	Root        string
	CatalogFile string
	StagingDir  string
	// LogsDir is empty when file logging is disabled.
	LogsDir string
}

// Resolve determines the working root using the optional --root flag or the
// current working directory when the flag is empty.
func Resolve(rootFlag string) (WorkPaths, error) {
	var (
		root string
		err  error
	)

	if rootFlag != "" {
		root, err = filepath.Abs(rootFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return WorkPaths{}, fmt.Errorf("resolve working root: %w", err)
	}

	return newWorkPaths(root), nil
}

func newWorkPaths(root string) WorkPaths {
	d := settings.Defaults()
	return WorkPaths{
		Root:        root,
		CatalogFile: filepath.Join(root, d.Catalog),
		StagingDir:  filepath.Join(root, d.Staging),
	}
}

// Apply overrides the default locations with the configured ones. Relative
// values are resolved against the working root.
func Apply(wp WorkPaths, s settings.Settings) WorkPaths {
	if catalog := strings.TrimSpace(s.Catalog); catalog != "" {
		wp.CatalogFile = resolveRootPath(wp.Root, catalog)
	}
	if staging := strings.TrimSpace(s.Staging); staging != "" {
		wp.StagingDir = resolveRootPath(wp.Root, staging)
	}
	if logs := strings.TrimSpace(s.LogDir); logs != "" {
		wp.LogsDir = resolveRootPath(wp.Root, logs)
	}
	return wp
}

// Protected lists the paths a folder clean must never delete.
func (p WorkPaths) Protected() []string {
	out := []string{p.CatalogFile, p.StagingDir}
	if p.LogsDir != "" {
		out = append(out, p.LogsDir)
	}
	return out
}

func resolveRootPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
