package updater

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"toolupdater/internal/archive"
	"toolupdater/internal/catalog"
)

type installer struct {
	root    string
	staging string
	// protected paths are never removed by a folder clean.
	protected []string
}

// ResolveInstallPath makes folder absolute, relative to root when needed.
func ResolveInstallPath(root, folder string) (string, error) {
	if filepath.IsAbs(folder) {
		return filepath.Clean(folder), nil
	}
	joined := filepath.Join(root, folder)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("resolve install path %s: %w", joined, err)
	}
	return abs, nil
}

// RepackName is the file name of the archive produced for a repacked install.
func RepackName(tool, version string) string {
	return fmt.Sprintf("%s - %s%s", fileNameSafe.Replace(tool), fileNameSafe.Replace(version), archive.PackExt)
}

// fileNameSafe replaces characters that cannot appear in a file name.
var fileNameSafe = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

// install places the tree at src into the tool's folder. With repack set the
// tree is compressed into one archive first and only that file is installed.
func (in installer) install(src string, spec catalog.ToolSpec, version string, opts Options) (string, error) {
	target, err := ResolveInstallPath(in.root, spec.InstallPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInstall, err)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrInstall, target, err)
	}

	if opts.Clean {
		for _, p := range in.protected {
			if p != "" && within(target, p) {
				return "", fmt.Errorf("%w: refusing to clean %s, it contains %s", ErrInstall, target, p)
			}
		}
		if err := clearDir(target); err != nil {
			return "", fmt.Errorf("%w: clean %s: %w", ErrInstall, target, err)
		}
	}

	if !opts.Repack {
		if err := copyTree(src, target); err != nil {
			return "", fmt.Errorf("%w: copy into %s: %w", ErrInstall, target, err)
		}
		return target, nil
	}

	name := RepackName(spec.Name, version)
	packed := filepath.Join(in.staging, name)
	if err := archive.Pack(src, packed); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInstall, err)
	}
	if err := copyFile(packed, filepath.Join(target, name)); err != nil {
		return "", fmt.Errorf("%w: copy %s: %w", ErrInstall, name, err)
	}
	return target, nil
}

// within reports whether p is dir or lies beneath it.
func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel))
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dest, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dest, source); err != nil {
		dest.Close()
		return err
	}
	return dest.Close()
}
