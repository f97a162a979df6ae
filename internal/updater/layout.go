package updater

import (
	"fmt"
	"os"
	"path/filepath"
)

// Normalize returns the directory holding the real file tree of an extracted
// artifact: the only child of dir when that child is a directory, otherwise
// dir itself.
func Normalize(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrInstall, dir, err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}
