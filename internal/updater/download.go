package updater

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// fileNameFromURL returns the last path segment of rawURL, ignoring the query
// and fragment.
func fileNameFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: parse download url: %w", ErrResolution, err)
	}
	base := path.Base(parsed.Path)
	switch base {
	case "", ".", "/", "..":
		return "", fmt.Errorf("%w: infer file name from url %s", ErrResolution, rawURL)
	}
	return base, nil
}

// clearDir removes everything inside dir, creating dir when it is missing.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
