package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is the in-memory catalog backed by a single file. Every version bump
// rewrites the whole file immediately.
type Store struct {
	path    string
	codec   codec
	entries []entry
	index   map[string]int
}

// Open reads the catalog at path. The codec is chosen by file extension:
// .yaml/.yml files use YAML, everything else is parsed as INI.
func Open(path string) (*Store, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("catalog %s not found", path)
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	c := codecFor(path)
	entries, err := c.decode(contents)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.name) == "" {
			return nil, fmt.Errorf("catalog %s: entry %d has no name", path, i+1)
		}
		if _, dup := index[e.name]; dup {
			return nil, fmt.Errorf("catalog %s: duplicate tool %q", path, e.name)
		}
		index[e.name] = i
	}

	return &Store{
		path:    path,
		codec:   c,
		entries: entries,
		index:   index,
	}, nil
}

// Path returns the file the store reads from and writes to.
func (s *Store) Path() string {
	return s.path
}

// Names lists tool names in catalog order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.name)
	}
	return names
}

// Lookup decodes and validates the named tool.
func (s *Store) Lookup(name string) (ToolSpec, error) {
	i, ok := s.index[name]
	if !ok {
		return ToolSpec{}, fmt.Errorf("%w: unknown tool %q", ErrConfig, name)
	}
	return s.entries[i].decode()
}

// Persist records version as the tool's local version and rewrites the
// catalog. The returned spec carries the new version; spec itself is not
// modified. On a write failure the in-memory catalog is left unchanged.
func (s *Store) Persist(spec ToolSpec, version string) (ToolSpec, error) {
	i, ok := s.index[spec.Name]
	if !ok {
		return spec, fmt.Errorf("%w: unknown tool %q", ErrConfig, spec.Name)
	}

	updated := make([]entry, len(s.entries))
	copy(updated, s.entries)
	e := s.entries[i].clone()
	e.fields[keyLocalVersion] = version
	updated[i] = e

	data, err := s.codec.encode(updated)
	if err != nil {
		return spec, err
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return spec, err
	}

	s.entries = updated
	spec.LocalVersion = version
	return spec, nil
}

func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write catalog temp: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod catalog temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close catalog temp: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}
