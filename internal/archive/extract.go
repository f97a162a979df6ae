// Package archive unpacks downloaded tool artifacts and repacks installed trees.
package archive

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/yeka/zip"
)

// ErrExtraction is wrapped by every failure returned from Extract.
var ErrExtraction = errors.New("extraction failed")

type extractFunc func(src, dest, password string) error

// extractors maps a lower-cased file extension to its unpacker. Anything not
// listed is treated as a single opaque file.
var extractors = map[string]extractFunc{
	".zip": extractZip,
	".7z":  extractSevenZip,
}

// Extract unpacks src into dest, dispatching on the extension of src. The
// password is applied to encrypted entries when set.
func Extract(src, dest, password string) error {
	fn, ok := extractors[strings.ToLower(filepath.Ext(src))]
	if !ok {
		fn = copyRaw
	}
	if err := fn(src, dest, password); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExtraction, filepath.Base(src), err)
	}
	return nil
}

// DestDir returns the directory an artifact at src is extracted into: src
// without its extension, or src with an "-extracted" suffix when it has none.
func DestDir(src string) string {
	ext := filepath.Ext(src)
	if ext == "" {
		return src + "-extracted"
	}
	return strings.TrimSuffix(src, ext)
}

func extractZip(src, dest, password string) error {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("prepare extract dir: %w", err)
	}

	for _, file := range reader.File {
		target, err := entryTarget(dest, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", target, err)
			}
			continue
		}
		if file.IsEncrypted() {
			if password == "" {
				return fmt.Errorf("zip entry %s is encrypted and no password is configured", file.Name)
			}
			file.SetPassword(password)
		}
		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", file.Name, err)
		}
		err = writeEntry(target, rc, file.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractSevenZip(src, dest, password string) error {
	reader, err := sevenzip.OpenReaderWithPassword(src, password)
	if err != nil {
		return fmt.Errorf("open 7z: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("prepare extract dir: %w", err)
	}

	for _, file := range reader.File {
		target, err := entryTarget(dest, file.Name)
		if err != nil {
			return err
		}
		info := file.FileInfo()
		if info.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", target, err)
			}
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("open 7z entry %s: %w", file.Name, err)
		}
		sum := crc32.NewIEEE()
		err = writeEntry(target, io.TeeReader(rc, sum), info.Mode())
		rc.Close()
		if err != nil {
			return err
		}
		// Entries whose headers are not encrypted decrypt to garbage under a
		// wrong password instead of failing.
		if file.UncompressedSize > 0 && file.CRC32 != 0 && sum.Sum32() != file.CRC32 {
			return fmt.Errorf("7z entry %s: checksum mismatch (wrong password?)", file.Name)
		}
	}
	return nil
}

// copyRaw handles tools shipped as a bare file: dest is created and src is
// copied into it unchanged.
func copyRaw(src, dest, _ string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("prepare extract dir: %w", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	return writeEntry(filepath.Join(dest, filepath.Base(src)), in, info.Mode())
}

// entryTarget joins an archive entry name onto dest, rejecting names that
// would land outside of it.
func entryTarget(dest, name string) (string, error) {
	root := filepath.Clean(dest)
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %q escapes the extraction directory", name)
	}
	return target, nil
}

func writeEntry(target string, r io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("prepare file %s: %w", target, err)
	}
	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}
	return nil
}
