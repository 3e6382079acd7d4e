package binary

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/microclaw/microclaw-install/internal/logging"
)

// WithTempDir creates a uniquely named directory under parent (os.TempDir
// when empty), runs fn with its path, and removes the directory afterwards.
// Removal runs on every exit path, including panics, and its errors are
// only logged so they never replace the error returned by fn.
func WithTempDir(parent, prefix string, logger logging.Logger, fn func(dir string) error) error {
	logger = logging.OrNoop(logger)
	if parent == "" {
		parent = os.TempDir()
	}

	dir := filepath.Join(parent, prefix+uuid.NewString())
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create temp parent: %w", err)
	}
	if err := os.Mkdir(dir, 0o700); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Debug("temp dir cleanup failed", "dir", dir, "error", err)
		}
	}()

	return fn(dir)
}

// FindExecutable walks root in lexical order and returns the first regular
// file whose base name is name.
func FindExecutable(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search %s: %w", root, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, name)
	}
	return found, nil
}

// InstallFile copies src to installDir/name with mode 0755, replacing any
// existing file. The copy is written to a temporary file in installDir and
// renamed into place so a failed copy never leaves a truncated binary.
func InstallFile(src, installDir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid executable name: %q", name)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(installDir, "."+name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("copy executable: %w", err)
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("set executable: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	dest := filepath.Join(installDir, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("replace %s: %w", dest, err)
	}

	return dest, nil
}
