package todo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrUnreadFile is returned by saves after a Load that could not read an
// existing task file. Writing then would replace records never seen.
var ErrUnreadFile = errors.New("task file could not be read, refusing to overwrite it")

// PersistenceError reports a task file that could not be read or written.
type PersistenceError struct {
	Op   string // "load", "save" or "backup"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// lockPath returns the advisory lock file guarding path.
func lockPath(path string) string {
	return path + ".lock"
}

// BackupPath returns where the original bytes of a damaged task file are kept.
func BackupPath(path string) string {
	return path + ".bak"
}

// withLock runs fn while holding the exclusive advisory lock for path,
// creating the parent directory and the lock file as needed.
func withLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create task dir: %w", err)
	}

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock task file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

// readFile reads path under a shared lock when a writer has left a lock
// file behind. Reads never create the lock file. Saves replace the file by
// rename, so an unlocked read still sees a whole document.
func readFile(path string) ([]byte, error) {
	if _, err := os.Stat(lockPath(path)); err != nil {
		return os.ReadFile(path)
	}

	lock := flock.New(lockPath(path))
	if err := lock.RLock(); err != nil {
		if !errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("lock task file: %w", err)
		}
		return os.ReadFile(path)
	}
	defer func() { _ = lock.Unlock() }()

	return os.ReadFile(path)
}

// writeFileAtomic replaces path with data using a synced temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
