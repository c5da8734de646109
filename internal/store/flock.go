package store

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// migrationLockPath is the advisory lock file next to the database.
func migrationLockPath(dbPath string) string {
	return dbPath + ".migrate.lock"
}

// lockFile takes an exclusive flock on the migration lock file, blocking
// until a concurrent `timegate watch` or CLI call finishes migrating.
func lockFile(dbPath string) (*os.File, error) {
	lockPath := migrationLockPath(dbPath)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir for %s: %w", lockPath, err)
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // G304: derived from the resolved db path
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	return f, nil
}

// unlockFile releases and closes. Nil-safe.
func unlockFile(f *os.File) {
	if f == nil {
		return
	}
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	_ = f.Close()
}
