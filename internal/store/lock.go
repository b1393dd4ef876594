package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const lockFileName = "monfari-repo-lock"

// lockFile is the repository's single-writer guard: a sentinel file holding
// the owning process id. A crashed process leaves it behind, and clearing
// that is deliberately manual.
type lockFile struct {
	path string
}

func acquireLock(path string) (*lockFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%w (lock file %s)", ErrAlreadyLocked, path)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	_, err = fmt.Fprintf(f, "%d", os.Getpid())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return &lockFile{path: path}, nil
}

// release removes the lock after verifying it still belongs to this process.
func (l *lockFile) release() error {
	content, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if string(content) != fmt.Sprintf("%d", os.Getpid()) {
		return fmt.Errorf("release lock: %s is owned by pid %s, not this process", l.path, content)
	}
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
