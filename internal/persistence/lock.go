package persistence

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// LockTimeout is how long Open waits for another process to release the
// data directory.
const LockTimeout = 2 * time.Second

const lockFilePerms = 0o600

type dirLock struct {
	file *os.File
}

// acquireLock takes an exclusive flock on path, retrying until timeout.
func acquireLock(path string, timeout time.Duration) (*dirLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFilePerms)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)

	const retryInterval = 10 * time.Millisecond

	for {
		err = unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &dirLock{file: file}, nil
		}

		if err != unix.EWOULDBLOCK || time.Now().After(deadline) {
			_ = file.Close()

			if err == unix.EWOULDBLOCK {
				return nil, fmt.Errorf("%w: %s", ErrLocked, path)
			}

			return nil, fmt.Errorf("flock %s: %w", path, err)
		}

		time.Sleep(retryInterval)
	}
}

// release unlocks, then closes. The lock file stays so concurrent openers
// always lock the same inode.
func (l *dirLock) release() error {
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()

	if unlockErr != nil {
		return fmt.Errorf("unlock: %w", unlockErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close lock file: %w", closeErr)
	}

	return nil
}
