package mirror

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/openmined/syftmirror/internal/utils"
)

// ReplicaLock is an advisory lock guaranteeing a single writer per replica.
// The lock file lives in lockDir, never inside the replica, where the
// mirror would delete it as an entry missing from the source.
type ReplicaLock struct {
	lockDir string
	flock   *flock.Flock
}

func NewReplicaLock(lockDir, replicaRoot string) *ReplicaLock {
	sum := sha256.Sum256([]byte(filepath.Clean(replicaRoot)))
	name := "replica-" + hex.EncodeToString(sum[:8]) + ".lock"
	return &ReplicaLock{
		lockDir: lockDir,
		flock:   flock.New(filepath.Join(lockDir, name)),
	}
}

func (l *ReplicaLock) Path() string {
	return l.flock.Path()
}

func (l *ReplicaLock) Lock() error {
	if err := utils.EnsureDir(l.lockDir); err != nil {
		return fmt.Errorf("failed to create lock dir %s: %w", l.lockDir, err)
	}

	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock replica: %w", err)
	}
	if !locked {
		return ErrReplicaLocked
	}
	return nil
}

// Unlock releases the lock and leaves the file in place. Removing it would let
// a process still holding the old inode and one creating a new file both
// believe they own the replica.
func (l *ReplicaLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock replica: %w", err)
	}
	return nil
}
