package mirror

import (
	"errors"
	"time"
)

var (
	ErrSourceMissing   = errors.New("source folder does not exist")
	ErrReplicaNotDir   = errors.New("replica path exists and is not a directory")
	ErrReplicaLocked   = errors.New("replica locked by another process")
	ErrInvalidInterval = errors.New("interval must be positive")
)

// PassResult summarizes one reconciliation pass
type PassResult struct {
	ID           string
	DirsCreated  int
	FilesCopied  int
	BytesCopied  int64
	FilesDeleted int
	DirsDeleted  int
	Skipped      int
	Errors       []error
	Duration     time.Duration
}

// HasChanges reports whether the pass touched the replica
func (r *PassResult) HasChanges() bool {
	return r.DirsCreated+r.FilesCopied+r.FilesDeleted+r.DirsDeleted > 0
}

// Err joins every entry failure of the pass, nil when there were none
func (r *PassResult) Err() error {
	return errors.Join(r.Errors...)
}

func (r *PassResult) fail(err error) {
	r.Errors = append(r.Errors, err)
}
