package mirror

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// PassRunner runs one complete reconciliation pass.
type PassRunner interface {
	Reconcile(passID string) (*PassResult, error)
}

// Reconciler makes a replica tree an exact mirror of a source tree.
// It keeps no state between passes; every pass re-reads both trees.
type Reconciler struct {
	sourceRoot  string
	replicaRoot string
	comparator  Comparator
	log         *slog.Logger
}

type ReconcilerOption func(*Reconciler)

func WithComparator(c Comparator) ReconcilerOption {
	return func(r *Reconciler) {
		r.comparator = c
	}
}

func WithLogger(log *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		r.log = log
	}
}

func NewReconciler(sourceRoot, replicaRoot string, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		sourceRoot:  sourceRoot,
		replicaRoot: replicaRoot,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.comparator == nil {
		r.comparator, _ = NewDigestComparator("")
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	return r
}

// Reconcile runs a single pass. The returned result is never nil.
// ErrSourceMissing means the replica was left untouched. Entry level failures
// do not stop the walk; they are collected and returned joined.
func (r *Reconciler) Reconcile(passID string) (*PassResult, error) {
	if passID == "" {
		passID = uuid.NewString()
	}

	result := &PassResult{ID: passID}
	log := r.log.With("pass", passID)
	log.Info("sync pass start", "source", r.sourceRoot, "replica", r.replicaRoot)

	start := time.Now()
	err := r.run(log, result)
	result.Duration = time.Since(start)

	if err != nil {
		log.Error("sync pass aborted", "error", err, "duration", result.Duration)
		return result, err
	}

	attrs := []any{
		"dirsCreated", result.DirsCreated,
		"filesCopied", result.FilesCopied,
		"bytesCopied", humanize.Bytes(uint64(result.BytesCopied)),
		"filesDeleted", result.FilesDeleted,
		"dirsDeleted", result.DirsDeleted,
		"skipped", result.Skipped,
		"duration", result.Duration,
	}
	if err := result.Err(); err != nil {
		log.Warn("sync pass done with errors", append(attrs, "errors", len(result.Errors))...)
		return result, err
	}
	log.Info("sync pass done", attrs...)
	return result, nil
}

func (r *Reconciler) run(log *slog.Logger, result *PassResult) error {
	info, err := os.Stat(r.sourceRoot)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return fmt.Errorf("%w: %s", ErrSourceMissing, r.sourceRoot)
	} else if err != nil {
		return fmt.Errorf("source stat: %w", err)
	}

	info, err = os.Stat(r.replicaRoot)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(r.replicaRoot, 0o755); err != nil {
			return fmt.Errorf("create replica: %w", err)
		}
		result.DirsCreated++
		log.Info("replica folder created", "path", r.replicaRoot)
	case err != nil:
		return fmt.Errorf("replica stat: %w", err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s", ErrReplicaNotDir, r.replicaRoot)
	}

	p := &pass{
		log:        log,
		comparator: r.comparator,
		result:     result,
	}
	p.syncDir(r.sourceRoot, r.replicaRoot)
	return nil
}

// pass carries the per-pass state through the recursive walk
type pass struct {
	log        *slog.Logger
	comparator Comparator
	result     *PassResult
}

// syncDir reconciles one directory level, recursing into subdirectories
// after the files at this level and before the deletions at this level.
func (p *pass) syncDir(src, dst string) {
	srcEntries, err := p.listSource(src)
	if err != nil {
		p.failed("list source", err)
		return
	}
	dstEntries, err := listReplica(dst)
	if err != nil {
		p.failed("list replica", err)
		return
	}

	for _, name := range mapset.Sorted(srcEntries.files) {
		p.syncFile(filepath.Join(src, name), filepath.Join(dst, name), name, dstEntries)
	}

	for _, name := range mapset.Sorted(srcEntries.dirs) {
		dstSub := filepath.Join(dst, name)
		if p.ensureDir(dstSub, name, dstEntries) {
			p.syncDir(filepath.Join(src, name), dstSub)
		}
	}

	staleFiles := dstEntries.files.Union(dstEntries.other).Difference(srcEntries.files)
	for _, name := range mapset.Sorted(staleFiles) {
		p.deleteFile(filepath.Join(dst, name))
	}

	staleDirs := dstEntries.dirs.Difference(srcEntries.dirs)
	for _, name := range mapset.Sorted(staleDirs) {
		p.deleteDir(filepath.Join(dst, name))
	}
}

func (p *pass) syncFile(src, dst, name string, dstEntries *dirEntries) {
	if dstEntries.dirs.Contains(name) {
		// settled here either way, the reverse pass must not retry it
		dstEntries.dirs.Remove(name)
		if !p.deleteDir(dst) {
			return
		}
	}

	// only a regular file can be compared, anything else is overwritten
	if dstEntries.files.Contains(name) {
		equal, err := p.comparator.Equal(src, dst)
		if err != nil {
			p.failed("compare", err)
			return
		}
		if equal {
			return
		}
	}

	n, err := copyFile(src, dst)
	if err != nil {
		p.failed("copy", err)
		return
	}
	p.result.FilesCopied++
	p.result.BytesCopied += n
	p.log.Info("file copied", "source", src, "replica", dst, "size", humanize.Bytes(uint64(n)))
}

func (p *pass) ensureDir(dst, name string, dstEntries *dirEntries) bool {
	if dstEntries.dirs.Contains(name) {
		return true
	}

	if dstEntries.files.Contains(name) || dstEntries.other.Contains(name) {
		dstEntries.files.Remove(name)
		dstEntries.other.Remove(name)
		if !p.deleteFile(dst) {
			return false
		}
	}

	if err := os.Mkdir(dst, 0o755); err != nil {
		p.failed("create dir", err)
		return false
	}
	p.result.DirsCreated++
	p.log.Info("dir created", "path", dst)
	return true
}

func (p *pass) deleteFile(path string) bool {
	err := removeFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	if err != nil {
		p.failed("delete file", err)
		return false
	}
	p.result.FilesDeleted++
	p.log.Info("file deleted", "path", path)
	return true
}

func (p *pass) deleteDir(path string) bool {
	if err := removeAll(path); err != nil {
		p.failed("delete dir", err)
		return false
	}
	p.result.DirsDeleted++
	p.log.Info("dir deleted", "path", path)
	return true
}

func (p *pass) failed(op string, err error) {
	err = fmt.Errorf("%s: %w", op, err)
	p.result.fail(err)
	p.log.Error("sync error", "error", err)
}
