package mirror

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	tempFilePattern = ".syftmirror-*.tmp"
	replicaFileMode = 0o644
)

// filesystem calls that tests swap out to simulate failures
var (
	readDir    = os.ReadDir
	removeFile = os.Remove
	removeAll  = os.RemoveAll
	renameFile = os.Rename
)

// copyFile writes src's content to dst through a temp file in dst's directory
// and renames it into place, so dst is either the old or the new content.
// Any previous dst entry (file or symlink) is replaced, never followed.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), tempFilePattern)
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, in)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("write %s: %w", dst, err)
	}

	if err := os.Chmod(tmpPath, replicaFileMode); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("chmod %s: %w", dst, err)
	}

	if err := renameFile(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}
	return n, nil
}
