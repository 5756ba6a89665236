package mirror

import (
	"fmt"
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
)

// dirEntries is one directory level split by kind and keyed by base name.
// other holds replica entries that are neither regular files nor directories
// (symlinks, sockets, ...); they are always replaced or removed.
type dirEntries struct {
	files mapset.Set[string]
	dirs  mapset.Set[string]
	other mapset.Set[string]
}

func newDirEntries() *dirEntries {
	return &dirEntries{
		files: mapset.NewThreadUnsafeSet[string](),
		dirs:  mapset.NewThreadUnsafeSet[string](),
		other: mapset.NewThreadUnsafeSet[string](),
	}
}

// listSource reads a source directory. Symlinks to regular files count as
// files; anything else that is not a plain directory is skipped with a warning.
func (p *pass) listSource(dir string) (*dirEntries, error) {
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}

	list := newDirEntries()
	for _, entry := range entries {
		name := entry.Name()
		mode := entry.Type()

		switch {
		case entry.IsDir():
			list.dirs.Add(name)
		case mode.IsRegular():
			list.files.Add(name)
		case mode&os.ModeSymlink != 0:
			path := filepath.Join(dir, name)
			info, err := os.Stat(path)
			if err != nil {
				p.skip(path, fmt.Sprintf("unresolvable symlink: %v", err))
				continue
			}
			if info.Mode().IsRegular() {
				list.files.Add(name)
			} else {
				p.skip(path, "symlink to "+kindOf(info.Mode()))
			}
		default:
			p.skip(filepath.Join(dir, name), kindOf(mode))
		}
	}
	return list, nil
}

func listReplica(dir string) (*dirEntries, error) {
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}

	list := newDirEntries()
	for _, entry := range entries {
		switch {
		case entry.IsDir():
			list.dirs.Add(entry.Name())
		case entry.Type().IsRegular():
			list.files.Add(entry.Name())
		default:
			list.other.Add(entry.Name())
		}
	}
	return list, nil
}

func (p *pass) skip(path, reason string) {
	p.result.Skipped++
	p.log.Warn("entry skipped", "path", path, "reason", reason)
}

func kindOf(mode os.FileMode) string {
	switch {
	case mode.IsDir():
		return "directory"
	case mode&os.ModeNamedPipe != 0:
		return "named pipe"
	case mode&os.ModeSocket != 0:
		return "socket"
	case mode&os.ModeDevice != 0:
		return "device"
	default:
		return "irregular file"
	}
}
