package mirror

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/openmined/syftmirror/internal/config"
)

// Comparator decides whether two existing files hold the same bytes.
type Comparator interface {
	Equal(pathA, pathB string) (bool, error)
}

// DigestComparator hashes both files in full and compares the digests.
// Differing sizes short-circuit to "not equal"; equal sizes are always hashed.
type DigestComparator struct {
	newHash func() hash.Hash
}

func NewDigestComparator(algorithm string) (*DigestComparator, error) {
	switch algorithm {
	case "", config.HashMD5:
		return &DigestComparator{newHash: md5.New}, nil
	case config.HashSHA256:
		return &DigestComparator{newHash: sha256.New}, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownHash, algorithm)
	}
}

func (c *DigestComparator) Equal(pathA, pathB string) (bool, error) {
	infoA, err := os.Stat(pathA)
	if err != nil {
		return false, fmt.Errorf("compare stat: %w", err)
	}
	infoB, err := os.Stat(pathB)
	if err != nil {
		return false, fmt.Errorf("compare stat: %w", err)
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	sumA, err := c.Digest(pathA)
	if err != nil {
		return false, err
	}
	sumB, err := c.Digest(pathB)
	if err != nil {
		return false, err
	}
	return bytes.Equal(sumA, sumB), nil
}

// Digest returns the hash of the file's full content. The handle is closed before returning.
func (c *DigestComparator) Digest(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("digest open: %w", err)
	}
	defer file.Close()

	h := c.newHash()
	if _, err := io.Copy(h, file); err != nil {
		return nil, fmt.Errorf("digest read '%s': %w", path, err)
	}
	return h.Sum(nil), nil
}
