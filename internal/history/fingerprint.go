// SPDX-License-Identifier: MPL-2.0

package history

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Hasher accumulates task inputs into a fingerprint. Every entry is
// length-prefixed so adjacent values cannot run together.
type Hasher struct {
	h hash.Hash
}

// NewHasher returns an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

func (h *Hasher) write(b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	h.h.Write(n[:])
	h.h.Write(b)
}

// String adds a named value.
func (h *Hasher) String(key, value string) {
	h.write([]byte(key))
	h.write([]byte(value))
}

// File adds the content of path. A missing file hashes differently from
// an empty one.
func (h *Hasher) File(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		h.String(path, "\x00absent")
		return nil
	}
	if err != nil {
		return fmt.Errorf("fingerprint %s: %w", path, err)
	}
	h.write([]byte(path))
	h.write(data)
	return nil
}

// Tree adds every file below dir whose slash-separated relative path
// matches one of patterns, in lexical order. A missing dir adds nothing
// but its name.
func (h *Hasher) Tree(dir string, patterns ...string) error {
	h.write([]byte(dir))
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, rel); ok {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				h.write([]byte(rel))
				h.write(data)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("fingerprint %s: %w", dir, err)
	}
	return nil
}

// Sum returns the hex fingerprint of everything added so far.
func (h *Hasher) Sum() string {
	return hex.EncodeToString(h.h.Sum(nil))
}
