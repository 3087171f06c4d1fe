// Package content reads watched file contents through a bounded
// fingerprint-validated cache, so repeated diffs of an unchanged file never
// touch the disk twice.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/colonyops/driftwatch/internal/core/diff"
	"github.com/colonyops/driftwatch/pkg/lru"
)

// ErrNotFound is returned when a path does not exist or was removed between
// notification and read.
var ErrNotFound = errors.New("content: file not found")

// FileInfo carries the modification metadata used for cache validation.
type FileInfo struct {
	ModTime time.Time
	Size    int64
}

// Reader is the narrow filesystem surface the store depends on.
type Reader interface {
	// Stat returns metadata for a path without reading it.
	Stat(path string) (FileInfo, error)
	// Read returns the current bytes of a path plus its metadata.
	Read(path string) ([]byte, FileInfo, error)
}

// OSReader reads from the local filesystem.
type OSReader struct{}

// Stat implements Reader.
func (OSReader) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return FileInfo{}, err
	}
	return FileInfo{ModTime: info.ModTime(), Size: info.Size()}, nil
}

// Read implements Reader.
func (OSReader) Read(path string) ([]byte, FileInfo, error) {
	info, err := OSReader{}.Stat(path)
	if err != nil {
		return nil, FileInfo{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, FileInfo{}, err
	}
	return data, info, nil
}

// Version is one cached content version of a path.
type Version struct {
	Data        []byte
	Fingerprint diff.Fingerprint
	info        FileInfo
}

// Store caches file contents keyed by path, validated against modification
// metadata. A path whose mtime and size are unchanged hits the cache without
// re-reading or re-hashing. Safe for concurrent use.
type Store struct {
	reader Reader
	cache  *lru.Cache[string, Version]
}

// NewStore creates a content store over the given reader with a bounded
// cache of the given capacity.
func NewStore(reader Reader, capacity int) *Store {
	if capacity <= 0 {
		capacity = 200
	}
	return &Store{
		reader: reader,
		cache:  lru.New[string, Version](capacity),
	}
}

// Get returns the current content version of a path, reading from disk only
// when the cached fingerprint is stale.
func (s *Store) Get(path string) (Version, error) {
	info, err := s.reader.Stat(path)
	if err != nil {
		return Version{}, err
	}

	if cached, ok := s.cache.Get(path); ok {
		if cached.info.ModTime.Equal(info.ModTime) && cached.info.Size == info.Size {
			return cached, nil
		}
	}

	data, info, err := s.reader.Read(path)
	if err != nil {
		return Version{}, err
	}

	v := Version{
		Data:        data,
		Fingerprint: diff.NewFingerprint(info.ModTime, data),
		info:        info,
	}
	s.cache.Put(path, v)
	return v, nil
}

// Forget drops the cached version of a path, as after a deletion.
func (s *Store) Forget(path string) {
	s.cache.Remove(path)
}
