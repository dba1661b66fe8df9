// Copyright 2025 The Cratecheck Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package acquire

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	errMakeCacheDir  = "failed to create cache directory"
	errReadCacheFile = "failed to read cache entry"
	errWriteCacheTmp = "failed to write cache entry to a temp file"
	errRenameCache   = "failed to install cache entry"
)

// Cache is a content-addressed, filesystem-backed store of resolved
// snapshots, keyed by the slug computed from a Request. Writes are
// write-temp-then-rename so that two invocations racing on the same slug
// never observe a half-written file.
type Cache struct {
	fs   afero.Fs
	root string
	mu   sync.Mutex
}

// NewCache opens (creating if necessary) a cache rooted at
// filepath.Join(targetDir, "cache").
func NewCache(fs afero.Fs, targetDir string) (*Cache, error) {
	root := filepath.Join(targetDir, "cache")
	if err := fs.MkdirAll(root, 0o750); err != nil {
		return nil, errors.Wrap(err, errMakeCacheDir)
	}
	return &Cache{fs: fs, root: root}, nil
}

func (c *Cache) jsonPath(slug string) string {
	return filepath.Join(c.root, slug+".json")
}

func (c *Cache) metadataPath(slug string) string {
	return filepath.Join(c.root, slug+".metadata.json")
}

// Lookup returns the CacheEntry for slug if both its JSON dump and its
// metadata sidecar are present. A missing metadata sidecar is not itself a
// miss elsewhere in the pipeline (step 7 tolerates a metadata parse
// failure), but a cache *hit* requires both files to exist so that a
// partially-populated cache from an interrupted run is never mistaken for a
// complete one.
func (c *Cache) Lookup(slug string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	jp := c.jsonPath(slug)
	mp := c.metadataPath(slug)
	if exists, _ := afero.Exists(c.fs, jp); !exists {
		return CacheEntry{}, false
	}
	if exists, _ := afero.Exists(c.fs, mp); !exists {
		return CacheEntry{}, false
	}
	return CacheEntry{JSONPath: jp, MetadataPath: mp}, true
}

// Store copies jsonSrc (and, if metadataSrc is non-empty, metadataSrc) into
// the cache under slug, replacing any existing entry atomically.
func (c *Cache) Store(slug string, jsonSrc, metadataSrc string) (CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	jp := c.jsonPath(slug)
	if err := c.atomicCopy(jsonSrc, jp); err != nil {
		return CacheEntry{}, err
	}

	entry := CacheEntry{JSONPath: jp}
	if metadataSrc != "" {
		mp := c.metadataPath(slug)
		if err := c.atomicCopy(metadataSrc, mp); err != nil {
			return CacheEntry{}, err
		}
		entry.MetadataPath = mp
	}
	return entry, nil
}

func (c *Cache) atomicCopy(src, dst string) error {
	data, err := afero.ReadFile(c.fs, src)
	if err != nil {
		return errors.Wrap(err, errReadCacheFile)
	}

	tmp := dst + fmt.Sprintf(".tmp-%d", os.Getpid())
	if err := afero.WriteFile(c.fs, tmp, data, 0o640); err != nil {
		return errors.Wrap(err, errWriteCacheTmp)
	}
	if err := c.fs.Rename(tmp, dst); err != nil {
		return errors.Wrap(err, errRenameCache)
	}
	return nil
}

// Clean removes every entry from the cache.
func (c *Cache) Clean() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fs.RemoveAll(c.root)
}
