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

// Package registry resolves a crate's published version list from a mirror
// of the crates.io index, and selects a baseline version from that list.
package registry

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/pkg/errors"
)

const (
	errCloneIndex   = "failed to clone the registry index"
	errOpenShard    = "failed to read the index entry for %q"
	errDecodeRecord = "failed to decode an index record for %q"
)

// defaultIndexURL is the upstream crates.io index mirror. A local or
// private registry can substitute a different URL via WithIndexURL.
var defaultIndexURL = "https://github.com/rust-lang/crates.io-index"

// Record is one line of a crate's index file: one published version.
type Record struct {
	Name     string              `json:"name"`
	Version  string              `json:"vers"`
	Deps     []json.RawMessage   `json:"deps"`
	Cksum    string              `json:"cksum"`
	Features map[string][]string `json:"features"`
	Yanked   bool                `json:"yanked"`
}

// Index is a read-only handle onto a cloned mirror of the sparse crates.io
// index, kept in an in-memory billy filesystem so a resolve never touches
// the real disk outside the acquire package's own cache.
type Index struct {
	fs billy.Filesystem
}

// Option configures Fetch.
type Option func(*fetchOptions)

type fetchOptions struct {
	url string
}

// WithIndexURL overrides the index mirror to clone from, for a private or
// vendored registry.
func WithIndexURL(url string) Option {
	return func(o *fetchOptions) { o.url = url }
}

// Fetch clones the registry index into memory, never persisting it to
// disk: every Index is rebuilt per invocation. The mirror's own server
// enforces any lock/retry-on-contention behavior; this client does not
// retry itself.
func Fetch(_ context.Context, opts ...Option) (*Index, error) {
	o := fetchOptions{url: defaultIndexURL}
	for _, opt := range opts {
		opt(&o)
	}

	fs := memfs.New()
	_, err := git.Clone(memory.NewStorage(), fs, &git.CloneOptions{
		URL:   o.url,
		Depth: 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, errCloneIndex)
	}
	return &Index{fs: fs}, nil
}

// NewIndexFromFS wraps an already-populated billy filesystem as an Index,
// so a caller that already has a fixture (or another sparse-index mirror
// that isn't a git clone) can skip Fetch entirely. Used by orchestrator's
// tests to exercise registry-baseline selection without cloning anything.
func NewIndexFromFS(fs billy.Filesystem) *Index {
	return &Index{fs: fs}
}

// Versions returns every published record for name, in index file order
// (oldest first), by resolving the sharded path the crates.io index layout
// uses: 1/ and 2/ character names live directly under their length, 3-char
// names live under 3/<first-char>/, and everything else lives under
// <first-two>/<next-two>/.
func (idx *Index) Versions(name string) ([]Record, error) {
	f, err := idx.fs.Open(shardPath(name))
	if err != nil {
		return nil, errors.Wrapf(err, errOpenShard, name)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, errors.Wrapf(err, errDecodeRecord, name)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errOpenShard, name)
	}
	return records, nil
}

func shardPath(name string) string {
	lower := strings.ToLower(name)
	switch len(lower) {
	case 0:
		return lower
	case 1:
		return "1/" + lower
	case 2:
		return "2/" + lower
	case 3:
		return "3/" + lower[:1] + "/" + lower
	default:
		return lower[:2] + "/" + lower[2:4] + "/" + lower
	}
}
