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

// Package orchestrator walks a Cargo workspace's member packages and runs
// the release-check engine over each, aggregating a multi-crate report.
package orchestrator

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	errReadWorkspaceManifest = "failed to read workspace manifest"
	errWalkWorkspaceRoot     = "failed to walk workspace root"
)

type workspaceManifest struct {
	Workspace struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
	Package *struct {
		Name string `toml:"name"`
	} `toml:"package"`
}

// DiscoverPackages resolves the set of package manifest paths a Cargo
// workspace rooted at manifestPath names, expanding glob members (e.g.
// "crates/*") and dropping anything matched by an exclude pattern. A
// manifest with no `[workspace]` table is itself the sole package.
func DiscoverPackages(fsys afero.Fs, manifestPath string) ([]string, error) {
	data, err := afero.ReadFile(fsys, manifestPath)
	if err != nil {
		return nil, errors.Wrap(err, errReadWorkspaceManifest)
	}
	var m workspaceManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errReadWorkspaceManifest)
	}

	root := filepath.Dir(manifestPath)
	if len(m.Workspace.Members) == 0 {
		return []string{manifestPath}, nil
	}

	excluded, err := expandPatterns(fsys, root, m.Workspace.Exclude)
	if err != nil {
		return nil, err
	}
	members, err := expandPatterns(fsys, root, m.Workspace.Members)
	if err != nil {
		return nil, err
	}

	excludeSet := make(map[string]bool, len(excluded))
	for _, e := range excluded {
		excludeSet[e] = true
	}

	seen := make(map[string]bool, len(members))
	var paths []string
	for _, dir := range members {
		if excludeSet[dir] {
			continue
		}
		manifest := filepath.Join(dir, "Cargo.toml")
		if exists, _ := afero.Exists(fsys, manifest); !exists {
			continue
		}
		if seen[manifest] {
			continue
		}
		seen[manifest] = true
		paths = append(paths, manifest)
	}
	sort.Strings(paths)
	return paths, nil
}

// expandPatterns resolves each glob pattern (relative to root, Cargo's own
// convention) to the set of matching directories under root. A pattern with
// no glob metacharacter is returned as-is without walking the tree.
func expandPatterns(fsys afero.Fs, root string, patterns []string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			out = append(out, filepath.Join(root, pattern))
			continue
		}
		matches, err := globDirs(fsys, root, pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

// globDirs matches pattern (a slash-separated glob relative to root) against
// every directory under root, the way Cargo resolves a workspace member
// glob such as "crates/*".
func globDirs(fsys afero.Fs, root, pattern string) ([]string, error) {
	var matches []string
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() || p == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		ok, matchErr := filepath.Match(pattern, rel)
		if matchErr != nil {
			return matchErr
		}
		if ok {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errWalkWorkspaceRoot)
	}
	return matches, nil
}
