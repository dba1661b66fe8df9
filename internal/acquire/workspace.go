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
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	errMakePlaceholder  = "failed to create placeholder workspace"
	errWritePlaceholder = "failed to write placeholder manifest"
)

// placeholderManifest is the Cargo.toml a placeholder workspace is
// generated from: a single crate named cratecheck-placeholder whose only
// dependency is the target crate.
type placeholderManifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
		Edition string `toml:"edition"`
	} `toml:"package"`
	Lib struct {
		Path string `toml:"path"`
	} `toml:"lib"`
	Dependencies map[string]placeholderDependency `toml:"dependencies"`
}

type placeholderDependency struct {
	Version         string   `toml:"version,omitempty"`
	Path            string   `toml:"path,omitempty"`
	DefaultFeatures bool     `toml:"default-features"`
	Features        []string `toml:"features,omitempty"`
}

// Workspace is a disposable, one-crate Cargo workspace used to drive the
// external documentation tool against a single dependency in isolation.
type Workspace struct {
	fs  afero.Fs
	dir string
}

// NewPlaceholderWorkspace creates build_root/{slug}-{uuid}/ and writes its
// Cargo.toml, with req's target crate as the sole dependency at the
// requested feature selection. The uuid suffix keeps two concurrent
// resolves of the same slug (e.g. two workspace packages that happen to
// depend on the same crate/version/feature set) from writing into the same
// build directory. Any stale Cargo.lock under dir is removed so a previous
// run's lockfile can never leak into this one.
func NewPlaceholderWorkspace(fs afero.Fs, buildRoot, slug string, req Request) (*Workspace, error) {
	dir := filepath.Join(buildRoot, fmt.Sprintf("%s-%s", slug, uuid.NewString()))
	if err := fs.MkdirAll(filepath.Join(dir, "src"), 0o750); err != nil {
		return nil, errors.Wrap(err, errMakePlaceholder)
	}

	var m placeholderManifest
	m.Package.Name = "cratecheck-placeholder"
	m.Package.Version = "0.0.0"
	m.Package.Edition = "2021"
	m.Lib.Path = "src/lib.rs"
	m.Dependencies = map[string]placeholderDependency{
		req.name(fs): {
			Version:         registryVersionConstraint(req),
			Path:            localDependencyPath(req),
			DefaultFeatures: req.Features.DefaultFeatures,
			Features:        req.Features.Features,
		},
	}

	data, err := toml.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, errWritePlaceholder)
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, "Cargo.toml"), data, 0o640); err != nil {
		return nil, errors.Wrap(err, errWritePlaceholder)
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, "src", "lib.rs"), []byte("// generated placeholder, never compiled directly\n"), 0o640); err != nil {
		return nil, errors.Wrap(err, errWritePlaceholder)
	}

	lock := filepath.Join(dir, "Cargo.lock")
	if exists, _ := afero.Exists(fs, lock); exists {
		if err := fs.Remove(lock); err != nil {
			return nil, errors.Wrap(err, errMakePlaceholder)
		}
	}

	return &Workspace{fs: fs, dir: dir}, nil
}

// Dir is the placeholder workspace's root on disk.
func (w *Workspace) Dir() string { return w.dir }

// ManifestPath is the placeholder workspace's Cargo.toml.
func (w *Workspace) ManifestPath() string { return filepath.Join(w.dir, "Cargo.toml") }

// Remove deletes the placeholder workspace tree.
func (w *Workspace) Remove() error {
	return w.fs.RemoveAll(w.dir)
}

func registryVersionConstraint(req Request) string {
	if req.Kind == SourceRegistry {
		return fmt.Sprintf("=%s", req.Version)
	}
	return ""
}

func localDependencyPath(req Request) string {
	if req.Kind == SourceLocal {
		return filepath.Dir(req.ManifestPath)
	}
	return ""
}

// localManifestCrateName reads just the [package].name field out of a local
// Cargo.toml, the way the slug and the placeholder dependency table both
// need it, without pulling in the full PackageMetadata decode. If the
// manifest can't be read or parsed, it falls back to the containing
// directory's name, which cargo itself treats as the default package name.
func localManifestCrateName(fs afero.Fs, manifestPath string) string {
	fallback := strings.TrimSuffix(filepath.Base(filepath.Dir(manifestPath)), "/")

	data, err := afero.ReadFile(fs, manifestPath)
	if err != nil {
		return fallback
	}
	var m struct {
		Package struct {
			Name string `toml:"name"`
		} `toml:"package"`
	}
	if err := toml.Unmarshal(data, &m); err != nil || m.Package.Name == "" {
		return fallback
	}
	return m.Package.Name
}
