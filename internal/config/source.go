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

package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const errMalformedWorkspaceManifest = "workspace manifest is not valid Cargo.toml"

// Source locates a workspace's `[workspace.metadata.cargo-semver-checks]`
// lints table, the layer ResolveStack treats as lowest priority.
type Source interface {
	WorkspaceOverrides() (map[string]any, error)
}

// FSSource reads the workspace table straight out of the workspace root's
// Cargo.toml on an afero.Fs, the same filesystem abstraction every other
// manifest read in this module uses.
type FSSource struct {
	fs   afero.Fs
	path string
}

// NewFSSource builds a Source over the workspace manifest at path.
func NewFSSource(fs afero.Fs, path string) *FSSource {
	return &FSSource{fs: fs, path: path}
}

type workspaceManifest struct {
	Workspace struct {
		Metadata struct {
			CargoSemverChecks struct {
				Lints map[string]any `toml:"lints"`
			} `toml:"cargo-semver-checks"`
		} `toml:"metadata"`
	} `toml:"workspace"`
}

// WorkspaceOverrides returns the workspace's lints table, or nil if the
// manifest carries no `[workspace]` table at all — a single-crate project
// with no workspace root simply contributes no workspace layer.
func (src *FSSource) WorkspaceOverrides() (map[string]any, error) {
	data, err := afero.ReadFile(src.fs, src.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var m workspaceManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errMalformedWorkspaceManifest)
	}
	return m.Workspace.Metadata.CargoSemverChecks.Lints, nil
}
