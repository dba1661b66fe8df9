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

package snapshot

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const errMalformedMetadata = "package metadata is not valid Cargo.toml"

// PackageMetadata is the subset of a crate's Cargo.toml the rest of the
// system cares about: identity, for cache-slug and report labeling, and the
// raw `package.metadata.cargo-semver-checks` override table, which
// internal/config decodes further into an override.OverrideMap.
type PackageMetadata struct {
	Name    string `toml:"-"`
	Version string `toml:"-"`

	// RawOverrides is package.metadata.cargo-semver-checks.lints, left
	// undecoded here (values may be a bare string or a table) so that
	// internal/config owns the shorthand-expansion rules.
	RawOverrides map[string]any `toml:"-"`

	// WorkspaceInherit is true when the package opted into the workspace's
	// override table via `workspace = true`.
	WorkspaceInherit bool `toml:"-"`
}

type cargoManifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
		Metadata struct {
			CargoSemverChecks struct {
				Lints     map[string]any `toml:"lints"`
				Workspace bool           `toml:"workspace"`
			} `toml:"cargo-semver-checks"`
		} `toml:"metadata"`
	} `toml:"package"`
}

// ParsePackageMetadata decodes a Cargo.toml document's [package] and
// [package.metadata.cargo-semver-checks] tables.
func ParsePackageMetadata(data []byte) (*PackageMetadata, error) {
	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errMalformedMetadata)
	}
	return &PackageMetadata{
		Name:             m.Package.Name,
		Version:          m.Package.Version,
		RawOverrides:     m.Package.Metadata.CargoSemverChecks.Lints,
		WorkspaceInherit: m.Package.Metadata.CargoSemverChecks.Workspace,
	}, nil
}
