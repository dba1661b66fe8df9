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

package orchestrator

import (
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func TestDiscoverPackagesSingleCrateHasNoWorkspaceTable(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/proj/Cargo.toml", []byte(`
[package]
name = "demo"
version = "1.0.0"
`), 0o640)

	got, err := DiscoverPackages(fs, "/proj/Cargo.toml")
	if err != nil {
		t.Fatalf("DiscoverPackages: %v", err)
	}
	want := []string{"/proj/Cargo.toml"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscoverPackagesExpandsGlobMembersAndAppliesExclude(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/proj/Cargo.toml", []byte(`
[workspace]
members = ["crates/*"]
exclude = ["crates/excluded"]
`), 0o640)
	_ = afero.WriteFile(fs, "/proj/crates/a/Cargo.toml", []byte(`[package]
name = "a"
version = "0.1.0"
`), 0o640)
	_ = afero.WriteFile(fs, "/proj/crates/b/Cargo.toml", []byte(`[package]
name = "b"
version = "0.1.0"
`), 0o640)
	_ = afero.WriteFile(fs, "/proj/crates/excluded/Cargo.toml", []byte(`[package]
name = "excluded"
version = "0.1.0"
`), 0o640)

	got, err := DiscoverPackages(fs, "/proj/Cargo.toml")
	if err != nil {
		t.Fatalf("DiscoverPackages: %v", err)
	}
	want := []string{"/proj/crates/a/Cargo.toml", "/proj/crates/b/Cargo.toml"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscoverPackagesIgnoresGlobMatchWithoutManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/proj/Cargo.toml", []byte(`
[workspace]
members = ["crates/*"]
`), 0o640)
	_ = afero.WriteFile(fs, "/proj/crates/a/Cargo.toml", []byte(`[package]
name = "a"
version = "0.1.0"
`), 0o640)
	// A directory under crates/ with no Cargo.toml must be skipped, not error.
	_ = fs.MkdirAll("/proj/crates/not-a-crate", 0o750)

	got, err := DiscoverPackages(fs, "/proj/Cargo.toml")
	if err != nil {
		t.Fatalf("DiscoverPackages: %v", err)
	}
	want := []string{"/proj/crates/a/Cargo.toml"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscoverPackagesExplicitMembersWithoutGlob(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/proj/Cargo.toml", []byte(`
[workspace]
members = ["lib", "cli"]
`), 0o640)
	_ = afero.WriteFile(fs, "/proj/lib/Cargo.toml", []byte(`[package]
name = "lib"
version = "0.1.0"
`), 0o640)
	_ = afero.WriteFile(fs, "/proj/cli/Cargo.toml", []byte(`[package]
name = "cli"
version = "0.1.0"
`), 0o640)

	got, err := DiscoverPackages(fs, "/proj/Cargo.toml")
	if err != nil {
		t.Fatalf("DiscoverPackages: %v", err)
	}
	want := []string{"/proj/cli/Cargo.toml", "/proj/lib/Cargo.toml"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
