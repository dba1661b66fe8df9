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
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

const fakeManifest = `
[package]
name = "demo"
version = "1.0.0"

[package.metadata.cargo-semver-checks]
lints = { enum_missing = "warn" }
`

const fakeSnapshotJSON = `{"format_version": 32, "crate_version": "1.0.0", "root": "0", "index": {}, "paths": {}, "includes_private": true}`

// fakeDocTool never shells out; it writes a canned JSON dump and manifest so
// the resolve pipeline can be exercised without a real cargo toolchain.
type fakeDocTool struct {
	fs         afero.Fs
	genCalls   int
	refreshErr error
}

func (f *fakeDocTool) RefreshDependencies(_ context.Context, _ Request, _ GenSettings, _ *Workspace) error {
	return f.refreshErr
}

func (f *fakeDocTool) GenerateDocs(_ context.Context, _ Request, settings GenSettings, ws *Workspace, _ string) error {
	f.genCalls++
	return afero.WriteFile(f.fs, f.docPath(ws, settings), []byte(fakeSnapshotJSON), 0o640)
}

func (f *fakeDocTool) LocateOutput(_ context.Context, ws *Workspace, _ string, settings GenSettings) (string, string, error) {
	manifestPath := filepath.Join(ws.Dir(), "upstream-manifest.toml")
	if err := afero.WriteFile(f.fs, manifestPath, []byte(fakeManifest), 0o640); err != nil {
		return "", "", err
	}
	return f.docPath(ws, settings), manifestPath, nil
}

func (f *fakeDocTool) docPath(ws *Workspace, settings GenSettings) string {
	sub := "doc"
	if settings.Target != "" {
		sub = filepath.Join(settings.Target, "doc")
	}
	return filepath.Join(ws.Dir(), "target", sub, "demo.json")
}

func TestResolveCachesOnFirstRunAndSkipsDocToolOnSecond(t *testing.T) {
	fs := afero.NewMemMapFs()
	cache, err := NewCache(fs, "/target")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	tool := &fakeDocTool{fs: fs}
	r := &Resolver{FS: fs, BuildRoot: "/target", Cache: cache, DocTool: tool}

	req := Request{Kind: SourceRegistry, CrateName: "demo", Version: "1.0.0", Features: FeatureSelection{DefaultFeatures: true}}
	policy := CachePolicy{Read: true, Write: true}

	handle, err := r.Resolve(context.Background(), req, policy, GenSettings{}, nil)
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if handle.Crate.FormatVersion != 32 {
		t.Errorf("FormatVersion = %d, want 32", handle.Crate.FormatVersion)
	}
	if tool.genCalls != 1 {
		t.Fatalf("genCalls after first Resolve = %d, want 1", tool.genCalls)
	}

	handle2, err := r.Resolve(context.Background(), req, policy, GenSettings{}, nil)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if tool.genCalls != 1 {
		t.Errorf("genCalls after second Resolve = %d, want still 1 (cache hit)", tool.genCalls)
	}
	if handle2.Crate.FormatVersion != 32 {
		t.Errorf("second FormatVersion = %d, want 32", handle2.Crate.FormatVersion)
	}
}

func TestResolveAttachesPackageMetadataOnFirstRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	cache, err := NewCache(fs, "/target")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	tool := &fakeDocTool{fs: fs}
	r := &Resolver{FS: fs, BuildRoot: "/target", Cache: cache, DocTool: tool}

	req := Request{Kind: SourceRegistry, CrateName: "demo", Version: "1.0.0", Features: FeatureSelection{DefaultFeatures: true}}
	handle, err := r.Resolve(context.Background(), req, CachePolicy{Read: true, Write: true}, GenSettings{}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if handle.Crate.Metadata == nil {
		t.Fatal("expected package metadata to be attached")
	}
	if handle.Crate.Metadata.Name != "demo" {
		t.Errorf("Metadata.Name = %q, want demo", handle.Crate.Metadata.Name)
	}
}

func TestResolveLocalRequestNeverConsultsCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/proj/Cargo.toml", []byte(fakeManifest), 0o640); err != nil {
		t.Fatalf("seed manifest: %v", err)
	}
	cache, err := NewCache(fs, "/target")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	tool := &fakeDocTool{fs: fs}
	r := &Resolver{FS: fs, BuildRoot: "/target", Cache: cache, DocTool: tool}

	req := Request{Kind: SourceLocal, ManifestPath: "/proj/Cargo.toml", Features: FeatureSelection{DefaultFeatures: true}}
	policy := CachePolicy{Read: true, Write: true}

	if _, err := r.Resolve(context.Background(), req, policy, GenSettings{}, nil); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if _, err := r.Resolve(context.Background(), req, policy, GenSettings{}, nil); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if tool.genCalls != 2 {
		t.Errorf("genCalls = %d, want 2: a local request must regenerate every time", tool.genCalls)
	}
}
