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
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/cratecheck/cratecheck/internal/snapshot"
)

const (
	errCachedLoad      = "failed to load a cached snapshot"
	errGeneratedLoad   = "failed to load a freshly generated snapshot"
	errDocOutputAbsent = "failed to locate the generated documentation output"
)

// SnapshotHandle is the result of a resolve: a parsed Crate plus the
// on-disk locations it was read from, for diagnostics and for writing the
// JSON report path back out of the orchestrator.
type SnapshotHandle struct {
	Crate        *snapshot.Crate
	JSONPath     string
	MetadataPath string
}

// Resolver drives the snapshot acquisition pipeline.
type Resolver struct {
	FS        afero.Fs
	BuildRoot string
	Cache     *Cache
	DocTool   DocToolRunner
}

// NewResolver builds a Resolver with the production CargoDocTool. Tests
// substitute DocTool directly to avoid shelling out.
func NewResolver(fs afero.Fs, buildRoot string, cache *Cache) *Resolver {
	return &Resolver{FS: fs, BuildRoot: buildRoot, Cache: cache, DocTool: CargoDocTool{}}
}

// Resolve runs the seven-step pipeline: cache lookup, placeholder
// workspace, dependency refresh (local only), doc generation, output
// location, cache population, and parse.
func (r *Resolver) Resolve(ctx context.Context, req Request, policy CachePolicy, settings GenSettings, progress ProgressFunc) (*SnapshotHandle, error) {
	target := effectiveTarget(settings)
	slug := Slug(r.FS, req, target)

	// A raw request already names a rustdoc JSON dump on disk: skip the
	// placeholder workspace and the external documentation tool entirely.
	if req.Kind == SourceRaw {
		progress.report("load", fmt.Sprintf("%s: loading rustdoc JSON from disk", slug))
		handle, err := r.load(CacheEntry{JSONPath: req.RawJSONPath})
		if err != nil {
			return nil, errors.Wrap(err, errCachedLoad)
		}
		return handle, nil
	}

	// Step 1: cache lookup. Never consulted for a local request — the
	// source may have been mutated underneath us since the last run.
	if req.Kind != SourceLocal && policy.Read {
		if entry, ok := r.Cache.Lookup(slug); ok {
			progress.report("cache", fmt.Sprintf("%s: reusing cached snapshot", slug))
			return r.load(entry)
		}
	}

	// Step 2: placeholder workspace.
	progress.report("workspace", fmt.Sprintf("%s: preparing placeholder workspace", slug))
	ws, err := NewPlaceholderWorkspace(r.FS, r.BuildRoot, slug, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ws.Remove() }()

	// Step 3: dependency refresh, local requests only.
	if req.Kind == SourceLocal {
		progress.report("update", fmt.Sprintf("%s: refreshing dependencies", slug))
		if err := r.DocTool.RefreshDependencies(ctx, req, settings, ws); err != nil {
			return nil, err
		}
	}

	// Step 4: generate docs.
	progress.report("doc", fmt.Sprintf("%s: generating documentation", slug))
	pkgName := req.name(r.FS)
	if err := r.DocTool.GenerateDocs(ctx, req, settings, ws, pkgName); err != nil {
		return nil, err
	}

	// Step 5: locate output.
	docPath, manifestPath, err := r.DocTool.LocateOutput(ctx, ws, pkgName, settings)
	if err != nil {
		return nil, errors.Wrap(err, errDocOutputAbsent)
	}
	if exists, _ := afero.Exists(r.FS, docPath); !exists {
		return nil, errors.Errorf(errDocJSONMissing, docPath)
	}

	// Step 6: populate cache.
	var entry CacheEntry
	if policy.Write {
		metadataPath, metaErr := r.writeMetadataSidecar(ws, manifestPath)
		if metaErr != nil {
			// A metadata parse failure is non-fatal: cache the JSON dump
			// without a metadata sidecar.
			metadataPath = ""
		}
		progress.report("cache", fmt.Sprintf("%s: populating cache", slug))
		entry, err = r.Cache.Store(slug, docPath, metadataPath)
		if err != nil {
			return nil, err
		}
	} else {
		entry = CacheEntry{JSONPath: docPath}
	}

	// Step 7: parse.
	handle, err := r.load(entry)
	if err != nil {
		return nil, errors.Wrap(err, errGeneratedLoad)
	}
	return handle, nil
}

func (r *Resolver) writeMetadataSidecar(ws *Workspace, manifestPath string) (string, error) {
	data, err := afero.ReadFile(r.FS, manifestPath)
	if err != nil {
		return "", err
	}
	meta, err := snapshot.ParsePackageMetadata(data)
	if err != nil {
		return "", err
	}
	js, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	sidecar := ws.Dir() + ".metadata.json"
	if err := afero.WriteFile(r.FS, sidecar, js, 0o640); err != nil {
		return "", err
	}
	return sidecar, nil
}

// load parses the JSON dump at entry.JSONPath and, if present, attaches the
// cached package metadata sidecar. The sidecar is the already-decoded
// PackageMetadata serialized to JSON, not the original Cargo.toml, so it is
// read directly rather than through snapshot.Load's Cargo.toml sidecar
// path.
func (r *Resolver) load(entry CacheEntry) (*SnapshotHandle, error) {
	crate, err := snapshot.Load(r.FS, entry.JSONPath, "", nil)
	if err != nil {
		return nil, errors.Wrap(err, errCachedLoad)
	}
	if entry.MetadataPath != "" {
		if meta, metaErr := loadCachedMetadata(r.FS, entry.MetadataPath); metaErr == nil {
			crate.Metadata = meta
		}
	}
	return &SnapshotHandle{Crate: crate, JSONPath: entry.JSONPath, MetadataPath: entry.MetadataPath}, nil
}

func loadCachedMetadata(fs afero.Fs, path string) (*snapshot.PackageMetadata, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var meta snapshot.PackageMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// effectiveTarget resolves the target triple precedence: explicit flag,
// else detected from global config, else host. Detecting a
// global-config or host triple requires invoking the toolchain itself, so
// only the explicit flag is implemented here; an empty result defers to
// cargo's own default, which is already "host" for an unset --target.
func effectiveTarget(settings GenSettings) string {
	return settings.Target
}
