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

// Package acquire resolves a snapshot request (a registry version, a local
// manifest, or a git revision) to a parsed rustdoc-JSON snapshot, by cache
// hit or by driving the external documentation tool inside a disposable
// placeholder workspace.
package acquire

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// SourceKind distinguishes the three request shapes a resolve can be asked
// to satisfy.
type SourceKind string

const (
	// SourceRegistry resolves a crate name and exact version from the
	// registry index.
	SourceRegistry SourceKind = "registry"
	// SourceLocal resolves a parsed manifest already present on disk. A
	// local request is never served from the cache, since the source may
	// have been mutated underneath us since the last run; its freshly
	// generated snapshot is still stored when CachePolicy.Write is set.
	SourceLocal SourceKind = "local"
	// SourceRaw resolves a pre-generated rustdoc JSON dump directly,
	// bypassing the placeholder workspace and the external documentation
	// tool entirely. Like SourceLocal, it is never cached: the file is
	// already sitting on disk at whatever path the caller chose.
	SourceRaw SourceKind = "raw"
)

// FeatureSelection is the feature flags a snapshot is generated with.
type FeatureSelection struct {
	DefaultFeatures bool
	Features        []string
}

// hash is a 16-hex-char prefix of a SHA-256 digest over the default-features
// flag and the sorted extra feature list, so that two requests differing
// only in feature order hash identically.
func (f FeatureSelection) hash() string {
	sorted := append([]string(nil), f.Features...)
	sort.Strings(sorted)

	h := sha256.New()
	fmt.Fprintf(h, "default_features=%t\n", f.DefaultFeatures)
	for _, feat := range sorted {
		fmt.Fprintf(h, "%s\n", feat)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Request describes one snapshot to resolve: a registry crate at an exact
// version, a local package manifest, or a pre-generated rustdoc JSON dump.
type Request struct {
	Kind SourceKind

	// CrateName and Version identify a SourceRegistry request.
	CrateName string
	Version   string

	// ManifestPath is the path to the package's Cargo.toml for a
	// SourceLocal request.
	ManifestPath string

	// RawJSONPath is the path to a pre-generated rustdoc JSON dump for a
	// SourceRaw request.
	RawJSONPath string

	Features FeatureSelection
}

// name returns the crate name to embed in the cache slug and the
// placeholder workspace's dependency declaration.
func (r Request) name(fs afero.Fs) string {
	switch r.Kind {
	case SourceRegistry:
		return r.CrateName
	case SourceRaw:
		return strings.TrimSuffix(filepath.Base(r.RawJSONPath), ".json")
	default:
		return localManifestCrateName(fs, r.ManifestPath)
	}
}

func (r Request) version() string {
	switch r.Kind {
	case SourceRegistry:
		return r.Version
	case SourceRaw:
		return "raw"
	default:
		return "local"
	}
}

// Slug computes the deterministic cache key:
// source_kind-name-version-target-features_hash.
func Slug(fs afero.Fs, r Request, target string) string {
	return strings.Join([]string{
		string(r.Kind),
		sanitizeSlugComponent(r.name(fs)),
		sanitizeSlugComponent(r.version()),
		sanitizeSlugComponent(target),
		r.Features.hash(),
	}, "-")
}

// sanitizeSlugComponent replaces path-hostile characters so a slug is always
// safe to use as a single filesystem path segment.
func sanitizeSlugComponent(s string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	return r.Replace(s)
}

// CachePolicy gates whether a resolve may read from, or write to, the
// on-disk cache. A SourceLocal request ignores CachePolicy.Read: it is
// always regenerated.
type CachePolicy struct {
	Read  bool
	Write bool
}

// GenSettings controls how the external documentation command is invoked.
type GenSettings struct {
	// Target is the user-requested target triple, if any; empty means
	// "detect from the placeholder workspace's global config, else host".
	Target string
	// CompileFlags are extra rustc flags the user supplied; cap-lints=allow
	// is always appended on top of these.
	CompileFlags []string
	// TargetDir is the root under which placeholder workspaces and the
	// persistent cache both live.
	TargetDir string
	// Quiet suppresses inheriting the external command's stdout/stderr;
	// their combined output is instead captured for error messages.
	Quiet bool
}

// CacheEntry is the on-disk record of a previously resolved snapshot.
type CacheEntry struct {
	JSONPath     string
	MetadataPath string
}

// ProgressFunc reports a one-line human description of the pipeline step
// currently running, the way a long-running operation narrates itself to a
// terminal spinner.
type ProgressFunc func(stage, detail string)

func (p ProgressFunc) report(stage, detail string) {
	if p != nil {
		p(stage, detail)
	}
}
