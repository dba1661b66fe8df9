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
	"context"
	"fmt"
	"path/filepath"
	"sort"

	mastersemver "github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/cratecheck/cratecheck/internal/acquire"
	"github.com/cratecheck/cratecheck/internal/check"
	"github.com/cratecheck/cratecheck/internal/graph"
	"github.com/cratecheck/cratecheck/internal/override"
	"github.com/cratecheck/cratecheck/internal/registry"
	"github.com/cratecheck/cratecheck/internal/semver"
)

const (
	errNoCrateName        = "resolved snapshot carries no package name; cannot select a baseline"
	errNoBaselineSource   = "package %q requires a baseline but neither --baseline-rev nor a registry is configured"
	errResolveCurrent     = "failed to resolve current snapshot for %q"
	errResolveBaselineRev = "failed to resolve --baseline-rev for %q"
	errRegistryLookup     = "failed to list registry versions for %q"
	errSelectBaseline     = "failed to select a baseline version for %q"
	errResolveBaseline    = "failed to resolve baseline snapshot for %q"
	errCheckRelease       = "failed to run the release check for %q"
)

// PackageRequest is one workspace package to check.
type PackageRequest struct {
	// ManifestPath is the package's own Cargo.toml.
	ManifestPath string

	// BaselineVersion pins the baseline to an exact registry version,
	// skipping selection entirely.
	BaselineVersion string

	// BaselineRev, if set, takes precedence over a registry baseline: the
	// project's own repository is checked out at this revision and used as
	// the baseline package instead.
	BaselineRev string

	// BaselineRustdoc, if set, takes precedence over both BaselineRev and a
	// registry baseline: it names a pre-generated rustdoc JSON dump to use
	// as the baseline snapshot directly, skipping acquisition entirely.
	BaselineRustdoc string

	// Features is the feature selection the current snapshot is generated
	// with.
	Features acquire.FeatureSelection

	// BaselineFeatures is the feature selection the baseline snapshot is
	// generated with, independent of Features.
	BaselineFeatures acquire.FeatureSelection

	// Overrides is this package's fully-resolved override stack (workspace
	// defaults, package metadata, CLI flags, in priority order).
	Overrides override.OverrideStack

	// ReleaseType, if set, is used verbatim instead of classifying the
	// version delta between baseline and current.
	ReleaseType *semver.ActualSemverUpdate
}

// Orchestrator walks a set of package requests and runs the release-check
// engine over each, pairing every package with its baseline snapshot.
type Orchestrator struct {
	Resolver *acquire.Resolver
	Engine   *check.Engine

	// Registry supplies published versions for registry-baseline selection.
	// Nil is only valid when every PackageRequest sets BaselineRustdoc or
	// BaselineRev.
	Registry *registry.Index

	// ProjectRoot is the project's own git repository, used to resolve a
	// BaselineRev checkout.
	ProjectRoot string
	// BuildRoot is scratch space for baseline-rev checkouts, distinct from
	// the acquire Resolver's own placeholder-workspace build root.
	BuildRoot string

	CachePolicy acquire.CachePolicy
	GenSettings acquire.GenSettings
	Progress    acquire.ProgressFunc
}

// PackageFailure records one package's resolve/check failure without
// aborting the rest of the walk: a snapshot-generation or -parse error is
// fatal for the affected crate, but other crates in the same workspace
// continue.
type PackageFailure struct {
	ManifestPath string
	Err          error
}

// MultiCrateReport aggregates every package's CrateReport, sorted by crate
// name for reproducible output, plus any per-package failures that didn't
// stop the rest of the walk.
type MultiCrateReport struct {
	Packages []*check.CrateReport
	Failures []PackageFailure
}

// Breaking reports whether any package in the report requires a version
// bump, or failed outright.
func (r *MultiCrateReport) Breaking() bool {
	if len(r.Failures) > 0 {
		return true
	}
	for _, p := range r.Packages {
		if p.Breaking() {
			return true
		}
	}
	return false
}

// Walk runs CheckPackage for every request and aggregates the results. A
// package that fails to resolve or check is recorded as a PackageFailure
// rather than aborting the walk, so one broken crate in a workspace never
// hides the results of its siblings.
func (o *Orchestrator) Walk(ctx context.Context, reqs []PackageRequest) (*MultiCrateReport, error) {
	reports := make([]*check.CrateReport, 0, len(reqs))
	var failures []PackageFailure
	for _, req := range reqs {
		report, err := o.CheckPackage(ctx, req)
		if err != nil {
			failures = append(failures, PackageFailure{ManifestPath: req.ManifestPath, Err: err})
			continue
		}
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].CrateName < reports[j].CrateName })
	return &MultiCrateReport{Packages: reports, Failures: failures}, nil
}

// CheckPackage resolves req's current and baseline snapshots and runs the
// release-check engine over the pair.
func (o *Orchestrator) CheckPackage(ctx context.Context, req PackageRequest) (*check.CrateReport, error) {
	currentReq := acquire.Request{
		Kind:         acquire.SourceLocal,
		ManifestPath: req.ManifestPath,
		Features:     req.Features,
	}
	current, err := o.Resolver.Resolve(ctx, currentReq, o.CachePolicy, o.GenSettings, o.Progress)
	if err != nil {
		return nil, errors.Wrapf(err, errResolveCurrent, req.ManifestPath)
	}
	if current.Crate.Metadata == nil || current.Crate.Metadata.Name == "" {
		return nil, errors.New(errNoCrateName)
	}
	crateName := current.Crate.Metadata.Name

	baselineReq, err := o.resolveBaselineRequest(ctx, crateName, req, current)
	if err != nil {
		return nil, err
	}
	baseline, err := o.Resolver.Resolve(ctx, baselineReq, o.CachePolicy, o.GenSettings, o.Progress)
	if err != nil {
		return nil, errors.Wrapf(err, errResolveBaseline, crateName)
	}

	adapter := graph.New(current.Crate, baseline.Crate)
	report, err := o.Engine.CheckRelease(ctx, crateName, adapter, req.Overrides, req.ReleaseType)
	if err != nil {
		return nil, errors.Wrapf(err, errCheckRelease, crateName)
	}
	return report, nil
}

// resolveBaselineRequest turns req's baseline selection (a rustdoc dump, a
// pinned rev, a pinned version, or registry selection) into the
// acquire.Request that
// yields the baseline snapshot.
func (o *Orchestrator) resolveBaselineRequest(ctx context.Context, crateName string, req PackageRequest, current *acquire.SnapshotHandle) (acquire.Request, error) {
	if req.BaselineRustdoc != "" {
		return acquire.Request{Kind: acquire.SourceRaw, RawJSONPath: req.BaselineRustdoc}, nil
	}

	if req.BaselineRev != "" {
		dir := filepath.Join(o.BuildRoot, fmt.Sprintf("baseline-rev-%s", sanitizeDirComponent(req.BaselineRev)))
		manifestPath, err := acquire.CheckoutBaselineRevision(o.ProjectRoot, req.BaselineRev, dir)
		if err != nil {
			return acquire.Request{}, errors.Wrapf(err, errResolveBaselineRev, crateName)
		}
		return acquire.Request{Kind: acquire.SourceLocal, ManifestPath: manifestPath, Features: req.BaselineFeatures}, nil
	}

	if o.Registry == nil {
		return acquire.Request{}, errors.Errorf(errNoBaselineSource, crateName)
	}

	records, err := o.Registry.Versions(crateName)
	if err != nil {
		return acquire.Request{}, errors.Wrapf(err, errRegistryLookup, crateName)
	}

	var pinned *mastersemver.Version
	if req.BaselineVersion != "" {
		pinned, err = mastersemver.NewVersion(req.BaselineVersion)
		if err != nil {
			return acquire.Request{}, errors.Wrapf(err, errSelectBaseline, crateName)
		}
	}

	var currentVer *mastersemver.Version
	if current.Crate.CrateVersion != "" {
		if v, parseErr := mastersemver.NewVersion(current.Crate.CrateVersion); parseErr == nil {
			currentVer = v
		}
	}

	baselineVer, err := registry.SelectBaseline(crateName, records, currentVer, pinned)
	if err != nil {
		return acquire.Request{}, errors.Wrapf(err, errSelectBaseline, crateName)
	}

	return acquire.Request{
		Kind:      acquire.SourceRegistry,
		CrateName: crateName,
		Version:   baselineVer.String(),
		Features:  req.BaselineFeatures,
	}, nil
}

func sanitizeDirComponent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
