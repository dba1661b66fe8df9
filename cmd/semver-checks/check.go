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

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/cratecheck/cratecheck/internal/acquire"
	"github.com/cratecheck/cratecheck/internal/check"
	"github.com/cratecheck/cratecheck/internal/config"
	"github.com/cratecheck/cratecheck/internal/lint"
	"github.com/cratecheck/cratecheck/internal/orchestrator"
	"github.com/cratecheck/cratecheck/internal/override"
	"github.com/cratecheck/cratecheck/internal/progress"
	"github.com/cratecheck/cratecheck/internal/registry"
	"github.com/cratecheck/cratecheck/internal/render"
	"github.com/cratecheck/cratecheck/internal/semver"
	"github.com/cratecheck/cratecheck/internal/snapshot"
)

const (
	errReadManifestForName = "failed to read package name from %q"
	errBuildCache          = "failed to open the snapshot cache"
	errFetchRegistry       = "failed to fetch the crates.io index"
	errDiscoverWorkspace   = "failed to discover workspace member packages"
	errWalkPackages        = "release check failed"
	errResolveFeatures     = "failed to resolve feature selection for %q"
	errUnknownReleaseType  = "unknown --release-type %q"
	errWriteReport         = "failed to write report"
)

// checkCmd is the primary command: it resolves a current and baseline
// snapshot for one or more packages and runs the release-check engine over
// each pair.
type checkCmd struct {
	Manifest string `arg:"" optional:"" default:"Cargo.toml" help:"Path to the crate's manifest."`

	Workspace bool     `help:"Check every workspace member instead of just the root package."`
	Package   []string `help:"Limit checking to these package names. Requires --workspace."`
	Exclude   []string `help:"Exclude these package names. Requires --workspace."`

	BaselineVersion string `help:"Exact baseline registry version, skipping baseline selection."`
	BaselineRev     string `help:"Git revision of --baseline-root to use as the baseline instead of a registry version."`
	BaselineRoot    string `default:"." help:"Root of this project's own git repository, for --baseline-rev."`
	BaselineRustdoc string `help:"Path to a pre-generated rustdoc JSON dump to use as the baseline snapshot, skipping acquisition entirely."`
	ReleaseType     string `enum:"major,minor,patch," default:"" help:"Assume this release type instead of classifying the version delta. Can be: major, minor, patch."`

	AllFeatures          bool     `help:"Enable every feature named in the crate's own [features] table."`
	DefaultFeatures      bool     `default:"true" negatable:"" help:"Enable default features when generating snapshots."`
	OnlyExplicitFeatures bool     `help:"Disable default features; enable only --features."`
	Features             []string `help:"Extra features to enable for both the baseline and current snapshots."`
	BaselineFeatures     []string `help:"Features to enable for the baseline snapshot only, overriding --features."`
	CurrentFeatures      []string `help:"Features to enable for the current snapshot only, overriding --features."`

	Target    string `help:"Target triple to generate documentation for."`
	TargetDir string `default:"target/semver-checks" help:"Directory for the snapshot cache and scratch build workspaces."`

	NoCacheRead  bool `help:"Never reuse a cached snapshot."`
	NoCacheWrite bool `help:"Never write a resolved snapshot to the cache."`
}

// Run resolves req's packages, acquires their snapshots, runs the
// release-check engine, and renders the aggregate report. It returns a
// non-nil error only for a run-wide failure (bad flags, registry fetch
// failure); a single package's resolve/check failure is recorded in the
// report instead.
func (c *checkCmd) Run(ctx context.Context, log logging.Logger, quiet config.QuietFlag, format config.Format, pretty config.PrettyFlag) error {
	fs := afero.NewOsFs()

	manifestPath, err := filepath.Abs(c.Manifest)
	if err != nil {
		return err
	}

	packages := []string{manifestPath}
	if c.Workspace {
		packages, err = orchestrator.DiscoverPackages(fs, manifestPath)
		if err != nil {
			return errors.Wrap(err, errDiscoverWorkspace)
		}
		packages, err = filterPackages(fs, packages, c.Package, c.Exclude)
		if err != nil {
			return err
		}
	}

	releaseType, err := parseReleaseType(c.ReleaseType)
	if err != nil {
		return err
	}

	cache, err := acquire.NewCache(fs, c.TargetDir)
	if err != nil {
		return errors.Wrap(err, errBuildCache)
	}
	buildRoot := filepath.Join(c.TargetDir, "build")
	resolver := acquire.NewResolver(fs, buildRoot, cache)

	var reg *registry.Index
	if c.BaselineRustdoc == "" && c.BaselineRev == "" {
		reg, err = registry.Fetch(ctx)
		if err != nil {
			return errors.Wrap(err, errFetchRegistry)
		}
	}

	reporter := progress.New(log, bool(quiet))
	engine := check.New(lint.Default())
	engine.Progress = reporter.CheckFunc()

	orch := &orchestrator.Orchestrator{
		Resolver:    resolver,
		Engine:      engine,
		Registry:    reg,
		ProjectRoot: c.BaselineRoot,
		BuildRoot:   buildRoot,
		CachePolicy: acquire.CachePolicy{Read: !c.NoCacheRead, Write: !c.NoCacheWrite},
		GenSettings: acquire.GenSettings{Target: c.Target, TargetDir: c.TargetDir, Quiet: bool(quiet)},
		Progress:    reporter.AcquireFunc(),
	}

	workspaceSrc := config.NewFSSource(fs, manifestPath)
	workspaceRaw, err := workspaceSrc.WorkspaceOverrides()
	if err != nil {
		return err
	}

	features := featureFlags{
		AllFeatures:          c.AllFeatures,
		DefaultFeatures:      c.DefaultFeatures,
		OnlyExplicitFeatures: c.OnlyExplicitFeatures,
		Features:             c.Features,
		BaselineFeatures:     c.BaselineFeatures,
		CurrentFeatures:      c.CurrentFeatures,
	}

	reqs := make([]orchestrator.PackageRequest, 0, len(packages))
	for _, pkgManifest := range packages {
		req, err := c.buildPackageRequest(fs, pkgManifest, workspaceRaw, features, releaseType)
		if err != nil {
			return err
		}
		reqs = append(reqs, req)
	}

	report, err := orch.Walk(ctx, reqs)
	if err != nil {
		return errors.Wrap(err, errWalkPackages)
	}

	if err := renderReport(os.Stdout, report, format, !bool(pretty)); err != nil {
		return errors.Wrap(err, errWriteReport)
	}
	if report.Breaking() {
		os.Exit(1)
	}
	return nil
}

func (c *checkCmd) buildPackageRequest(fs afero.Fs, manifestPath string, workspaceRaw map[string]any, features featureFlags, releaseType *semver.ActualSemverUpdate) (orchestrator.PackageRequest, error) {
	current, baseline, err := features.resolve(fs, manifestPath)
	if err != nil {
		return orchestrator.PackageRequest{}, errors.Wrapf(err, errResolveFeatures, manifestPath)
	}

	data, err := afero.ReadFile(fs, manifestPath)
	if err != nil {
		return orchestrator.PackageRequest{}, err
	}
	meta, err := snapshot.ParsePackageMetadata(data)
	if err != nil {
		return orchestrator.PackageRequest{}, err
	}

	stack, err := config.ResolveStack(workspaceRaw, meta, override.OverrideMap{})
	if err != nil {
		return orchestrator.PackageRequest{}, err
	}

	return orchestrator.PackageRequest{
		ManifestPath:     manifestPath,
		BaselineVersion:  c.BaselineVersion,
		BaselineRev:      c.BaselineRev,
		BaselineRustdoc:  c.BaselineRustdoc,
		Features:         current,
		BaselineFeatures: baseline,
		Overrides:        stack,
		ReleaseType:      releaseType,
	}, nil
}

func parseReleaseType(s string) (*semver.ActualSemverUpdate, error) {
	var u semver.ActualSemverUpdate
	switch s {
	case "":
		return nil, nil
	case "major":
		u = semver.Major
	case "minor":
		u = semver.Minor
	case "patch":
		u = semver.Patch
	default:
		return nil, errors.Errorf(errUnknownReleaseType, s)
	}
	return &u, nil
}

func filterPackages(fs afero.Fs, packages, include, exclude []string) ([]string, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return packages, nil
	}
	includeSet := toSet(include)
	excludeSet := toSet(exclude)

	out := make([]string, 0, len(packages))
	for _, manifestPath := range packages {
		data, err := afero.ReadFile(fs, manifestPath)
		if err != nil {
			return nil, errors.Wrapf(err, errReadManifestForName, manifestPath)
		}
		meta, err := snapshot.ParsePackageMetadata(data)
		if err != nil {
			return nil, errors.Wrapf(err, errReadManifestForName, manifestPath)
		}
		if excludeSet[meta.Name] {
			continue
		}
		if len(includeSet) > 0 && !includeSet[meta.Name] {
			continue
		}
		out = append(out, manifestPath)
	}
	return out, nil
}

func toSet(vals []string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	out := make(map[string]bool, len(vals))
	for _, v := range vals {
		out[v] = true
	}
	return out
}

func renderReport(w *os.File, report *orchestrator.MultiCrateReport, format config.Format, plain bool) error {
	if format == config.JSON {
		return render.WriteJSONReport(w, report)
	}
	for _, failure := range report.Failures {
		fmt.Fprintf(w, "error: %s: %v\n", failure.ManifestPath, failure.Err)
	}
	renderer := &render.Renderer{Writer: w, Plain: plain}
	for _, crate := range report.Packages {
		if err := renderer.RenderCrateReport(crate); err != nil {
			return err
		}
	}
	return nil
}
