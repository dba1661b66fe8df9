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

package check

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cratecheck/cratecheck/internal/graph"
	"github.com/cratecheck/cratecheck/internal/lint"
	"github.com/cratecheck/cratecheck/internal/override"
	"github.com/cratecheck/cratecheck/internal/query"
	"github.com/cratecheck/cratecheck/internal/semver"
)

// documentDepth bounds how far graph.Document walks from the CrateDiff
// root. It must comfortably cover Crate → item → impl → method, the
// deepest edge chain any lint in the catalog traverses.
const documentDepth = 8

// ProgressFunc reports a non-fatal, user-visible event during a check (e.g.
// a missing version on one side of the diff).
type ProgressFunc func(msg string, err error)

// Engine runs the release-check pipeline against a fixed lint catalog.
type Engine struct {
	Catalog *lint.Catalog

	// Concurrency bounds how many lints run at once; <= 0 means one worker
	// per available CPU (runtime.GOMAXPROCS(0)).
	Concurrency int

	Progress ProgressFunc

	compiled map[string]*query.Program
}

// New returns an Engine over the given catalog, ready to compile and cache
// every lint's query on first use.
func New(catalog *lint.Catalog) *Engine {
	return &Engine{Catalog: catalog, compiled: map[string]*query.Program{}}
}

func (e *Engine) progress(msg string, err error) {
	if e.Progress != nil {
		e.Progress(msg, err)
	}
}

func (e *Engine) program(l *lint.Lint) (*query.Program, error) {
	if p, ok := e.compiled[l.ID]; ok {
		return p, nil
	}
	p, err := query.Compile(l.Query)
	if err != nil {
		return nil, fmt.Errorf("check: lint %q: %w", l.ID, err)
	}
	e.compiled[l.ID] = p
	return p, nil
}

// CheckRelease runs the full pipeline for one crate: classify the version
// delta (or accept releaseType verbatim), select lints the delta doesn't
// already cover, run them in parallel, and aggregate a CrateReport.
func (e *Engine) CheckRelease(ctx context.Context, crateName string, adapter *graph.Adapter, stack override.OverrideStack, releaseType *semver.ActualSemverUpdate) (*CrateReport, error) {
	if !adapter.HasBaseline() {
		return nil, errors.New("check: release check requires a baseline crate")
	}

	detected, err := e.detectDelta(adapter, releaseType)
	if err != nil {
		return nil, err
	}

	roots, err := adapter.Roots("CrateDiff")
	if err != nil {
		return nil, errors.Wrap(err, "check: building CrateDiff root")
	}
	doc, err := graph.Document(roots[0], documentDepth)
	if err != nil {
		return nil, errors.Wrap(err, "check: rendering query document")
	}

	report := &CrateReport{CrateName: crateName, DetectedBump: detected}

	type selected struct {
		idx  int
		l    *lint.Lint
		eff  override.Effective
		prog *query.Program
	}
	var toRun []selected

	all := e.Catalog.All()
	for i, l := range all {
		eff := stack.Resolve(l.ID, l.LintLevel, l.RequiredUpdate)
		if eff.Level == override.Allow {
			report.Skipped = append(report.Skipped, SkippedLint{ID: l.ID, Reason: SkipAllowed})
			continue
		}
		if detected.Supports(eff.RequiredUpdate) {
			report.Skipped = append(report.Skipped, SkippedLint{ID: l.ID, Reason: SkipUnnecessary})
			continue
		}
		prog, err := e.program(l)
		if err != nil {
			return nil, err
		}
		toRun = append(toRun, selected{idx: i, l: l, eff: eff, prog: prog})
	}

	results := make([]LintOutcome, len(toRun))
	g, _ := errgroup.WithContext(ctx)
	limit := e.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for slot, s := range toRun {
		slot, s := slot, s
		g.Go(func() error {
			start := time.Now()
			rows, err := s.prog.Run(doc, s.l.Arguments)
			if err != nil {
				return fmt.Errorf("check: lint %q query execution failed: %w", s.l.ID, err)
			}
			typed := make([]map[string]any, 0, len(rows))
			for _, r := range rows {
				m, ok := r.(map[string]any)
				if !ok {
					return fmt.Errorf("check: lint %q produced a non-object row: %T", s.l.ID, r)
				}
				typed = append(typed, m)
			}
			results[slot] = LintOutcome{
				Lint:           s.l,
				EffectiveLevel: s.eff.Level,
				Required:       s.eff.RequiredUpdate,
				Rows:           typed,
				Duration:       time.Since(start),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.Results = results

	var required *semver.ActualSemverUpdate
	for _, res := range results {
		if res.Passed() || res.EffectiveLevel != override.Deny {
			continue
		}
		actual := res.Required.AsActual()
		if required == nil {
			required = &actual
		} else {
			m := semver.Max(*required, actual)
			required = &m
		}
	}
	report.RequiredBump = required

	return report, nil
}

func (e *Engine) detectDelta(adapter *graph.Adapter, releaseType *semver.ActualSemverUpdate) (semver.ActualSemverUpdate, error) {
	if releaseType != nil {
		return *releaseType, nil
	}

	baselineVersion, _ := adapter.BaselineVersion()
	currentVersion := adapter.CurrentVersion()
	if baselineVersion == "" || currentVersion == "" {
		e.progress("no version on one or both sides of the diff; assuming no version change", nil)
		return semver.NotChanged, nil
	}

	update, ok := semver.Classify(baselineVersion, currentVersion)
	if !ok {
		e.progress(fmt.Sprintf("could not parse versions %q / %q; assuming no version change", baselineVersion, currentVersion), nil)
		return semver.NotChanged, nil
	}
	return update, nil
}
