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

// Package check implements the release-check pipeline: given a
// graph.Adapter over a (current, baseline) crate pair, it classifies the
// version delta, selects and runs the lints that delta doesn't already
// cover, and aggregates a CrateReport.
package check

import (
	"time"

	"github.com/cratecheck/cratecheck/internal/lint"
	"github.com/cratecheck/cratecheck/internal/override"
	"github.com/cratecheck/cratecheck/internal/semver"
)

// LintOutcome is one executed lint's result: which rows it produced (if
// any), under what effective level and required bump it ran.
type LintOutcome struct {
	Lint           *lint.Lint
	EffectiveLevel override.LintLevel
	Required       semver.RequiredSemverUpdate
	Rows           []map[string]any
	Duration       time.Duration
}

// Passed reports whether this lint produced zero rows.
func (o LintOutcome) Passed() bool { return len(o.Rows) == 0 }

// CrateReport is the aggregated outcome of one crate's release check.
type CrateReport struct {
	CrateName string

	// DetectedBump is the version delta between baseline and current,
	// either classified or supplied as an override.
	DetectedBump semver.ActualSemverUpdate

	// RequiredBump is the maximum required_update across every failing,
	// Deny-level lint; nil if nothing requires a bump.
	RequiredBump *semver.ActualSemverUpdate

	// Results holds every lint that was actually executed (effective level
	// above Allow, and not already covered by DetectedBump).
	Results []LintOutcome

	// Skipped names lints whose effective level was Allow, or whose
	// required_update the detected bump already covers ("unnecessary").
	Skipped []SkippedLint
}

// SkippedLint records why a lint in the catalog was not executed.
type SkippedLint struct {
	ID     string
	Reason SkipReason
}

// SkipReason enumerates why a lint was not run.
type SkipReason string

const (
	SkipAllowed     SkipReason = "allowed"
	SkipUnnecessary SkipReason = "unnecessary"
)

// Breaking reports whether this crate's check requires a version bump.
func (r *CrateReport) Breaking() bool { return r.RequiredBump != nil }

// FailingResults returns the subset of Results with at least one row.
func (r *CrateReport) FailingResults() []LintOutcome {
	out := make([]LintOutcome, 0, len(r.Results))
	for _, res := range r.Results {
		if !res.Passed() {
			out = append(out, res)
		}
	}
	return out
}
