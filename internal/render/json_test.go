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

package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/cratecheck/cratecheck/internal/check"
	"github.com/cratecheck/cratecheck/internal/lint"
	"github.com/cratecheck/cratecheck/internal/orchestrator"
	"github.com/cratecheck/cratecheck/internal/override"
	"github.com/cratecheck/cratecheck/internal/semver"
)

func TestBuildJSONReportRendersRowsAndBump(t *testing.T) {
	major := semver.Major
	l := &lint.Lint{ID: "enum_missing", HumanReadableName: "enum removed", RequiredUpdate: semver.RequiredMajor, PerResultErrorTemplate: "enum {{.name}} removed"}
	report := &check.CrateReport{
		CrateName:    "demo",
		DetectedBump: semver.NotChanged,
		RequiredBump: &major,
		Results: []check.LintOutcome{
			{
				Lint:           l,
				EffectiveLevel: override.Deny,
				Required:       semver.RequiredMajor,
				Rows: []map[string]any{
					{"span_filename": "src/lib.rs", "span_begin_line": 1, "name": "WillBeRemoved"},
				},
			},
		},
	}

	mcr := &orchestrator.MultiCrateReport{Packages: []*check.CrateReport{report}}
	out, err := BuildJSONReport(mcr)
	if err != nil {
		t.Fatalf("BuildJSONReport: %v", err)
	}
	if !out.Breaking {
		t.Error("expected Breaking to be true when a package requires a bump")
	}
	if len(out.Packages) != 1 {
		t.Fatalf("len(Packages) = %d", len(out.Packages))
	}
	pkg := out.Packages[0]
	if pkg.RequiredBump != "major" || pkg.SuggestedBump != "major" {
		t.Errorf("pkg.RequiredBump = %q, SuggestedBump = %q", pkg.RequiredBump, pkg.SuggestedBump)
	}
	if len(pkg.Lints) != 1 {
		t.Fatalf("len(Lints) = %d", len(pkg.Lints))
	}
	row := pkg.Lints[0].Rows[0]
	if row.Span != "src/lib.rs:1" {
		t.Errorf("row.Span = %q", row.Span)
	}
	if row.Message != "enum WillBeRemoved removed" {
		t.Errorf("row.Message = %q", row.Message)
	}
}

func TestBuildJSONReportIncludesFailures(t *testing.T) {
	mcr := &orchestrator.MultiCrateReport{
		Failures: []orchestrator.PackageFailure{
			{ManifestPath: "/crates/demo/Cargo.toml", Err: errors.New("boom")},
		},
	}
	out, err := BuildJSONReport(mcr)
	if err != nil {
		t.Fatalf("BuildJSONReport: %v", err)
	}
	if !out.Breaking {
		t.Error("expected Breaking to be true when there is a package failure")
	}
	if len(out.Failures) != 1 || out.Failures[0].Error != "boom" {
		t.Errorf("Failures = %+v", out.Failures)
	}
}

func TestPlainSpanOmitsColorCodes(t *testing.T) {
	span := plainSpan(map[string]any{"span_filename": "a.rs", "span_begin_line": 3, "span_begin_column": 5})
	if span != "a.rs:3:5" {
		t.Errorf("plainSpan = %q", span)
	}
	if strings.Contains(span, "\x1b[") {
		t.Errorf("plainSpan leaked an ANSI escape: %q", span)
	}

	noCol := plainSpan(map[string]any{"span_filename": "a.rs", "span_begin_line": 3})
	if noCol != "a.rs:3" {
		t.Errorf("plainSpan = %q", noCol)
	}
}

func TestWriteJSONReportProducesIndentedJSON(t *testing.T) {
	mcr := &orchestrator.MultiCrateReport{
		Packages: []*check.CrateReport{
			{CrateName: "demo", DetectedBump: semver.NotChanged},
		},
	}
	var buf bytes.Buffer
	if err := WriteJSONReport(&buf, mcr); err != nil {
		t.Fatalf("WriteJSONReport: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"crate_name": "demo"`) {
		t.Errorf("WriteJSONReport output missing crate_name: %s", out)
	}
	if !strings.Contains(out, "\n  ") {
		t.Errorf("expected pretty-printed JSON, got %s", out)
	}
}
