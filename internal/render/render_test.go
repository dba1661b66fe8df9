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
	"strings"
	"testing"

	"github.com/cratecheck/cratecheck/internal/check"
	"github.com/cratecheck/cratecheck/internal/lint"
	"github.com/cratecheck/cratecheck/internal/override"
	"github.com/cratecheck/cratecheck/internal/semver"
)

func TestRenderRowUsesTemplate(t *testing.T) {
	l := &lint.Lint{ID: "enum_missing", PerResultErrorTemplate: "enum {{.name}} removed from {{.path}}"}
	row := map[string]any{"name": "Foo", "path": "demo::Foo", "span_filename": "src/lib.rs", "span_begin_line": 1}

	msg, err := RenderRow(l, row)
	if err != nil {
		t.Fatalf("RenderRow: %v", err)
	}
	if msg != "enum Foo removed from demo::Foo" {
		t.Errorf("msg = %q", msg)
	}
}

func TestRenderRowFallsBackToJSON(t *testing.T) {
	l := &lint.Lint{ID: "enum_missing"}
	row := map[string]any{"name": "Foo", "span_filename": "src/lib.rs", "span_begin_line": 1}

	msg, err := RenderRow(l, row)
	if err != nil {
		t.Fatalf("RenderRow: %v", err)
	}
	if !strings.Contains(msg, `"name": "Foo"`) {
		t.Errorf("expected a JSON fallback, got %q", msg)
	}
}

func TestSortRowsByFilenameThenLine(t *testing.T) {
	rows := []map[string]any{
		{"span_filename": "b.rs", "span_begin_line": 1},
		{"span_filename": "a.rs", "span_begin_line": 2},
		{"span_filename": "a.rs", "span_begin_line": 1},
	}
	SortRows(rows)
	if rows[0]["span_begin_line"] != 1 || rows[0]["span_filename"] != "a.rs" {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1]["span_begin_line"] != 2 || rows[1]["span_filename"] != "a.rs" {
		t.Errorf("rows[1] = %+v", rows[1])
	}
	if rows[2]["span_filename"] != "b.rs" {
		t.Errorf("rows[2] = %+v", rows[2])
	}
}

func TestRequireSpanFields(t *testing.T) {
	if err := RequireSpanFields("x", map[string]any{"span_filename": "a.rs", "span_begin_line": 1}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := RequireSpanFields("x", map[string]any{"span_begin_line": 1}); err == nil {
		t.Error("expected an error for a missing span_filename")
	}
	if err := RequireSpanFields("x", map[string]any{"span_filename": "a.rs"}); err == nil {
		t.Error("expected an error for a missing span_begin_line")
	}
}

func TestFormatSpanWithAndWithoutColumn(t *testing.T) {
	noCol := FormatSpan(map[string]any{"span_filename": "a.rs", "span_begin_line": 3})
	if !strings.Contains(noCol, "a.rs:3") {
		t.Errorf("FormatSpan = %q", noCol)
	}
	withCol := FormatSpan(map[string]any{"span_filename": "a.rs", "span_begin_line": 3, "span_begin_column": 5})
	if !strings.Contains(withCol, "a.rs:3:5") {
		t.Errorf("FormatSpan = %q", withCol)
	}
}

func TestRenderCrateReportIncludesSummary(t *testing.T) {
	major := semver.Major
	l := &lint.Lint{ID: "enum_missing", HumanReadableName: "enum removed", RequiredUpdate: semver.RequiredMajor}
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

	var buf bytes.Buffer
	r := &Renderer{Writer: &buf, Plain: true}
	if err := r.RenderCrateReport(report); err != nil {
		t.Fatalf("RenderCrateReport: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "enum_missing") {
		t.Errorf("output missing lint id: %q", out)
	}
	if !strings.Contains(out, "semver requires new major version: 1 major and 0 minor checks failed") {
		t.Errorf("output missing summary line: %q", out)
	}
}

func TestRenderCrateReportCleanPass(t *testing.T) {
	report := &check.CrateReport{CrateName: "demo", DetectedBump: semver.NotChanged}
	var buf bytes.Buffer
	r := &Renderer{Writer: &buf, Plain: true}
	if err := r.RenderCrateReport(report); err != nil {
		t.Fatalf("RenderCrateReport: %v", err)
	}
	if !strings.Contains(buf.String(), "no semver-relevant changes detected") {
		t.Errorf("output = %q", buf.String())
	}
}
