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
	"encoding/json"
	"fmt"
	"io"

	"github.com/cratecheck/cratecheck/internal/check"
	"github.com/cratecheck/cratecheck/internal/orchestrator"
)

// JSONRow is one lint result row, with its span pre-formatted and its
// rendered message resolved the same way the human-readable path resolves
// it, so neither output misses a diagnostic the other has.
type JSONRow struct {
	Span    string         `json:"span"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// JSONLintOutcome is one executed lint's JSON shape.
type JSONLintOutcome struct {
	ID                string    `json:"id"`
	HumanReadableName string    `json:"human_readable_name"`
	Level             string    `json:"lint_level"`
	RequiredUpdate    string    `json:"required_update"`
	Passed            bool      `json:"passed"`
	Rows              []JSONRow `json:"rows,omitempty"`
}

// JSONSkippedLint names a catalog lint that never ran.
type JSONSkippedLint struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// JSONCrateReport is one package's JSON shape.
type JSONCrateReport struct {
	CrateName     string            `json:"crate_name"`
	DetectedBump  string            `json:"detected_bump"`
	RequiredBump  string            `json:"required_bump,omitempty"`
	Lints         []JSONLintOutcome `json:"lints"`
	Skipped       []JSONSkippedLint `json:"skipped,omitempty"`
	SuggestedBump string            `json:"suggested_version_bump,omitempty"`
}

// JSONPackageFailure is one package's resolve/check failure.
type JSONPackageFailure struct {
	ManifestPath string `json:"manifest_path"`
	Error        string `json:"error"`
}

// JSONReport is the full multi-crate report, the shape a CI pipeline parses
// from `--output json`.
type JSONReport struct {
	Breaking bool                 `json:"breaking"`
	Packages []JSONCrateReport    `json:"packages"`
	Failures []JSONPackageFailure `json:"failures,omitempty"`
}

// BuildJSONReport converts an orchestrator.MultiCrateReport into its
// serializable shape, rendering each row's message through the same
// per-lint template the human-readable renderer uses.
func BuildJSONReport(mcr *orchestrator.MultiCrateReport) (JSONReport, error) {
	out := JSONReport{Breaking: mcr.Breaking()}
	for _, pkg := range mcr.Packages {
		jc, err := buildJSONCrateReport(pkg)
		if err != nil {
			return JSONReport{}, err
		}
		out.Packages = append(out.Packages, jc)
	}
	for _, f := range mcr.Failures {
		out.Failures = append(out.Failures, JSONPackageFailure{ManifestPath: f.ManifestPath, Error: f.Err.Error()})
	}
	return out, nil
}

func buildJSONCrateReport(report *check.CrateReport) (JSONCrateReport, error) {
	jc := JSONCrateReport{
		CrateName:    report.CrateName,
		DetectedBump: report.DetectedBump.String(),
	}
	if report.RequiredBump != nil {
		jc.RequiredBump = report.RequiredBump.String()
		jc.SuggestedBump = jc.RequiredBump
	}
	for _, outcome := range report.Results {
		jo := JSONLintOutcome{
			ID:                outcome.Lint.ID,
			HumanReadableName: outcome.Lint.HumanReadableName,
			Level:             string(outcome.EffectiveLevel),
			RequiredUpdate:    outcome.Required.AsActual().String(),
			Passed:            outcome.Passed(),
		}
		rows := make([]map[string]any, len(outcome.Rows))
		copy(rows, outcome.Rows)
		SortRows(rows)
		for _, row := range rows {
			msg, err := RenderRow(outcome.Lint, row)
			if err != nil {
				return JSONCrateReport{}, err
			}
			jo.Rows = append(jo.Rows, JSONRow{Span: plainSpan(row), Message: msg, Data: row})
		}
		jc.Lints = append(jc.Lints, jo)
	}
	for _, s := range report.Skipped {
		jc.Skipped = append(jc.Skipped, JSONSkippedLint{ID: s.ID, Reason: string(s.Reason)})
	}
	return jc, nil
}

// plainSpan renders a row's span without the human renderer's color codes:
// JSON output is consumed by tooling, not a terminal.
func plainSpan(row map[string]any) string {
	filename, _ := row["span_filename"].(string)
	line := toInt(row["span_begin_line"])
	if col, ok := row["span_begin_column"]; ok {
		if c := toInt(col); c > 0 {
			return fmt.Sprintf("%s:%d:%d", filename, line, c)
		}
	}
	return fmt.Sprintf("%s:%d", filename, line)
}

// WriteJSONReport encodes mcr's JSON shape to w, pretty-printed so it stays
// readable when a human pipes `--output json` straight to a terminal.
func WriteJSONReport(w io.Writer, mcr *orchestrator.MultiCrateReport) error {
	report, err := BuildJSONReport(mcr)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
