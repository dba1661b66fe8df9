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
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/cratecheck/cratecheck/internal/check"
	"github.com/cratecheck/cratecheck/internal/override"
)

var (
	statusFail = color.New(color.FgRed, color.Bold).Sprint("✗")
	statusWarn = color.New(color.FgYellow, color.Bold).Sprint("⚠")
	statusPass = color.New(color.FgGreen).Sprint("✓")
)

// Renderer formats a check.CrateReport for a terminal. Plain disables all
// color codes, the way upterm.ObjectPrinter's Quiet/Pretty flags gate
// pterm's global styling; a plain Renderer{} prints in color.
type Renderer struct {
	Writer io.Writer
	Plain  bool
}

// RenderCrateReport prints every failing lint as a block (id, human name,
// description, reference link, implementation link, one line per result
// row), then a final summary line.
func (r *Renderer) RenderCrateReport(report *check.CrateReport) error {
	if r.Plain {
		color.NoColor = true
	}

	failing := report.FailingResults()
	for _, outcome := range failing {
		if err := r.renderOutcome(outcome); err != nil {
			return err
		}
	}

	r.renderSummary(report)
	return nil
}

func (r *Renderer) renderOutcome(outcome check.LintOutcome) error {
	l := outcome.Lint
	symbol := statusFail
	if outcome.EffectiveLevel == override.Warn {
		symbol = statusWarn
	}

	fmt.Fprintf(r.Writer, "%s %s: %s\n", symbol, l.ID, l.HumanReadableName)
	if l.Description != "" {
		fmt.Fprintf(r.Writer, "  %s\n", l.Description)
	}
	if l.ReferenceLink != "" {
		fmt.Fprintf(r.Writer, "  reference: %s\n", l.ReferenceLink)
	}
	fmt.Fprintf(r.Writer, "  implementation: %s\n", implementationLink(l.ID))

	rows := make([]map[string]any, len(outcome.Rows))
	copy(rows, outcome.Rows)
	SortRows(rows)

	for _, row := range rows {
		msg, err := RenderRow(l, row)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.Writer, "  %s\n    %s\n", FormatSpan(row), msg)
	}
	fmt.Fprintln(r.Writer)
	return nil
}

func (r *Renderer) renderSummary(report *check.CrateReport) {
	var majors, minors int
	for _, res := range report.FailingResults() {
		if res.EffectiveLevel != override.Deny {
			continue
		}
		if res.Required.AsActual().String() == "major" {
			majors++
		} else {
			minors++
		}
	}

	if !report.Breaking() {
		pterm.Success.WithWriter(r.Writer).Printfln("%s %s: no semver-relevant changes detected", statusPass, report.CrateName)
		return
	}

	pterm.Error.WithWriter(r.Writer).Printfln(
		"semver requires new %s version: %d major and %d minor checks failed",
		report.RequiredBump.String(), majors, minors,
	)
}
