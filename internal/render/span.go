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
	"strings"

	"github.com/fatih/color"
)

var spanColor = color.New(color.FgCyan)

// FormatSpan renders a row's primary span as "file:line[:col]", the
// conventional compiler-diagnostic shape. Column is only printed when the
// row carries one.
func FormatSpan(row map[string]any) string {
	filename, _ := row["span_filename"].(string)
	line := toInt(row["span_begin_line"])
	if col, ok := row["span_begin_column"]; ok {
		if c := toInt(col); c > 0 {
			return spanColor.Sprintf("%s:%d:%d", filename, line, c)
		}
	}
	return spanColor.Sprintf("%s:%d", filename, line)
}

// FormatMultiSpan renders every "span_filename"/"span_begin_line"-shaped
// field pair a witness merge may have added under a different prefix (e.g. a
// trait-provided method's own span alongside the impl's), one per line. Only
// the primary span ("span_filename"/"span_begin_line") is guaranteed; extra
// prefixed pairs are best-effort and silently skipped if incomplete.
func FormatMultiSpan(row map[string]any, extraPrefixes ...string) string {
	lines := []string{FormatSpan(row)}
	for _, prefix := range extraPrefixes {
		filename, ok := row[prefix+"_filename"].(string)
		if !ok || filename == "" {
			continue
		}
		lineVal, ok := row[prefix+"_begin_line"]
		if !ok {
			continue
		}
		lines = append(lines, spanColor.Sprintf("%s:%d", filename, toInt(lineVal)))
	}
	return strings.Join(lines, "\n  ")
}

// implementationLink points at the TOML definition backing a lint, mirroring
// the upstream tool's convention of linking each diagnostic back to its own
// rule source for auditability.
func implementationLink(lintID string) string {
	return fmt.Sprintf("https://github.com/cratecheck/cratecheck/blob/main/internal/lint/lints/%s.toml", lintID)
}
