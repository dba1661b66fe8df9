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

// Package render instantiates per-result message templates against lint
// output rows and pretty-prints the result, including source spans, to a
// terminal. text/template is used rather than a third-party templating
// engine: the per-result templates here are one-line field substitutions
// with no need for layouts, partials, or a custom expression language.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"text/template"

	"github.com/pkg/errors"

	"github.com/cratecheck/cratecheck/internal/lint"
)

// templateCache compiles each lint's per-result template once and reuses it
// across every row and every crate in a run.
type templateCache struct {
	mu   sync.Mutex
	byID map[string]*template.Template
}

func newTemplateCache() *templateCache {
	return &templateCache{byID: map[string]*template.Template{}}
}

func (c *templateCache) get(l *lint.Lint) (*template.Template, error) {
	if l.PerResultErrorTemplate == "" {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.byID[l.ID]; ok {
		return t, nil
	}
	t, err := template.New(l.ID).Parse(l.PerResultErrorTemplate)
	if err != nil {
		return nil, errors.Wrapf(err, "render: parsing per_result_error_template for lint %q", l.ID)
	}
	c.byID[l.ID] = t
	return t, nil
}

// RenderRow instantiates l's per-result template against row, falling back
// to a pretty-printed JSON dump of the row when the lint ships no template.
func RenderRow(l *lint.Lint, row map[string]any) (string, error) {
	return defaultCache.render(l, row)
}

var defaultCache = newTemplateCache()

func (c *templateCache) render(l *lint.Lint, row map[string]any) (string, error) {
	t, err := c.get(l)
	if err != nil {
		return "", err
	}
	if t == nil {
		return prettyJSON(row)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, row); err != nil {
		return "", errors.Wrapf(err, "render: executing per_result_error_template for lint %q", l.ID)
	}
	return buf.String(), nil
}

func prettyJSON(row map[string]any) (string, error) {
	js, err := json.MarshalIndent(row, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "render: marshaling result row")
	}
	return string(js), nil
}

// SortRows orders rows deterministically by (span_filename, span_begin_line).
func SortRows(rows []map[string]any) {
	sort.SliceStable(rows, func(i, j int) bool {
		fi, _ := rows[i]["span_filename"].(string)
		fj, _ := rows[j]["span_filename"].(string)
		if fi != fj {
			return fi < fj
		}
		li := toInt(rows[i]["span_begin_line"])
		lj := toInt(rows[j]["span_begin_line"])
		return li < lj
	})
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// RequireSpanFields validates the span contract every lint row must
// satisfy: non-null span_filename and span_begin_line.
func RequireSpanFields(lintID string, row map[string]any) error {
	filename, ok := row["span_filename"].(string)
	if !ok || filename == "" {
		return fmt.Errorf("render: lint %q produced a row with no span_filename: %+v", lintID, row)
	}
	if _, ok := row["span_begin_line"]; !ok || row["span_begin_line"] == nil {
		return fmt.Errorf("render: lint %q produced a row with no span_begin_line: %+v", lintID, row)
	}
	return nil
}
