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

package graph

import "fmt"

// knownProperties and knownEdges bound how deep Document will walk before
// giving up on a vertex kind it doesn't recognize; they mirror the field
// names Project/Neighbors already accept, kept alongside them so the two
// never drift apart silently (a mismatch fails loudly in tests, not at
// query time).
var knownProperties = map[string][]string{
	KindCrate: {"root", "crate_version", "includes_private", "format_version"},
	KindSpan:  {"filename", "begin_line", "begin_column", "end_line", "end_column"},
	KindPath:  {"path"},
}

var knownEdges = map[string][]string{
	KindCrateDiff: {"current", "baseline"},
	KindCrate:     {"item"},
}

func init() {
	knownEdges["Struct"] = []string{"span", "path", "field", "impl", "inherent_impl"}
	knownEdges["Enum"] = []string{"span", "path", "variant", "impl", "inherent_impl"}
	knownEdges["Impl"] = []string{"span", "method"}
	for _, k := range []string{"Union", "PlainVariant", "TupleVariant", "StructVariant", "StructField", "Function", "Method", "Trait", "Module", "Constant", "Static"} {
		knownEdges[k] = []string{"span", "path"}
	}
}

// Document renders a vertex, and every vertex reachable from it through the
// edges listed for its kind, into a denormalized map/slice tree suitable for
// gojq to query (internal/query). It is built in terms of Project and
// Neighbors rather than duplicating the adapter's field logic, so the typed
// API and the query-facing view can never disagree about what a vertex
// contains.
//
// Document does not chase every edge unconditionally — cyclic structures
// (an Impl's method pointing back at items already visited through field or
// variant) are bounded by depth rather than a visited-set, since the API
// graph is a DAG along any single edge name chased from a fixed root.
func Document(root Token, maxDepth int) (map[string]any, error) {
	return documentAt(root, maxDepth)
}

func documentAt(t Token, depth int) (map[string]any, error) {
	out := map[string]any{"__typename": t.Typename()}

	for _, prop := range knownProperties[t.Kind] {
		v, err := t.Project(prop)
		if err != nil {
			return nil, fmt.Errorf("graph: documenting %s.%s: %w", t.Kind, prop, err)
		}
		out[prop] = v
	}
	if itemKinds[t.Kind] {
		for _, prop := range []string{"id", "crate_id", "name", "docs", "attrs", "visibility_limit"} {
			v, err := t.Project(prop)
			if err != nil {
				return nil, fmt.Errorf("graph: documenting %s.%s: %w", t.Kind, prop, err)
			}
			out[prop] = v
		}
	}

	if depth <= 0 {
		return out, nil
	}

	for _, edge := range knownEdges[t.Kind] {
		neighbors, err := t.Neighbors(edge)
		if err != nil {
			// An edge that genuinely does not apply to this vertex (e.g.
			// "impl" probed against a Trait) is not a document-building
			// failure; the edge simply contributes nothing.
			continue
		}
		rendered := make([]map[string]any, 0, len(neighbors))
		for _, n := range neighbors {
			d, err := documentAt(n, depth-1)
			if err != nil {
				return nil, err
			}
			rendered = append(rendered, d)
		}
		if singularEdges[edge] {
			// Singular edges always render as one object or null, never a
			// list, so a query can write ".span.begin_line" unconditionally
			// instead of branching on whether the edge was present.
			if len(rendered) == 0 {
				out[edge] = nil
			} else {
				out[edge] = rendered[0]
			}
		} else {
			out[edge] = rendered
		}
	}

	return out, nil
}

// singularEdges names edges that always yield at most one neighbor
// (span, path, current, baseline) so Document renders them as a single
// object rather than a one-element array, matching how a lint query
// naturally dereferences them (".span.begin_line", not ".span[0].begin_line").
var singularEdges = map[string]bool{
	"span": true, "path": true, "current": true, "baseline": true,
}
