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

package lint

import (
	"fmt"

	"github.com/cratecheck/cratecheck/internal/query"
)

// RunWitness executes a lint's companion witness query for a single result
// row: it builds the witness's argument map by copying the row fields named
// in Witness.Inherit, runs the witness program against the same document the
// main lint ran over, and merges the (required) single witness result row
// into a copy of the original row. Witness fields win on key collision.
//
// Two independent query executions happen here; there is no shared mutable
// state between the lint's run and the witness's.
func RunWitness(prog *query.Program, doc any, row map[string]any, inherit map[string]string) (map[string]any, error) {
	args := make(map[string]any, len(inherit))
	for rowField, witnessArg := range inherit {
		args[witnessArg] = row[rowField]
	}

	rows, err := prog.Run(doc, args)
	if err != nil {
		return nil, fmt.Errorf("lint: witness query failed: %w", err)
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("lint: witness query must yield exactly one row, got %d", len(rows))
	}
	extra, ok := rows[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("lint: witness row must be an object, got %T", rows[0])
	}

	merged := make(map[string]any, len(row)+len(extra))
	for k, v := range row {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged, nil
}
