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

package query

import "testing"

func TestCompileAndRun(t *testing.T) {
	p, err := Compile(`.item[] | select(.__typename == "Struct") | {id: .id, name: .name}`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	doc := map[string]any{
		"item": []any{
			map[string]any{"__typename": "Struct", "id": "0:1", "name": "Foo"},
			map[string]any{"__typename": "Function", "id": "0:2", "name": "bar"},
		},
	}

	rows, err := p.Run(doc, map[string]any{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	row, ok := rows[0].(map[string]any)
	if !ok || row["name"] != "Foo" {
		t.Errorf("rows[0] = %+v", rows[0])
	}
}

func TestRunBindsArgs(t *testing.T) {
	p, err := Compile(`$args.min_depth`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	rows, err := p.Run(map[string]any{}, map[string]any{"min_depth": float64(3)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 1 || rows[0] != float64(3) {
		t.Errorf("rows = %+v", rows)
	}
}

func TestCompileInvalidQuery(t *testing.T) {
	if _, err := Compile("("); err == nil {
		t.Fatal("expected a parse error for an unbalanced query")
	}
}

func TestRunRuntimeErrorAborts(t *testing.T) {
	p, err := Compile(`.missing.field`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := p.Run(map[string]any{"missing": "not-an-object"}, map[string]any{}); err == nil {
		t.Fatal("expected a runtime error indexing into a string")
	}
}
