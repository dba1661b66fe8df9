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
	"testing"

	"github.com/cratecheck/cratecheck/internal/query"
)

func TestRunWitnessMergesAndOverwrites(t *testing.T) {
	prog, err := query.Compile(`{name: $args.probe, extra: "from-witness"}`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	row := map[string]any{"name": "original", "span_filename": "src/lib.rs"}
	merged, err := RunWitness(prog, map[string]any{}, row, map[string]string{"name": "probe"})
	if err != nil {
		t.Fatalf("RunWitness: %v", err)
	}
	if merged["name"] != "original" {
		t.Errorf("name = %v, want witness echoing original through $args.probe", merged["name"])
	}
	if merged["extra"] != "from-witness" {
		t.Errorf("extra = %v, want from-witness", merged["extra"])
	}
	if merged["span_filename"] != "src/lib.rs" {
		t.Errorf("span_filename = %v, should be preserved from the original row", merged["span_filename"])
	}
}

func TestRunWitnessRequiresExactlyOneRow(t *testing.T) {
	prog, err := query.Compile(`empty`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := RunWitness(prog, map[string]any{}, map[string]any{}, nil); err == nil {
		t.Fatal("expected an error when the witness yields zero rows")
	}
}
