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

package main

import "testing"

func TestExplainCmdRunUnknownLintErrors(t *testing.T) {
	c := &explainCmd{LintID: "not_a_real_lint"}
	if err := c.Run(); err == nil {
		t.Error("expected an error for an unregistered lint id")
	}
}

func TestExplainCmdRunKnownLintSucceeds(t *testing.T) {
	c := &explainCmd{LintID: "enum_missing"}
	if err := c.Run(); err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestExplainCmdRunListSucceeds(t *testing.T) {
	c := &explainCmd{List: true}
	if err := c.Run(); err != nil {
		t.Errorf("Run: %v", err)
	}
}
