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

package override

import (
	"testing"

	"github.com/cratecheck/cratecheck/internal/semver"
)

func levelPtr(l LintLevel) *LintLevel { return &l }
func reqPtr(r semver.RequiredSemverUpdate) *semver.RequiredSemverUpdate { return &r }

func TestResolvePrecedence(t *testing.T) {
	a := OverrideMap{"enum_missing": {Level: levelPtr(Deny), RequiredUpdate: reqPtr(semver.RequiredMinor)}}
	b := OverrideMap{"enum_missing": {Level: levelPtr(Warn)}}
	stack := OverrideStack{a, b}

	eff := stack.Resolve("enum_missing", Warn, semver.RequiredMajor)
	if eff.Level != Warn {
		t.Errorf("Level = %v, want Warn", eff.Level)
	}
	if eff.RequiredUpdate != semver.RequiredMinor {
		t.Errorf("RequiredUpdate = %v, want Minor", eff.RequiredUpdate)
	}
}

func TestResolveNoOverrideFallsBackToDefaults(t *testing.T) {
	stack := OverrideStack{}
	eff := stack.Resolve("unknown_lint", Deny, semver.RequiredMajor)
	if eff.Level != Deny || eff.RequiredUpdate != semver.RequiredMajor {
		t.Errorf("eff = %+v, want the passed-in defaults", eff)
	}
}

func TestResolveUnrelatedLintUnaffected(t *testing.T) {
	stack := OverrideStack{OverrideMap{"other_lint": {Level: levelPtr(Allow)}}}
	eff := stack.Resolve("enum_missing", Deny, semver.RequiredMajor)
	if eff.Level != Deny {
		t.Errorf("Level = %v, want Deny (unaffected by an override on a different lint)", eff.Level)
	}
}

func TestLintLevelOrdering(t *testing.T) {
	if !Allow.Less(Warn) {
		t.Error("Allow should be less severe than Warn")
	}
	if !Warn.Less(Deny) {
		t.Error("Warn should be less severe than Deny")
	}
	if Deny.Less(Allow) {
		t.Error("Deny should not be less severe than Allow")
	}
}
