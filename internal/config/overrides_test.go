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

package config

import (
	"testing"

	"github.com/cratecheck/cratecheck/internal/override"
	"github.com/cratecheck/cratecheck/internal/semver"
	"github.com/cratecheck/cratecheck/internal/snapshot"
)

func TestDecodeOverridesLevelShorthand(t *testing.T) {
	m, err := DecodeOverrides(map[string]any{"enum_missing": "deny"})
	if err != nil {
		t.Fatalf("DecodeOverrides: %v", err)
	}
	qo, ok := m["enum_missing"]
	if !ok || qo.Level == nil || *qo.Level != override.Deny {
		t.Fatalf("got %+v, want Level=Deny", qo)
	}
	if qo.RequiredUpdate != nil {
		t.Errorf("RequiredUpdate = %v, want nil for a level-only shorthand", qo.RequiredUpdate)
	}
}

func TestDecodeOverridesRequiredUpdateShorthand(t *testing.T) {
	m, err := DecodeOverrides(map[string]any{"trait_missing": "minor"})
	if err != nil {
		t.Fatalf("DecodeOverrides: %v", err)
	}
	qo := m["trait_missing"]
	if qo.RequiredUpdate == nil || *qo.RequiredUpdate != semver.RequiredMinor {
		t.Fatalf("got %+v, want RequiredUpdate=Minor", qo)
	}
	if qo.Level != nil {
		t.Errorf("Level = %v, want nil for an update-only shorthand", qo.Level)
	}
}

func TestDecodeOverridesTableSetsBothFields(t *testing.T) {
	m, err := DecodeOverrides(map[string]any{
		"function_missing": map[string]any{"lint-level": "warn", "required-update": "major"},
	})
	if err != nil {
		t.Fatalf("DecodeOverrides: %v", err)
	}
	qo := m["function_missing"]
	if qo.Level == nil || *qo.Level != override.Warn {
		t.Fatalf("Level = %v, want Warn", qo.Level)
	}
	if qo.RequiredUpdate == nil || *qo.RequiredUpdate != semver.RequiredMajor {
		t.Fatalf("RequiredUpdate = %v, want Major", qo.RequiredUpdate)
	}
}

func TestDecodeOverridesTableSetsOnlyOneField(t *testing.T) {
	m, err := DecodeOverrides(map[string]any{
		"enum_missing": map[string]any{"lint-level": "allow"},
	})
	if err != nil {
		t.Fatalf("DecodeOverrides: %v", err)
	}
	qo := m["enum_missing"]
	if qo.Level == nil || *qo.Level != override.Allow {
		t.Fatalf("Level = %v, want Allow", qo.Level)
	}
	if qo.RequiredUpdate != nil {
		t.Errorf("RequiredUpdate = %v, want nil when the table doesn't set it", qo.RequiredUpdate)
	}
}

func TestDecodeOverridesRejectsUnknownShorthand(t *testing.T) {
	if _, err := DecodeOverrides(map[string]any{"enum_missing": "critical"}); err == nil {
		t.Error("expected an error for an unrecognized shorthand string")
	}
}

func TestDecodeOverridesRejectsBadShape(t *testing.T) {
	if _, err := DecodeOverrides(map[string]any{"enum_missing": 42}); err == nil {
		t.Error("expected an error for a non-string, non-table override value")
	}
}

func TestDecodeOverridesRejectsUnknownTableLevel(t *testing.T) {
	if _, err := DecodeOverrides(map[string]any{
		"enum_missing": map[string]any{"lint-level": "critical"},
	}); err == nil {
		t.Error("expected an error for an unrecognized lint-level value")
	}
}

func TestDecodeOverridesEmptyInputReturnsNil(t *testing.T) {
	m, err := DecodeOverrides(nil)
	if err != nil {
		t.Fatalf("DecodeOverrides: %v", err)
	}
	if m != nil {
		t.Errorf("got %v, want nil for an empty table", m)
	}
}

func TestResolveStackOmitsWorkspaceLayerWithoutInherit(t *testing.T) {
	pkg := &snapshot.PackageMetadata{
		RawOverrides:     map[string]any{"enum_missing": "deny"},
		WorkspaceInherit: false,
	}
	stack, err := ResolveStack(map[string]any{"enum_missing": "warn"}, pkg, nil)
	if err != nil {
		t.Fatalf("ResolveStack: %v", err)
	}
	if len(stack) != 1 {
		t.Fatalf("len(stack) = %d, want 1 (package layer only)", len(stack))
	}
	eff := stack.Resolve("enum_missing", override.Warn, semver.RequiredMajor)
	if eff.Level != override.Deny {
		t.Errorf("effective level = %v, want Deny from the package layer", eff.Level)
	}
}

func TestResolveStackIncludesWorkspaceLayerWhenInherited(t *testing.T) {
	pkg := &snapshot.PackageMetadata{
		RawOverrides:     map[string]any{},
		WorkspaceInherit: true,
	}
	stack, err := ResolveStack(map[string]any{"enum_missing": "allow"}, pkg, nil)
	if err != nil {
		t.Fatalf("ResolveStack: %v", err)
	}
	if len(stack) != 1 {
		t.Fatalf("len(stack) = %d, want 1 (workspace layer only)", len(stack))
	}
	eff := stack.Resolve("enum_missing", override.Deny, semver.RequiredMajor)
	if eff.Level != override.Allow {
		t.Errorf("effective level = %v, want Allow from the inherited workspace layer", eff.Level)
	}
}

func TestResolveStackCLILayerWinsOverPackageAndWorkspace(t *testing.T) {
	pkg := &snapshot.PackageMetadata{
		RawOverrides:     map[string]any{"enum_missing": "warn"},
		WorkspaceInherit: true,
	}
	allow := override.Allow
	cli := override.OverrideMap{"enum_missing": override.QueryOverride{Level: &allow}}

	stack, err := ResolveStack(map[string]any{"enum_missing": "deny"}, pkg, cli)
	if err != nil {
		t.Fatalf("ResolveStack: %v", err)
	}
	if len(stack) != 3 {
		t.Fatalf("len(stack) = %d, want 3 (workspace, package, cli)", len(stack))
	}
	eff := stack.Resolve("enum_missing", override.Deny, semver.RequiredMajor)
	if eff.Level != override.Allow {
		t.Errorf("effective level = %v, want Allow from the highest-priority CLI layer", eff.Level)
	}
}
