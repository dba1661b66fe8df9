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
	"github.com/pkg/errors"

	"github.com/cratecheck/cratecheck/internal/override"
	"github.com/cratecheck/cratecheck/internal/semver"
	"github.com/cratecheck/cratecheck/internal/snapshot"
)

const (
	errBadOverrideShapeFmt  = "lint %q: override must be a level/update string or a table, got %T"
	errUnknownShorthandFmt  = "lint %q: %q is neither a lint level (allow/warn/deny) nor a required update (major/minor)"
	errBadFieldTypeFmt      = "lint %q: %q must be a string, got %T"
	errUnknownLintLevelFmt  = "lint %q: unknown lint-level %q"
	errUnknownRequiredFmt   = "lint %q: unknown required-update %q"
	errDecodeWorkspaceLayer = "failed to decode workspace override table"
	errDecodePackageLayer   = "failed to decode package override table"
)

// DecodeOverrides turns one already-parsed `lints` table (package or
// workspace metadata) into an override.OverrideMap. Each entry is either
// shorthand — a bare lint-level string ("allow"/"warn"/"deny") or a bare
// required-update string ("major"/"minor") — or a table setting one or both
// of `lint-level` and `required-update` explicitly.
func DecodeOverrides(raw map[string]any) (override.OverrideMap, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(override.OverrideMap, len(raw))
	for id, v := range raw {
		qo, err := decodeOverrideValue(id, v)
		if err != nil {
			return nil, err
		}
		out[id] = qo
	}
	return out, nil
}

func decodeOverrideValue(id string, v any) (override.QueryOverride, error) {
	switch val := v.(type) {
	case string:
		return decodeShorthand(id, val)
	case map[string]any:
		return decodeTable(id, val)
	default:
		return override.QueryOverride{}, errors.Errorf(errBadOverrideShapeFmt, id, v)
	}
}

func decodeShorthand(id, val string) (override.QueryOverride, error) {
	if lvl, ok := parseLintLevel(val); ok {
		return override.QueryOverride{Level: &lvl}, nil
	}
	if req, ok := parseRequiredUpdate(val); ok {
		return override.QueryOverride{RequiredUpdate: &req}, nil
	}
	return override.QueryOverride{}, errors.Errorf(errUnknownShorthandFmt, id, val)
}

func decodeTable(id string, val map[string]any) (override.QueryOverride, error) {
	var qo override.QueryOverride
	if raw, ok := val["lint-level"]; ok {
		s, ok := raw.(string)
		if !ok {
			return qo, errors.Errorf(errBadFieldTypeFmt, id, "lint-level", raw)
		}
		lvl, ok := parseLintLevel(s)
		if !ok {
			return qo, errors.Errorf(errUnknownLintLevelFmt, id, s)
		}
		qo.Level = &lvl
	}
	if raw, ok := val["required-update"]; ok {
		s, ok := raw.(string)
		if !ok {
			return qo, errors.Errorf(errBadFieldTypeFmt, id, "required-update", raw)
		}
		req, ok := parseRequiredUpdate(s)
		if !ok {
			return qo, errors.Errorf(errUnknownRequiredFmt, id, s)
		}
		qo.RequiredUpdate = &req
	}
	return qo, nil
}

func parseLintLevel(s string) (override.LintLevel, bool) {
	switch override.LintLevel(s) {
	case override.Allow, override.Warn, override.Deny:
		return override.LintLevel(s), true
	default:
		return "", false
	}
}

func parseRequiredUpdate(s string) (semver.RequiredSemverUpdate, bool) {
	switch s {
	case "major":
		return semver.RequiredMajor, true
	case "minor":
		return semver.RequiredMinor, true
	default:
		return 0, false
	}
}

// ResolveStack assembles one package's OverrideStack from its workspace's
// raw lints table, its own parsed PackageMetadata, and any CLI-supplied
// overrides, lowest to highest priority. The workspace layer is included
// only when the package opted in via `workspace = true`
// (PackageMetadata.WorkspaceInherit).
func ResolveStack(workspaceRaw map[string]any, pkg *snapshot.PackageMetadata, cli override.OverrideMap) (override.OverrideStack, error) {
	var stack override.OverrideStack

	if pkg != nil && pkg.WorkspaceInherit && len(workspaceRaw) > 0 {
		wsMap, err := DecodeOverrides(workspaceRaw)
		if err != nil {
			return nil, errors.Wrap(err, errDecodeWorkspaceLayer)
		}
		stack = append(stack, wsMap)
	}

	if pkg != nil && len(pkg.RawOverrides) > 0 {
		pkgMap, err := DecodeOverrides(pkg.RawOverrides)
		if err != nil {
			return nil, errors.Wrap(err, errDecodePackageLayer)
		}
		stack = append(stack, pkgMap)
	}

	if len(cli) > 0 {
		stack = append(stack, cli)
	}

	return stack, nil
}
