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

// Package override merges a stack of per-lint overrides (workspace
// defaults, package metadata, CLI flags) into the effective level and
// required bump the release-check engine runs each lint with.
package override

import "github.com/cratecheck/cratecheck/internal/semver"

// LintLevel is a lint's effective severity. Allow suppresses execution
// entirely; Warn runs the lint but never contributes to the required bump;
// Deny runs it and, on any result row, contributes its required_update to
// the crate's aggregate required bump.
type LintLevel string

const (
	Allow LintLevel = "allow"
	Warn  LintLevel = "warn"
	Deny  LintLevel = "deny"
)

var levelRank = map[LintLevel]int{Allow: 0, Warn: 1, Deny: 2}

// Less reports whether l is strictly less severe than o, under
// Allow < Warn < Deny.
func (l LintLevel) Less(o LintLevel) bool { return levelRank[l] < levelRank[o] }

// QueryOverride sets zero or more of a lint's level and required-update,
// leaving the rest to lower-priority layers. Both fields are resolved
// independently: a layer may override one while leaving the other unset.
type QueryOverride struct {
	Level          *LintLevel
	RequiredUpdate *semver.RequiredSemverUpdate
}

// OverrideMap is one layer of the stack: lint id to the overrides that
// layer sets for it.
type OverrideMap map[string]QueryOverride

// OverrideStack is ordered from lowest to highest priority (e.g.
// [workspaceDefaults, packageMetadata, cliFlags]); a later entry's set
// fields win over an earlier entry's.
type OverrideStack []OverrideMap

// Effective is the resolved level and required bump for one lint, after
// walking the stack over the lint's own defaults.
type Effective struct {
	Level          LintLevel
	RequiredUpdate semver.RequiredSemverUpdate
}

// Resolve computes the effective level and required update for lintID,
// starting from the lint's own defaults and applying each stack layer in
// order. A later layer's explicit value always wins over an earlier one's,
// and an unset field never clobbers a value a lower layer already set.
func (s OverrideStack) Resolve(lintID string, defaultLevel LintLevel, defaultRequired semver.RequiredSemverUpdate) Effective {
	eff := Effective{Level: defaultLevel, RequiredUpdate: defaultRequired}
	for _, layer := range s {
		qo, ok := layer[lintID]
		if !ok {
			continue
		}
		if qo.Level != nil {
			eff.Level = *qo.Level
		}
		if qo.RequiredUpdate != nil {
			eff.RequiredUpdate = *qo.RequiredUpdate
		}
	}
	return eff
}
