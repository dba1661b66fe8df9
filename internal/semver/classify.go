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

package semver

import (
	"github.com/Masterminds/semver/v3"
)

// Classify decides the ActualSemverUpdate between a baseline and current
// version string, following the "initial development" 0.x and 0.0.z rules.
//
// ok is false when either version string is empty or fails to parse; the
// caller should treat that as "no classification available" rather than
// assume NotChanged, and warn the user instead of silently falling back.
func Classify(baseline, current string) (update ActualSemverUpdate, ok bool) {
	if baseline == "" || current == "" {
		return NotChanged, false
	}

	bv, err := semver.NewVersion(baseline)
	if err != nil {
		return NotChanged, false
	}
	cv, err := semver.NewVersion(current)
	if err != nil {
		return NotChanged, false
	}

	return classify(bv, cv), true
}

func classify(baseline, current *semver.Version) ActualSemverUpdate {
	switch {
	case baseline.Major() != current.Major():
		return Major
	case baseline.Minor() != current.Minor():
		if current.Major() == 0 {
			return Major
		}
		return Minor
	case baseline.Patch() != current.Patch():
		switch {
		case current.Major() == 0 && current.Minor() == 0:
			return Major
		case current.Major() == 0:
			return Minor
		default:
			return Patch
		}
	case baseline.Prerelease() != current.Prerelease():
		// Pre-release tags carry no compatibility guarantee in either
		// direction, so any difference (including one side having none)
		// is treated as a major change.
		return Major
	default:
		// Build metadata (after '+') is intentionally ignored: semver.Version
		// equality above already disregards it.
		return NotChanged
	}
}
