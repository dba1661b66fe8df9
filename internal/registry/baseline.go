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

package registry

import (
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

const errNoBaselineCandidate = "no published version of %q qualifies as a baseline"

// SelectBaseline chooses a baseline version from records, skipping yanked
// and pre-release versions where possible, never exceeding current.
//
//  1. pinned, if set, is used unconditionally.
//  2. With current known: among versions <= current, prefer the highest
//     that is neither yanked nor a pre-release; failing that, fall back to
//     the highest of that filtered (<=current) list even if yanked or
//     pre-release. An empty <=current list is an error.
//  3. Without current: prefer the highest normal version; failing that, the
//     highest version overall.
func SelectBaseline(crateName string, records []Record, current, pinned *semver.Version) (*semver.Version, error) {
	if pinned != nil {
		return pinned, nil
	}

	versions := make([]*versionRecord, 0, len(records))
	for _, rec := range records {
		v, err := semver.NewVersion(rec.Version)
		if err != nil {
			continue
		}
		versions = append(versions, &versionRecord{version: v, yanked: rec.Yanked})
	}

	if current != nil {
		return selectWithCurrent(crateName, versions, current)
	}
	return selectWithoutCurrent(crateName, versions)
}

type versionRecord struct {
	version *semver.Version
	yanked  bool
}

func (v *versionRecord) normal() bool {
	return !v.yanked && v.version.Prerelease() == ""
}

func selectWithCurrent(crateName string, versions []*versionRecord, current *semver.Version) (*semver.Version, error) {
	eligible := make([]*versionRecord, 0, len(versions))
	for _, v := range versions {
		if v.version.Compare(current) <= 0 {
			eligible = append(eligible, v)
		}
	}
	if len(eligible) == 0 {
		return nil, errors.Errorf(errNoBaselineCandidate, crateName)
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].version.LessThan(eligible[j].version) })

	if best := highestNormal(eligible); best != nil {
		return best.version, nil
	}
	return eligible[len(eligible)-1].version, nil
}

func selectWithoutCurrent(crateName string, versions []*versionRecord) (*semver.Version, error) {
	if len(versions) == 0 {
		return nil, errors.Errorf(errNoBaselineCandidate, crateName)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].version.LessThan(versions[j].version) })

	if best := highestNormal(versions); best != nil {
		return best.version, nil
	}
	return versions[len(versions)-1].version, nil
}

// highestNormal walks sorted (ascending) versions from the end and returns
// the first neither-yanked-nor-prerelease entry, or nil if none qualifies.
func highestNormal(sorted []*versionRecord) *versionRecord {
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].normal() {
			return sorted[i]
		}
	}
	return nil
}
