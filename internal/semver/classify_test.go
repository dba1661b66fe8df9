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

import "testing"

func TestClassify(t *testing.T) {
	cases := map[string]struct {
		baseline, current string
		want              ActualSemverUpdate
		wantOK            bool
	}{
		"identical":               {"1.2.3", "1.2.3", NotChanged, true},
		"major differs":          {"1.2.3", "2.0.0", Major, true},
		"minor differs":          {"1.2.3", "1.3.0", Minor, true},
		"patch differs":         {"1.2.3", "1.2.4", Patch, true},
		"0.x minor differs":     {"0.1.0", "0.2.0", Major, true},
		"0.0.z patch differs":   {"0.0.1", "0.0.2", Major, true},
		"0.x patch differs":     {"0.1.0", "0.1.1", Minor, true},
		"prerelease differs":    {"1.0.0-alpha.0", "1.0.0-alpha.1", Major, true},
		"prerelease introduced": {"1.0.0", "1.0.0-alpha.1", Major, true},
		"build metadata only":   {"1.2.3+build1", "1.2.3+build2", NotChanged, true},
		"missing baseline":      {"", "1.0.0", NotChanged, false},
		"missing current":       {"1.0.0", "", NotChanged, false},
		"unparseable":           {"not-a-version", "1.0.0", NotChanged, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := Classify(tc.baseline, tc.current)
			if ok != tc.wantOK {
				t.Fatalf("Classify(%q, %q) ok = %v, want %v", tc.baseline, tc.current, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Fatalf("Classify(%q, %q) = %v, want %v", tc.baseline, tc.current, got, tc.want)
			}
		})
	}
}

func TestClassifyLaws(t *testing.T) {
	// classify(v, v) = NotChanged for arbitrary v.
	for _, v := range []string{"0.0.1", "0.3.2", "1.0.0", "4.5.6-rc.1"} {
		if got, ok := Classify(v, v); !ok || got != NotChanged {
			t.Errorf("Classify(%q, %q) = %v, %v; want NotChanged, true", v, v, got, ok)
		}
	}
}
