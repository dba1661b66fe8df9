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

import (
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/cratecheck/cratecheck/internal/acquire"
)

// featureFlags is the subset of checkCmd's flags that decide a package's
// feature selection, split out so baseline and current snapshots can be
// given independent selections from the same set of inputs.
type featureFlags struct {
	AllFeatures          bool
	DefaultFeatures      bool
	OnlyExplicitFeatures bool
	Features             []string
	BaselineFeatures     []string
	CurrentFeatures      []string
}

// resolve computes the current and baseline FeatureSelection for one
// package manifest. --all-features discovers every name under the
// manifest's own [features] table; --only-explicit-features forces default
// features off; --baseline-features/--current-features override the shared
// --features list for one side only.
func (f featureFlags) resolve(fs afero.Fs, manifestPath string) (current, baseline acquire.FeatureSelection, err error) {
	base := acquire.FeatureSelection{
		DefaultFeatures: f.DefaultFeatures && !f.OnlyExplicitFeatures,
		Features:        f.Features,
	}
	if f.AllFeatures {
		names, err := manifestFeatureNames(fs, manifestPath)
		if err != nil {
			return acquire.FeatureSelection{}, acquire.FeatureSelection{}, err
		}
		base.Features = names
		base.DefaultFeatures = true
	}

	current, baseline = base, base
	if len(f.CurrentFeatures) > 0 {
		current.Features = f.CurrentFeatures
	}
	if len(f.BaselineFeatures) > 0 {
		baseline.Features = f.BaselineFeatures
	}
	return current, baseline, nil
}

type featuresManifest struct {
	Features map[string][]string `toml:"features"`
}

// manifestFeatureNames reads the [features] table of a Cargo.toml and
// returns its keys, sorted, for --all-features. The "default" key is
// omitted.
func manifestFeatureNames(fs afero.Fs, manifestPath string) ([]string, error) {
	data, err := afero.ReadFile(fs, manifestPath)
	if err != nil {
		return nil, err
	}
	var m featuresManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m.Features))
	for name := range m.Features {
		if name == "default" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
