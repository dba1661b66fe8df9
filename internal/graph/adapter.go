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

package graph

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cratecheck/cratecheck/internal/snapshot"
)

const errNoBaseline = "query requires a baseline crate, but none was supplied"

// Adapter is constructed once per (current, baseline) release check and
// discarded after. It is read-only: no query ever mutates it, which is
// what lets internal/check render it once into a query document that every
// worker goroutine reads.
type Adapter struct {
	current  *snapshot.Crate
	baseline *snapshot.Crate // nil when no baseline is available
}

// New builds an Adapter over a current crate and an optional baseline.
func New(current *snapshot.Crate, baseline *snapshot.Crate) *Adapter {
	return &Adapter{current: current, baseline: baseline}
}

// HasBaseline reports whether a baseline crate was supplied.
func (a *Adapter) HasBaseline() bool { return a.baseline != nil }

// CurrentVersion returns the current crate's version string, which may be
// empty if the snapshot carried none.
func (a *Adapter) CurrentVersion() string { return a.current.CrateVersion }

// BaselineVersion returns the baseline crate's version string, or
// ("", false) if no baseline was supplied.
func (a *Adapter) BaselineVersion() (string, bool) {
	if a.baseline == nil {
		return "", false
	}
	return a.baseline.CrateVersion, true
}

// Roots yields the starting vertices for a named root edge: "Crate" yields
// the current crate; "CrateDiff" yields the single synthetic diff vertex,
// and fails if no baseline is present.
func (a *Adapter) Roots(edge string) ([]Token, error) {
	switch edge {
	case "Crate":
		return []Token{crateToken(Current, a.current)}, nil
	case KindCrateDiff:
		if a.baseline == nil {
			return nil, errors.New(errNoBaseline)
		}
		return []Token{{Origin: Current, Kind: KindCrateDiff, owner: a.current, altCrate: a.baseline}}, nil
	default:
		return nil, fmt.Errorf("graph: unknown starting edge %q", edge)
	}
}

// Cursor is a worker-local handle over a shared, read-only Adapter. A
// Cursor holds no mutable state of its own. The release-check engine does
// not construct Cursors: its workers all run over the one query document
// rendered from the Adapter.
type Cursor struct {
	*Adapter
}

// NewCursor returns a worker-private cursor over the shared Adapter.
func (a *Adapter) NewCursor() *Cursor {
	return &Cursor{Adapter: a}
}

func (a *Adapter) crateFor(origin Origin) *snapshot.Crate {
	if origin == Previous {
		return a.baseline
	}
	return a.current
}
