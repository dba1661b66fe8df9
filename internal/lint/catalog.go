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

// Package lint holds the closed, statically-registered catalog of semver
// lints: one TOML file per lint, embedded into the binary, validated at
// package init so a malformed or mismatched definition fails loudly rather
// than silently dropping a check.
package lint

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/cratecheck/cratecheck/internal/override"
	"github.com/cratecheck/cratecheck/internal/semver"
)

//go:embed lints/*.toml
var lintFiles embed.FS

// Witness is a secondary query run after a lint row is produced, to pull
// extra context into the diagnostic.
type Witness struct {
	Query string `toml:"query"`
	// Inherit maps a row field name to the witness query's argument name it
	// feeds.
	Inherit map[string]string `toml:"inherit"`
}

// Lint is one immutable, statically-registered rule.
type Lint struct {
	ID                     string                        `toml:"id"`
	HumanReadableName      string                        `toml:"human_readable_name"`
	Description            string                        `toml:"description"`
	RequiredUpdate         semver.RequiredSemverUpdate    `toml:"-"`
	RequiredUpdateRaw      string                        `toml:"required_update"`
	LintLevel              override.LintLevel            `toml:"lint_level"`
	Reference              string                        `toml:"reference,omitempty"`
	ReferenceLink          string                        `toml:"reference_link,omitempty"`
	Query                  string                        `toml:"query"`
	Arguments              map[string]any                `toml:"arguments,omitempty"`
	ErrorMessage           string                        `toml:"error_message"`
	PerResultErrorTemplate string                        `toml:"per_result_error_template,omitempty"`
	Witness                *Witness                      `toml:"witness,omitempty"`
}

// errBadRequiredUpdate etc. name the catalog's load-time failure modes; a
// bad lint file is a build-time defect, never a runtime one a user can hit.
const (
	errBadRequiredUpdateFmt = "lint %q: required_update must be \"major\" or \"minor\", got %q"
	errIDMismatchFmt        = "lint file %q declares id %q, want %q"
	errDuplicateIDFmt       = "duplicate lint id %q (from %q and an earlier file)"
)

// Catalog is the full, validated set of registered lints, keyed by id.
type Catalog struct {
	byID map[string]*Lint
}

// catalog is loaded once at package init from the embedded lint files.
var catalog *Catalog

func init() {
	c, err := loadEmbedded()
	if err != nil {
		panic(err)
	}
	catalog = c
}

// Default returns the process-wide catalog loaded from the embedded lint
// definitions.
func Default() *Catalog { return catalog }

// New assembles a Catalog from an explicit set of lints, bypassing the
// embedded-file validation loadEmbedded performs. Useful for composing a
// catalog from a non-embedded source, or for exercising the check engine
// against a synthetic lint.
func New(lints ...*Lint) *Catalog {
	byID := make(map[string]*Lint, len(lints))
	for _, l := range lints {
		byID[l.ID] = l
	}
	return &Catalog{byID: byID}
}

// Get returns the lint with the given id, or (nil, false) if unregistered.
func (c *Catalog) Get(id string) (*Lint, bool) {
	l, ok := c.byID[id]
	return l, ok
}

// All returns every registered lint, sorted by id for deterministic
// iteration.
func (c *Catalog) All() []*Lint {
	out := make([]*Lint, 0, len(c.byID))
	for _, l := range c.byID {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func loadEmbedded() (*Catalog, error) {
	entries, err := lintFiles.ReadDir("lints")
	if err != nil {
		return nil, errors.Wrap(err, "lint: reading embedded lints directory")
	}

	byID := make(map[string]*Lint, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), ".toml")

		data, err := lintFiles.ReadFile("lints/" + entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "lint: reading %q", entry.Name())
		}

		var l Lint
		if err := toml.Unmarshal(data, &l); err != nil {
			return nil, errors.Wrapf(err, "lint: parsing %q", entry.Name())
		}

		if l.ID != stem {
			return nil, fmt.Errorf(errIDMismatchFmt, entry.Name(), l.ID, stem)
		}
		if _, dup := byID[l.ID]; dup {
			return nil, fmt.Errorf(errDuplicateIDFmt, l.ID, entry.Name())
		}

		switch l.RequiredUpdateRaw {
		case "major":
			l.RequiredUpdate = semver.RequiredMajor
		case "minor":
			l.RequiredUpdate = semver.RequiredMinor
		default:
			return nil, fmt.Errorf(errBadRequiredUpdateFmt, l.ID, l.RequiredUpdateRaw)
		}

		byID[l.ID] = &l
	}

	return &Catalog{byID: byID}, nil
}
