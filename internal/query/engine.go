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

// Package query compiles and runs the declarative query language every
// lint's query string is written in: a gojq program, run against the
// denormalized document internal/graph builds over an Adapter. This
// package never interprets rustdoc semantics itself — it only compiles
// programs and shuttles rows in and out of them.
package query

import (
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/pkg/errors"
)

// Program is a compiled lint query, ready to run against many documents
// (one per release check) without recompiling.
type Program struct {
	code *gojq.Code
	src  string
}

// Compile parses and compiles src as a gojq program. The program receives a
// single top-level variable, $args, carrying the lint's configured
// arguments (from its TOML definition and any override), mirroring how
// cargo-semver-checks' witness queries are parameterized.
func Compile(src string) (*Program, error) {
	parsed, err := gojq.Parse(src)
	if err != nil {
		return nil, errors.Wrapf(err, "query: parsing %q", src)
	}
	code, err := gojq.Compile(parsed, gojq.WithVariables([]string{"$args"}))
	if err != nil {
		return nil, errors.Wrapf(err, "query: compiling %q", src)
	}
	return &Program{code: code, src: src}, nil
}

// Source returns the original query text, for diagnostics and --explain.
func (p *Program) Source() string { return p.src }

// Row is one result a query program emits; typically a map with one key
// per captured query variable, but any JSON value a gojq program can
// produce is accepted.
type Row = any

// Run evaluates the program against doc (normally the output of
// graph.Document) with the given argument map bound to $args, and collects
// every emitted row. A row that is itself an error (gojq surfaces runtime
// failures, such as indexing past the end of an array, as error values from
// the iterator rather than a Go error) aborts the run.
func (p *Program) Run(doc any, args map[string]any) ([]Row, error) {
	iter := p.code.Run(doc, args)

	var rows []Row
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("query: evaluating %q: %w", p.src, err)
		}
		rows = append(rows, v)
	}
	return rows, nil
}
