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

import "github.com/cratecheck/cratecheck/internal/snapshot"

// buildCrate assembles a small in-memory crate: a public struct Foo with one
// field, and a trait Greet with one default-bodied method hello, implemented
// (inherently and via the trait) on Foo.
func buildCrate() *snapshot.Crate {
	index := map[snapshot.ItemId]*snapshot.Item{}

	mk := func(id snapshot.ItemId, name string, inner snapshot.Inner) {
		index[id] = &snapshot.Item{
			ID:         id,
			CrateID:    0,
			Name:       name,
			Visibility: snapshot.Visibility{Kind: snapshot.VisibilityPublic},
			Inner:      inner,
			Span:       &snapshot.Span{Filename: "src/lib.rs", BeginLine: 1, BeginCol: 1, EndLine: 1, EndCol: 2},
		}
	}

	mk("0:0", "demo", rawInner(snapshot.KindModule, `{}`))
	mk("0:1", "Foo", rawInner(snapshot.KindStruct, `{"kind":"plain","fields_stripped":false,"fields":["0:2"],"impls":["0:10","0:20"]}`))
	mk("0:2", "x", rawInner(snapshot.KindStructField, `{"kind":"primitive","name":"u64"}`))

	mk("0:10", "", rawInner(snapshot.KindImpl, `{"is_unsafe":false,"negative":false,"synthetic":false,"items":["0:11"]}`))
	mk("0:11", "bark", rawInner(snapshot.KindMethod, `{"header":{},"decl":{"inputs":[],"output":null}}`))

	mk("0:30", "Greet", rawInner(snapshot.KindTrait, `{"is_auto":false,"is_unsafe":false,"items":["0:31"]}`))
	mk("0:31", "hello", rawInner(snapshot.KindMethod, `{"header":{},"decl":{"inputs":[],"output":null}}`))

	mk("0:20", "", rawInner(snapshot.KindImpl, `{"is_unsafe":false,"negative":false,"synthetic":false,"items":[],"provided_trait_methods":["hello"],"trait":{"kind":"resolved_path","id":"0:30","name":"Greet"}}`))

	return &snapshot.Crate{
		FormatVersion: 32,
		CrateVersion:  "1.0.0",
		Root:          "0:0",
		Index:         index,
		Paths: map[snapshot.ItemId]snapshot.Path{
			"0:1": {Path: []string{"demo", "Foo"}, Kind: "struct"},
		},
	}
}

func rawInner(kind snapshot.InnerKind, payload string) snapshot.Inner {
	var in snapshot.Inner
	b := []byte(`{"` + innerKeyFor(kind) + `":` + payload + `}`)
	if err := in.UnmarshalJSON(b); err != nil {
		panic(err)
	}
	return in
}

func innerKeyFor(kind snapshot.InnerKind) string {
	switch kind {
	case snapshot.KindStruct:
		return "struct"
	case snapshot.KindEnum:
		return "enum"
	case snapshot.KindStructField:
		return "struct_field"
	case snapshot.KindFunction:
		return "function"
	case snapshot.KindMethod:
		return "method"
	case snapshot.KindImpl:
		return "impl"
	case snapshot.KindTrait:
		return "trait"
	case snapshot.KindModule:
		return "module"
	default:
		panic("innerKeyFor: unhandled kind " + string(kind))
	}
}
