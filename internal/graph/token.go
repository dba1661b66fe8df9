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

// Package graph exposes a (current, baseline) crate pair as a typed,
// query-engine-navigable API graph: starting roots, property projection,
// edge traversal, and subtype coercion. It
// never interprets lint query text itself (internal/query does, via gojq) —
// it only builds the vertices, edges, and properties that query evaluates
// against.
package graph

import "github.com/cratecheck/cratecheck/internal/snapshot"

// Origin marks which side of a diff a Token was derived from. It propagates
// along every edge except the two that explicitly cross sides
// (CrateDiff.current, CrateDiff.baseline).
type Origin string

const (
	Current  Origin = "current"
	Previous Origin = "baseline"
)

// Token is the uniform vertex wrapper: every vertex the adapter yields,
// regardless of concrete kind, carries an Origin and a kind tag so that
// query joins can match tokens from the same side of the diff.
type Token struct {
	Origin Origin
	Kind   string

	// owner is the crate this token was derived from; it is what Neighbors
	// consults to resolve cross-item references (e.g. an Impl's trait_
	// ResolvedPath back to the Trait item that owns provided methods).
	owner *snapshot.Crate

	// altCrate is set only on the CrateDiff token, holding the baseline
	// crate so CrateDiff.baseline can resolve without consulting the
	// Adapter.
	altCrate *snapshot.Crate

	item *snapshot.Item
	crat *snapshot.Crate
	span *snapshot.Span
	path *snapshot.Path
}

// Item-kind constants double as the concrete __typename values the property
// projector returns, matching snapshot.InnerKind one-for-one plus the
// synthetic, non-Item kinds.
const (
	KindCrateDiff = "CrateDiff"
	KindCrate     = "Crate"
	KindSpan      = "Span"
	KindPath      = "Path"
)

func itemToken(origin Origin, owner *snapshot.Crate, it *snapshot.Item) Token {
	return Token{Origin: origin, Kind: string(it.Inner.Kind), owner: owner, item: it}
}

func crateToken(origin Origin, c *snapshot.Crate) Token {
	return Token{Origin: origin, Kind: KindCrate, owner: c, crat: c}
}

// Item returns the underlying snapshot Item for an item-kind token, or nil
// for a Crate/CrateDiff/Span/Path token.
func (t Token) Item() *snapshot.Item { return t.item }

// Crate returns the underlying snapshot Crate for a Crate token, or nil
// otherwise.
func (t Token) Crate() *snapshot.Crate { return t.crat }

// Span returns the underlying snapshot Span for a Span token, or nil
// otherwise.
func (t Token) Span() *snapshot.Span { return t.span }

// Path returns the underlying snapshot Path for a Path token, or nil
// otherwise.
func (t Token) Path() *snapshot.Path { return t.path }

var itemKinds = map[string]bool{
	string(snapshot.KindStruct):        true,
	string(snapshot.KindEnum):          true,
	string(snapshot.KindUnion):         true,
	string(snapshot.KindPlainVariant):  true,
	string(snapshot.KindTupleVariant):  true,
	string(snapshot.KindStructVariant): true,
	string(snapshot.KindStructField):   true,
	string(snapshot.KindFunction):      true,
	string(snapshot.KindMethod):        true,
	string(snapshot.KindImpl):          true,
	string(snapshot.KindTrait):         true,
	string(snapshot.KindModule):        true,
	string(snapshot.KindConstant):      true,
	string(snapshot.KindStatic):        true,
}

var variantKinds = map[string]bool{
	string(snapshot.KindPlainVariant):  true,
	string(snapshot.KindTupleVariant):  true,
	string(snapshot.KindStructVariant): true,
}

var implOwnerKinds = map[string]bool{
	string(snapshot.KindStruct): true,
	string(snapshot.KindEnum):   true,
}

var functionLikeKinds = map[string]bool{
	string(snapshot.KindFunction): true,
	string(snapshot.KindMethod):   true,
}

var importableKinds = map[string]bool{
	string(snapshot.KindStruct):   true,
	string(snapshot.KindEnum):     true,
	string(snapshot.KindUnion):    true,
	string(snapshot.KindFunction): true,
	string(snapshot.KindTrait):    true,
	string(snapshot.KindModule):   true,
	string(snapshot.KindConstant): true,
	string(snapshot.KindStatic):   true,
}

// CoerceTo reports whether t can be viewed as the narrower type narrower,
// per the item-kind refinement lattice:
//
//	Item        ⊇ Variant    ⊇ {PlainVariant, TupleVariant, StructVariant}
//	Item        ⊇ ImplOwner  ⊇ {Struct, Enum}
//	Item        ⊇ FunctionLike ⊇ {Function, Method}
//	Importable  ⊇ items with a canonical path
//
// All other refinements require exact equality of the concrete typename.
func (t Token) CoerceTo(narrower string) bool {
	if t.Kind == narrower {
		return true
	}
	switch narrower {
	case "Item":
		return itemKinds[t.Kind]
	case "Variant":
		return variantKinds[t.Kind]
	case "ImplOwner":
		return implOwnerKinds[t.Kind]
	case "FunctionLike":
		return functionLikeKinds[t.Kind]
	case "Importable":
		return importableKinds[t.Kind]
	default:
		return false
	}
}
