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

	"github.com/cratecheck/cratecheck/internal/snapshot"
)

// Neighbors resolves a named edge off a vertex. Every edge preserves the
// originating token's Origin except the two that explicitly cross sides of
// a diff (CrateDiff.current, CrateDiff.baseline).
func (t Token) Neighbors(edge string) ([]Token, error) {
	switch t.Kind {
	case KindCrateDiff:
		return t.crateDiffNeighbors(edge)
	case KindCrate:
		return t.crateNeighbors(edge)
	}

	if itemKinds[t.Kind] {
		return t.itemNeighbors(edge)
	}

	return nil, fmt.Errorf("graph: %s vertices carry no edges", t.Kind)
}

func (t Token) crateDiffNeighbors(edge string) ([]Token, error) {
	switch edge {
	case "current":
		if t.owner == nil {
			return nil, fmt.Errorf("graph: CrateDiff.current has no current crate attached")
		}
		return []Token{crateToken(Current, t.owner)}, nil
	case "baseline":
		if t.altCrate == nil {
			return nil, fmt.Errorf("graph: CrateDiff.baseline has no baseline crate attached")
		}
		return []Token{crateToken(Previous, t.altCrate)}, nil
	default:
		return nil, fmt.Errorf("graph: unknown CrateDiff edge %q", edge)
	}
}

func (t Token) crateNeighbors(edge string) ([]Token, error) {
	if edge != "item" {
		return nil, fmt.Errorf("graph: unknown Crate edge %q", edge)
	}
	out := make([]Token, 0, len(t.crat.Index))
	for _, it := range t.crat.Index {
		out = append(out, itemToken(t.Origin, t.crat, it))
	}
	return out, nil
}

func (t Token) itemNeighbors(edge string) ([]Token, error) {
	switch edge {
	case "span":
		if t.item.Span == nil {
			return nil, nil
		}
		return []Token{{Origin: t.Origin, Kind: KindSpan, span: t.item.Span}}, nil
	case "path":
		p, ok := t.owner.Paths[t.item.ID]
		if !ok {
			return nil, nil
		}
		return []Token{{Origin: t.Origin, Kind: KindPath, path: &p}}, nil
	case "field":
		return t.fieldNeighbors()
	case "variant":
		return t.variantNeighbors()
	case "impl":
		return t.implNeighbors(false)
	case "inherent_impl":
		return t.implNeighbors(true)
	case "method":
		return t.methodNeighbors()
	default:
		return nil, fmt.Errorf("graph: unknown %s edge %q", t.Kind, edge)
	}
}

func (t Token) fieldNeighbors() ([]Token, error) {
	s, ok := t.item.Inner.AsStruct()
	if !ok {
		return nil, fmt.Errorf("graph: field edge only applies to Struct, got %s", t.Kind)
	}
	return t.resolveIDs(s.Fields), nil
}

func (t Token) variantNeighbors() ([]Token, error) {
	e, ok := t.item.Inner.AsEnum()
	if !ok {
		return nil, fmt.Errorf("graph: variant edge only applies to Enum, got %s", t.Kind)
	}
	return t.resolveIDs(e.Variants), nil
}

// implNeighbors returns a struct's or enum's impl blocks. inherentOnly
// restricts the result to impls with no implemented trait (the
// inherent_impl edge).
func (t Token) implNeighbors(inherentOnly bool) ([]Token, error) {
	var ids []snapshot.ItemId
	if s, ok := t.item.Inner.AsStruct(); ok {
		ids = s.Impls
	} else if e, ok := t.item.Inner.AsEnum(); ok {
		ids = e.Impls
	} else {
		return nil, fmt.Errorf("graph: impl edge only applies to ImplOwner, got %s", t.Kind)
	}

	resolved := t.resolveIDs(ids)
	if !inherentOnly {
		return resolved, nil
	}

	out := make([]Token, 0, len(resolved))
	for _, tok := range resolved {
		im, ok := tok.item.Inner.AsImpl()
		if ok && im.Trait == nil {
			out = append(out, tok)
		}
	}
	return out, nil
}

// methodNeighbors returns every Method item reachable from an Impl: those
// directly listed among the impl's own items, plus, for every name in
// provided_trait_methods, the Method item of that name found on the trait
// the impl implements. If provided_trait_methods is nonempty but the
// impl's trait cannot be resolved to a concrete trait item, the traversal
// fails rather than silently dropping the provided methods.
func (t Token) methodNeighbors() ([]Token, error) {
	im, ok := t.item.Inner.AsImpl()
	if !ok {
		return nil, fmt.Errorf("graph: method edge only applies to Impl, got %s", t.Kind)
	}

	out := make([]Token, 0, len(im.Items)+len(im.ProvidedTraitMethods))
	for _, tok := range t.resolveIDs(im.Items) {
		if tok.Kind == string(snapshot.KindMethod) {
			out = append(out, tok)
		}
	}

	if len(im.ProvidedTraitMethods) == 0 {
		return out, nil
	}

	if im.Trait == nil {
		return nil, fmt.Errorf("graph: impl %s has provided_trait_methods but no trait", t.item.ID)
	}
	traitID, ok := im.Trait.AsResolvedPath()
	if !ok {
		return nil, fmt.Errorf("graph: impl %s implements a trait that is not a resolved path, cannot resolve %d provided method(s)", t.item.ID, len(im.ProvidedTraitMethods))
	}
	traitItem, ok := t.owner.Index[traitID]
	if !ok {
		return nil, fmt.Errorf("graph: impl %s references unresolvable trait %s", t.item.ID, traitID)
	}
	trait, ok := traitItem.Inner.AsTrait()
	if !ok {
		return nil, fmt.Errorf("graph: impl %s's trait reference %s is not a Trait item", t.item.ID, traitID)
	}

	wanted := make(map[string]bool, len(im.ProvidedTraitMethods))
	for _, name := range im.ProvidedTraitMethods {
		wanted[name] = true
	}
	for _, tok := range t.resolveIDs(trait.Items) {
		if tok.Kind == string(snapshot.KindMethod) && wanted[tok.item.Name] {
			out = append(out, tok)
		}
	}
	return out, nil
}

func (t Token) resolveIDs(ids []snapshot.ItemId) []Token {
	out := make([]Token, 0, len(ids))
	for _, id := range ids {
		it, ok := t.owner.Index[id]
		if !ok {
			continue
		}
		out = append(out, itemToken(t.Origin, t.owner, it))
	}
	return out
}
