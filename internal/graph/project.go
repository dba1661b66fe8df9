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

import "fmt"

// Typename resolves a token's __typename property: the concrete variant
// name (Struct, Enum, Function, Method, PlainVariant, TupleVariant,
// StructVariant, StructField, Impl, Span, Path, Crate, CrateDiff).
func (t Token) Typename() string { return t.Kind }

// Project resolves a named property on a vertex. Properties inherited from
// Item (id, crate_id, name, docs, attrs, visibility_limit) resolve on any
// item-kind token; kind-specific properties are listed per-kind below.
//
// An unknown property name on a type that does genuinely not carry it is a
// programming error — a mismatch between a lint's query and this schema —
// and Project reports it as such rather than silently returning nil.
func (t Token) Project(field string) (any, error) {
	switch t.Kind {
	case KindCrate:
		return t.projectCrate(field)
	case KindSpan:
		return t.projectSpan(field)
	case KindPath:
		return t.projectPath(field)
	case KindCrateDiff:
		return nil, fmt.Errorf("graph: CrateDiff carries no properties, got %q", field)
	}

	if itemKinds[t.Kind] {
		if v, ok := t.projectItemCommon(field); ok {
			return v, nil
		}
		if v, ok, handled := t.projectItemSpecific(field); handled {
			if !ok {
				return nil, fmt.Errorf("graph: property %q does not apply to %s", field, t.Kind)
			}
			return v, nil
		}
		return nil, fmt.Errorf("graph: unknown property %q on %s", field, t.Kind)
	}

	return nil, fmt.Errorf("graph: %s vertices carry no properties", t.Kind)
}

func (t Token) projectCrate(field string) (any, error) {
	switch field {
	case "root":
		return string(t.crat.Root), nil
	case "crate_version":
		return t.crat.CrateVersion, nil
	case "includes_private":
		return t.crat.IncludesPrivate, nil
	case "format_version":
		return t.crat.FormatVersion, nil
	default:
		return nil, fmt.Errorf("graph: unknown Crate property %q", field)
	}
}

func (t Token) projectSpan(field string) (any, error) {
	s := t.span
	switch field {
	case "filename":
		return s.Filename, nil
	case "begin_line":
		return s.BeginLine, nil
	case "begin_column":
		return s.BeginCol, nil
	case "end_line":
		return s.EndLine, nil
	case "end_column":
		return s.EndCol, nil
	default:
		return nil, fmt.Errorf("graph: unknown Span property %q", field)
	}
}

func (t Token) projectPath(field string) (any, error) {
	if field != "path" {
		return nil, fmt.Errorf("graph: unknown Path property %q", field)
	}
	return append([]string(nil), t.path.Path...), nil
}

// projectItemCommon handles the properties every Item subtype inherits.
func (t Token) projectItemCommon(field string) (any, bool) {
	it := t.item
	switch field {
	case "id":
		return string(it.ID), true
	case "crate_id":
		return it.CrateID, true
	case "name":
		return it.Name, true
	case "docs":
		return it.Docs, true
	case "attrs":
		return append([]string(nil), it.Attrs...), true
	case "visibility_limit":
		return it.Visibility.String(), true
	default:
		return nil, false
	}
}

// projectItemSpecific handles per-kind properties. handled reports whether
// field is a recognized kind-specific property name at all (regardless of
// whether it applies to t.Kind); ok reports whether it applies to t.Kind
// specifically.
func (t Token) projectItemSpecific(field string) (value any, ok bool, handled bool) {
	switch field {
	case "struct_type":
		if s, isStruct := t.item.Inner.AsStruct(); isStruct {
			return string(s.Kind), true, true
		}
		return nil, false, true
	case "fields_stripped":
		if s, isStruct := t.item.Inner.AsStruct(); isStruct {
			return s.FieldsStripped, true, true
		}
		return nil, false, true
	case "variants_stripped":
		if e, isEnum := t.item.Inner.AsEnum(); isEnum {
			return e.VariantsStripped, true, true
		}
		return nil, false, true
	case "const":
		if f, ok := t.item.Inner.AsFunctionLike(); ok {
			return f.Header.Const, true, true
		}
		return nil, false, true
	case "async":
		if f, ok := t.item.Inner.AsFunctionLike(); ok {
			return f.Header.Async, true, true
		}
		return nil, false, true
	case "unsafe":
		if f, ok := t.item.Inner.AsFunctionLike(); ok {
			return f.Header.Unsafe, true, true
		}
		if im, ok := t.item.Inner.AsImpl(); ok {
			return im.IsUnsafe, true, true
		}
		return nil, false, true
	case "negative":
		if im, ok := t.item.Inner.AsImpl(); ok {
			return im.Negative, true, true
		}
		return nil, false, true
	case "synthetic":
		if im, ok := t.item.Inner.AsImpl(); ok {
			return im.Synthetic, true, true
		}
		return nil, false, true
	default:
		return nil, false, false
	}
}
