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

// Package snapshot decodes a single rustdoc-JSON API dump into an
// immutable, in-memory Crate value.
package snapshot

import "encoding/json"

// ItemId is an opaque identifier unique within one Crate snapshot.
type ItemId string

// Crate is one parsed API snapshot.
type Crate struct {
	FormatVersion int                `json:"format_version"`
	CrateVersion  string             `json:"crate_version,omitempty"`
	Root          ItemId             `json:"root"`
	Index         map[ItemId]*Item   `json:"index"`
	Paths         map[ItemId]Path    `json:"paths"`
	IncludesPrivate bool             `json:"includes_private,omitempty"`

	// Metadata is the optional sidecar package manifest attached after
	// loading by internal/acquire; absent for a bare snapshot file.
	Metadata *PackageMetadata `json:"-"`
}

// Path is an item's canonical dotted location, e.g. ["my_crate", "Foo"].
type Path struct {
	Path []string `json:"path"`
	Kind string   `json:"kind,omitempty"`
}

// Visibility is an item's exposure level.
type Visibility struct {
	Kind VisibilityKind
	// Restricted holds the module path when Kind == VisibilityRestricted.
	Restricted []string
}

// VisibilityKind enumerates the closed set of visibility values.
type VisibilityKind string

const (
	VisibilityPublic     VisibilityKind = "public"
	VisibilityDefault    VisibilityKind = "default"
	VisibilityCrate      VisibilityKind = "crate"
	VisibilityRestricted VisibilityKind = "restricted"
)

// String renders the visibility the way the adapter's visibility_limit
// property projects it.
func (v Visibility) String() string {
	if v.Kind == VisibilityRestricted {
		return "restricted (path)"
	}
	return string(v.Kind)
}

// UnmarshalJSON accepts either a bare string ("public") or an object
// ({"restricted": {"parent": "...", "path": "foo::bar"}}), mirroring
// rustdoc's encoding of Visibility.
func (v *Visibility) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v.Kind = VisibilityKind(s)
		return nil
	}
	var obj struct {
		Restricted struct {
			Path []string `json:"path"`
		} `json:"restricted"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	v.Kind = VisibilityRestricted
	v.Restricted = obj.Restricted.Path
	return nil
}

// Span is a source location, 1-based on both line and column.
type Span struct {
	Filename   string `json:"filename"`
	BeginLine  int    `json:"begin_line"`
	BeginCol   int    `json:"begin_column"`
	EndLine    int    `json:"end_line"`
	EndCol     int    `json:"end_column"`
}

// Item is a single public-API entity: a struct, enum, function, field,
// variant, impl, and so on. Inner carries the kind-specific payload as a
// tagged union (see InnerKind and the As* accessors).
type Item struct {
	ID         ItemId         `json:"id"`
	CrateID    int            `json:"crate_id"`
	Name       string         `json:"name,omitempty"`
	Visibility Visibility     `json:"visibility"`
	Docs       string         `json:"docs,omitempty"`
	Attrs      []string       `json:"attrs,omitempty"`
	Span       *Span          `json:"span,omitempty"`
	Inner      Inner          `json:"inner"`
}

// InnerKind names the concrete variant carried by an Item's Inner field; it
// is also the value the graph adapter's __typename property resolves to.
type InnerKind string

const (
	KindStruct        InnerKind = "Struct"
	KindEnum          InnerKind = "Enum"
	KindUnion         InnerKind = "Union"
	KindPlainVariant  InnerKind = "PlainVariant"
	KindTupleVariant  InnerKind = "TupleVariant"
	KindStructVariant InnerKind = "StructVariant"
	KindStructField   InnerKind = "StructField"
	KindFunction      InnerKind = "Function"
	KindMethod        InnerKind = "Method"
	KindImpl          InnerKind = "Impl"
	KindTrait         InnerKind = "Trait"
	KindModule        InnerKind = "Module"
	KindConstant      InnerKind = "Constant"
	KindStatic        InnerKind = "Static"
)

// Inner is the tagged union rustdoc calls "ItemEnum". It is decoded
// generically (kind discriminator plus raw payload) and unpacked lazily via
// the As* accessors, rather than as a giant Go sum-type, because only a
// handful of the many rustdoc item kinds are ever traversed by a lint query.
type Inner struct {
	Kind    InnerKind
	payload json.RawMessage
}

// UnmarshalJSON decodes rustdoc's single-key-object encoding of ItemEnum,
// e.g. {"struct": {...}} or {"function": {...}}.
func (in *Inner) UnmarshalJSON(b []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	for key, raw := range obj {
		in.Kind = normalizeKind(key)
		in.payload = raw
		return nil
	}
	return nil
}

func normalizeKind(jsonKey string) InnerKind {
	switch jsonKey {
	case "struct":
		return KindStruct
	case "enum":
		return KindEnum
	case "union":
		return KindUnion
	case "struct_field":
		return KindStructField
	case "function":
		return KindFunction
	case "method":
		return KindMethod
	case "impl":
		return KindImpl
	case "trait":
		return KindTrait
	case "module":
		return KindModule
	case "constant":
		return KindConstant
	case "static":
		return KindStatic
	default:
		return InnerKind(jsonKey)
	}
}

// AsStruct decodes the payload as a Struct if Kind == KindStruct.
func (in Inner) AsStruct() (*Struct, bool) {
	if in.Kind != KindStruct {
		return nil, false
	}
	var s Struct
	if err := json.Unmarshal(in.payload, &s); err != nil {
		return nil, false
	}
	return &s, true
}

// AsEnum decodes the payload as an Enum if Kind == KindEnum.
func (in Inner) AsEnum() (*Enum, bool) {
	if in.Kind != KindEnum {
		return nil, false
	}
	var e Enum
	if err := json.Unmarshal(in.payload, &e); err != nil {
		return nil, false
	}
	return &e, true
}

// AsVariant decodes the payload as a Variant if Kind is one of the three
// variant kinds.
func (in Inner) AsVariant() (*Variant, bool) {
	switch in.Kind {
	case KindPlainVariant, KindTupleVariant, KindStructVariant:
	default:
		return nil, false
	}
	var v Variant
	if err := json.Unmarshal(in.payload, &v); err != nil {
		return nil, false
	}
	v.Kind = in.Kind
	return &v, true
}

// AsStructField decodes the payload as a StructField (a bare Type) if
// Kind == KindStructField.
func (in Inner) AsStructField() (*Type, bool) {
	if in.Kind != KindStructField {
		return nil, false
	}
	var t Type
	if err := json.Unmarshal(in.payload, &t); err != nil {
		return nil, false
	}
	return &t, true
}

// AsFunctionLike decodes the payload as a Function/Method if Kind is either.
func (in Inner) AsFunctionLike() (*FunctionLike, bool) {
	if in.Kind != KindFunction && in.Kind != KindMethod {
		return nil, false
	}
	var f FunctionLike
	if err := json.Unmarshal(in.payload, &f); err != nil {
		return nil, false
	}
	return &f, true
}

// AsImpl decodes the payload as an Impl if Kind == KindImpl.
func (in Inner) AsImpl() (*Impl, bool) {
	if in.Kind != KindImpl {
		return nil, false
	}
	var i Impl
	if err := json.Unmarshal(in.payload, &i); err != nil {
		return nil, false
	}
	return &i, true
}

// AsTrait decodes the payload as a Trait if Kind == KindTrait.
func (in Inner) AsTrait() (*Trait, bool) {
	if in.Kind != KindTrait {
		return nil, false
	}
	var t Trait
	if err := json.Unmarshal(in.payload, &t); err != nil {
		return nil, false
	}
	return &t, true
}

// StructKind distinguishes plain/tuple/unit structs.
type StructKind string

const (
	StructPlain StructKind = "plain"
	StructTuple StructKind = "tuple"
	StructUnit  StructKind = "unit"
)

// Struct is the payload of a struct item.
type Struct struct {
	Kind           StructKind `json:"kind"`
	FieldsStripped bool       `json:"fields_stripped"`
	Fields         []ItemId   `json:"fields"`
	Impls          []ItemId   `json:"impls"`
}

// Enum is the payload of an enum item.
type Enum struct {
	VariantsStripped bool     `json:"variants_stripped"`
	Variants         []ItemId `json:"variants"`
	Impls            []ItemId `json:"impls"`
}

// Variant is the payload of one enum variant.
type Variant struct {
	Kind   InnerKind `json:"-"`
	Tuple  []Type    `json:"tuple,omitempty"`
	Fields []ItemId  `json:"fields,omitempty"`
}

// Impl is the payload of an impl block.
type Impl struct {
	IsUnsafe             bool     `json:"is_unsafe"`
	Negative             bool     `json:"negative"`
	Synthetic            bool     `json:"synthetic"`
	Trait                *Type    `json:"trait,omitempty"`
	Items                []ItemId `json:"items"`
	ProvidedTraitMethods []string `json:"provided_trait_methods,omitempty"`
}

// Trait is the payload of a trait item. Items holds every associated item
// declared on the trait, including the default-bodied methods whose names
// reappear in an implementing Impl's provided_trait_methods.
type Trait struct {
	IsAutoTrait bool     `json:"is_auto"`
	IsUnsafe    bool     `json:"is_unsafe"`
	Items       []ItemId `json:"items"`
	Bounds      []string `json:"bounds,omitempty"`
}

// Header describes the const/async/unsafe/abi modifiers on a function or
// method signature.
type Header struct {
	Const  bool   `json:"const_"`
	Async  bool   `json:"async_"`
	Unsafe bool   `json:"unsafe_"`
	ABI    string `json:"abi,omitempty"`
}

// Param is one named, typed function input.
type Param struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Decl is a function/method signature: its ordered inputs and optional
// return type.
type Decl struct {
	Inputs []Param `json:"inputs"`
	Output *Type   `json:"output,omitempty"`
}

// FunctionLike is the shared payload shape of Function and Method items.
type FunctionLike struct {
	Header Header `json:"header"`
	Decl   Decl   `json:"decl"`
}

// TypeKind enumerates the Type ADT's variants.
type TypeKind string

const (
	TypeResolvedPath   TypeKind = "resolved_path"
	TypeGeneric        TypeKind = "generic"
	TypePrimitive      TypeKind = "primitive"
	TypeBorrowedRef    TypeKind = "borrowed_ref"
	TypeRawPointer     TypeKind = "raw_pointer"
	TypeTuple          TypeKind = "tuple"
	TypeSlice          TypeKind = "slice"
	TypeArray          TypeKind = "array"
	TypeImplTrait      TypeKind = "impl_trait"
	TypeDynTrait       TypeKind = "dyn_trait"
	TypeFunctionPointer TypeKind = "function_pointer"
	TypeQualifiedPath  TypeKind = "qualified_path"
	TypeInfer          TypeKind = "infer"
	TypePat            TypeKind = "pat"
)

// Type is the recursive ADT describing a Rust type as it appears in a
// function signature, field, or impl trait reference.
type Type struct {
	Kind TypeKind `json:"kind"`

	// ResolvedPath / QualifiedPath
	ID   ItemId `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Args []Type `json:"args,omitempty"`

	// BorrowedRef / RawPointer
	Lifetime string `json:"lifetime,omitempty"`
	Mutable  bool   `json:"mutable,omitempty"`
	Inner    *Type  `json:"inner,omitempty"`

	// Tuple
	Elements []Type `json:"elements,omitempty"`

	// Array
	Len string `json:"len,omitempty"`

	// ImplTrait / DynTrait
	Bounds []string `json:"bounds,omitempty"`

	// FunctionPointer
	Header Header `json:"header,omitempty"`
	Decl   *Decl  `json:"decl,omitempty"`

	// QualifiedPath
	SelfType *Type  `json:"self_type,omitempty"`
	Trait    *Type  `json:"trait,omitempty"`
}

// AsResolvedPath returns (id, true) when the type is a ResolvedPath, the
// only Type kind the adapter's Impl.trait_ → Impl traversal cares about.
func (t Type) AsResolvedPath() (ItemId, bool) {
	if t.Kind != TypeResolvedPath {
		return "", false
	}
	return t.ID, true
}
