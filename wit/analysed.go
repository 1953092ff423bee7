// Package wit defines the semantic type tree ("AnalysedType") that the SDK
// reflects user classes into, and the external schema descriptors
// ("DataSchema") published alongside it. It plays the role the WIT
// ([WebAssembly Interface Type]) type system plays for the Component Model:
// a small, closed set of type constructors with stable identity, used both to
// drive value conversion and to describe a call's shape to the outside world.
//
// [WebAssembly Interface Type]: https://component-model.bytecodealliance.org/design/wit.html
package wit

// AnalysedType is the semantic type tree used to convert values to and from
// the wire. It implements a closed sum of primitive, option, list, tuple,
// record, variant, enum, flags, and result cases.
type AnalysedType interface {
	isAnalysedType()
}

// _analysedType is an embeddable type that conforms to the [AnalysedType] interface.
type _analysedType struct{}

func (_analysedType) isAnalysedType() {}

// As probes AnalysedType t to determine if it holds concrete kind K.
// It returns the zero value and false if t is not of kind K.
func As[K AnalysedType](t AnalysedType) (k K, ok bool) {
	k, ok = t.(K)
	return k, ok
}

// Primitive kinds.
type (
	BoolType    struct{ _analysedType }
	U8Type      struct{ _analysedType }
	U16Type     struct{ _analysedType }
	U32Type     struct{ _analysedType }
	U64Type     struct{ _analysedType }
	S8Type      struct{ _analysedType }
	S16Type     struct{ _analysedType }
	S32Type     struct{ _analysedType }
	S64Type     struct{ _analysedType }
	F32Type     struct{ _analysedType }
	F64Type     struct{ _analysedType }
	CharType    struct{ _analysedType } // reserved, unsupported at the serializer
	StringType  struct{ _analysedType }
	HandleType  struct{ _analysedType }
)

// EmptyKind distinguishes the three shapes of "nothing" a TypeScript type can
// name, preserved across a round trip through an inbuilt option/result side.
type EmptyKind string

const (
	EmptyVoid      EmptyKind = "void"
	EmptyNull      EmptyKind = "null"
	EmptyUndefined EmptyKind = "undefined"
)

// OptionForm distinguishes an implicit optional field from an explicit
// T | undefined union member that happen to produce the same AnalysedType shape.
type OptionForm string

const (
	// OptionQuestionMark denotes an optional field (TypeScript `x?: T`).
	OptionQuestionMark OptionForm = "question-mark"
	// OptionUnion denotes an explicit union with undefined (`x: T | undefined`).
	OptionUnion OptionForm = "union"
)

// OptionType represents an optional value.
type OptionType struct {
	_analysedType
	Inner AnalysedType
	Form  OptionForm
}

// TypedArrayKind names a typed-array element kind recognized during decode.
type TypedArrayKind string

const (
	TypedArrayNone   TypedArrayKind = ""
	TypedArrayU8     TypedArrayKind = "u8"
	TypedArrayU16    TypedArrayKind = "u16"
	TypedArrayU32    TypedArrayKind = "u32"
	TypedArrayI8     TypedArrayKind = "i8"
	TypedArrayI16    TypedArrayKind = "i16"
	TypedArrayI32    TypedArrayKind = "i32"
	TypedArrayF32    TypedArrayKind = "f32"
	TypedArrayF64    TypedArrayKind = "f64"
	TypedArrayBigU64 TypedArrayKind = "big-u64"
	TypedArrayBigI64 TypedArrayKind = "big-i64"
)

// MapShape records that a [ListType] is logically a map of 2-tuples.
type MapShape struct {
	KeyType   AnalysedType
	ValueType AnalysedType
}

// ListType represents a sequence of values, optionally hinted as a typed
// array (for decode-time materialization) or as a map of key/value tuples.
type ListType struct {
	_analysedType
	Inner      AnalysedType
	TypedArray TypedArrayKind
	MapType    *MapShape
}

// TupleType represents a fixed-arity ordered sequence of heterogeneous values.
type TupleType struct {
	_analysedType
	Items []AnalysedType
}

// Field is a named member of a [RecordType].
type Field struct {
	Name string
	Type AnalysedType
}

// RecordType represents a set of named fields. Field names are unique within
// a record.
type RecordType struct {
	_analysedType
	Fields []Field
}

// FieldByName returns the field named name and true, or the zero Field and
// false if no such field is declared.
func (r RecordType) FieldByName(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TaggedTypeInfo records the discriminant tag-field literal name used by the
// host language to distinguish variant cases, present only for tagged unions.
type TaggedTypeInfo struct {
	CaseName string
	TagField string // host-language field name carrying the tag, usually "tag"
	ValField string // host-language field name carrying the payload, usually "val"
}

// VariantCase is one labelled arm of a [VariantType]. Type is nil for a case
// with no associated payload.
type VariantCase struct {
	Name string
	Type AnalysedType
}

// VariantType represents a tagged union. Case indices are stable: case i
// always refers to Cases[i], both on the wire and across schema republication.
// TaggedTypes is non-empty only when the union was recognized as a
// host-language tagged union (object with a literal "tag" field).
type VariantType struct {
	_analysedType
	Cases       []VariantCase
	TaggedTypes []TaggedTypeInfo
}

// CaseIndex returns the index of the case named name, or -1 if absent.
func (v VariantType) CaseIndex(name string) int {
	for i, c := range v.Cases {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// IsTagged reports whether v was derived from a host-language tagged union
// (as opposed to a structurally-matched untagged union).
func (v VariantType) IsTagged() bool {
	return len(v.TaggedTypes) > 0
}

// EnumType represents a closed set of string-valued cases with no payload.
type EnumType struct {
	_analysedType
	Cases []string
}

// FlagsType represents a WIT-style bit-set of named flags.
// Reserved: unsupported at the serializer (see spec §4.1).
type FlagsType struct {
	_analysedType
	Cases []string
}

// ResultKind distinguishes the two shapes a [ResultType] can take.
type ResultKind string

const (
	// ResultInbuilt means either side may be the empty type (void/null/undefined).
	ResultInbuilt ResultKind = "inbuilt"
	// ResultCustom means both sides are named, non-empty value fields.
	ResultCustom ResultKind = "custom"
)

// ResultType represents a two-case ok/err result. For [ResultInbuilt] results,
// OK or Err may be nil, in which case the corresponding EmptyKind records
// which flavor of "nothing" (void/null/undefined) that side had so a decode
// can reconstruct it exactly.
type ResultType struct {
	_analysedType
	Kind         ResultKind
	OK, Err      AnalysedType
	OKEmptyKind  EmptyKind
	ErrEmptyKind EmptyKind
}

// OKIsEmpty and ErrIsEmpty report whether that side is the absent/empty arm of a [ResultInbuilt] result.
func (r ResultType) OKIsEmpty() bool  { return r.Kind == ResultInbuilt && r.OK == nil }
func (r ResultType) ErrIsEmpty() bool { return r.Kind == ResultInbuilt && r.Err == nil }
