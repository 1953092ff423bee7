// Package cm implements the runtime counterpart of package wit's type tree:
// a tagged Value tree that mirrors an AnalysedType, a flattened node-indexed
// WitValue wire form, and the DataValue/ElementValue wrapper types used to
// group a call's parameters. It plays the role the teacher's cm package plays
// for the Canonical ABI, but the shapes here are runtime, reflection-built
// values rather than a fixed in-memory flat layout for a compiled module.
package cm

// Value is a tagged tree of runtime values mirroring a wit.AnalysedType.
type Value interface {
	isValue()
}

type _value struct{}

func (_value) isValue() {}

// As probes Value v to determine if it holds concrete kind K.
func As[K Value](v Value) (k K, ok bool) {
	k, ok = v.(K)
	return k, ok
}

// Primitive leaves.
type (
	BoolValue   struct{ _value; V bool }
	U8Value     struct{ _value; V uint8 }
	U16Value    struct{ _value; V uint16 }
	U32Value    struct{ _value; V uint32 }
	U64Value    struct{ _value; V uint64 }
	S8Value     struct{ _value; V int8 }
	S16Value    struct{ _value; V int16 }
	S32Value    struct{ _value; V int32 }
	S64Value    struct{ _value; V int64 }
	F32Value    struct{ _value; V float32 }
	F64Value    struct{ _value; V float64 }
	CharValue   struct{ _value; V rune }
	StringValue struct{ _value; V string }
	HandleValue struct{ _value; V uint32 }
)

// OptionValue represents an optional value. Inner is nil for the none case.
type OptionValue struct {
	_value
	Inner Value
}

// IsNone reports whether o represents the none case.
func (o OptionValue) IsNone() bool { return o.Inner == nil }

// ListValue represents an ordered sequence of values.
type ListValue struct {
	_value
	Items []Value
}

// TupleValue represents a fixed-arity ordered sequence of heterogeneous values.
type TupleValue struct {
	_value
	Items []Value
}

// FieldValue is one named field within a [RecordValue].
type FieldValue struct {
	Name  string
	Value Value
}

// RecordValue represents a set of named field values.
type RecordValue struct {
	_value
	Fields []FieldValue
}

// ByName returns the value of the field named name and true, or the zero
// value and false if no such field is present.
func (r RecordValue) ByName(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// VariantValue represents one case of a tagged union. CaseValue is nil when
// the selected case carries no payload.
type VariantValue struct {
	_value
	CaseIdx   uint32
	CaseValue Value
}

// EnumValue represents a string-valued enum case by its index.
type EnumValue struct {
	_value
	CaseIdx uint32
}

// FlagsValue represents a bit-set of named flags. Reserved, unsupported at
// the serializer (see spec §4.1).
type FlagsValue struct {
	_value
	Bits []bool
}

// ResultValue represents an ok/err result. Value is nil when the selected
// side is the empty arm of an inbuilt result.
type ResultValue struct {
	_value
	IsErr bool
	Value Value
}
