// Package marshal implements the value serializer (spec §4.5) and
// deserializer (spec §4.6): the conversion between host Go values and the
// cm.Value tree an AnalysedType describes, and between a cm.DataValue and a
// method's positional host arguments.
package marshal

import (
	"reflect"

	"github.com/golemcloud/golem-agent-sdk/cm"
	"github.com/golemcloud/golem-agent-sdk/golemerr"
	"github.com/golemcloud/golem-agent-sdk/reflectx"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

// Serialize converts host value v into a cm.Value matching the shape of t.
// v is expected to be of the Go type the same AnalysedType was derived from
// via reflectx.Mapper; a value of any other shape fails with TypeMismatch.
func Serialize(v reflect.Value, t wit.AnalysedType) (cm.Value, error) {
	for v.IsValid() && v.Kind() == reflect.Interface {
		v = v.Elem()
	}

	switch tt := t.(type) {
	case wit.BoolType:
		if !v.IsValid() || v.Kind() != reflect.Bool {
			return nil, typeMismatch(t, v)
		}
		return cm.BoolValue{V: v.Bool()}, nil

	case wit.U8Type:
		u, err := serializeUnsigned(v, t, 8)
		return cm.U8Value{V: uint8(u)}, err
	case wit.U16Type:
		u, err := serializeUnsigned(v, t, 16)
		return cm.U16Value{V: uint16(u)}, err
	case wit.U32Type:
		u, err := serializeUnsigned(v, t, 32)
		return cm.U32Value{V: uint32(u)}, err
	case wit.U64Type:
		u, err := serializeUnsigned(v, t, 64)
		return cm.U64Value{V: u}, err

	case wit.S8Type:
		i, err := serializeSigned(v, t, 8)
		return cm.S8Value{V: int8(i)}, err
	case wit.S16Type:
		i, err := serializeSigned(v, t, 16)
		return cm.S16Value{V: int16(i)}, err
	case wit.S32Type:
		i, err := serializeSigned(v, t, 32)
		return cm.S32Value{V: int32(i)}, err
	case wit.S64Type:
		i, err := serializeSigned(v, t, 64)
		return cm.S64Value{V: i}, err

	case wit.F32Type:
		if !v.IsValid() || v.Kind() != reflect.Float32 {
			return nil, typeMismatch(t, v)
		}
		return cm.F32Value{V: float32(v.Float())}, nil
	case wit.F64Type:
		if !v.IsValid() || (v.Kind() != reflect.Float64 && v.Kind() != reflect.Float32) {
			return nil, typeMismatch(t, v)
		}
		return cm.F64Value{V: v.Float()}, nil

	case wit.StringType:
		if !v.IsValid() || v.Kind() != reflect.String {
			return nil, typeMismatch(t, v)
		}
		return cm.StringValue{V: v.String()}, nil

	case wit.CharType:
		return nil, golemerr.New(golemerr.TypeMismatch, "char is reserved and unsupported at the serializer")

	case wit.HandleType:
		u, err := serializeUnsigned(v, t, 32)
		return cm.HandleValue{V: uint32(u)}, err

	case wit.OptionType:
		return serializeOption(v, tt)
	case wit.ListType:
		return serializeList(v, tt)
	case wit.TupleType:
		return serializeTuple(v, tt)
	case wit.RecordType:
		return serializeRecord(v, tt)
	case wit.VariantType:
		return serializeVariant(v, tt)
	case wit.EnumType:
		return serializeEnum(v, tt)
	case wit.ResultType:
		return serializeResult(v, tt)
	case wit.FlagsType:
		return nil, golemerr.New(golemerr.TypeMismatch, "flags are reserved and unsupported at the serializer")

	default:
		return nil, golemerr.New(golemerr.SchemaConstruction, "serialize: unsupported AnalysedType %T", t)
	}
}

func typeMismatch(t wit.AnalysedType, v reflect.Value) error {
	if !v.IsValid() {
		return golemerr.New(golemerr.TypeMismatch, "expected %T, got no value", t)
	}
	return golemerr.New(golemerr.TypeMismatch, "expected %T, got Go value of type %s", t, v.Type())
}

// serializeUnsigned accepts any unsigned- or signed-kind value that fits in
// bits, the Go realization of spec §4.5's "u64/s64 accept both wide-integer
// and plain number, the latter widened" rule generalized to every width.
func serializeUnsigned(v reflect.Value, t wit.AnalysedType, bits int) (uint64, error) {
	if !v.IsValid() {
		return 0, typeMismatch(t, v)
	}
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if bits < 64 && u >= uint64(1)<<uint(bits) {
			return 0, golemerr.New(golemerr.TypeMismatch, "value %d overflows u%d", u, bits)
		}
		return u, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.Int()
		if i < 0 {
			return 0, golemerr.New(golemerr.TypeMismatch, "negative value %d is not a u%d", i, bits)
		}
		if bits < 64 && uint64(i) >= uint64(1)<<uint(bits) {
			return 0, golemerr.New(golemerr.TypeMismatch, "value %d overflows u%d", i, bits)
		}
		return uint64(i), nil
	default:
		return 0, typeMismatch(t, v)
	}
}

func serializeSigned(v reflect.Value, t wit.AnalysedType, bits int) (int64, error) {
	if !v.IsValid() {
		return 0, typeMismatch(t, v)
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.Int()
		if bits < 64 {
			max := int64(1) << uint(bits-1)
			if i >= max || i < -max {
				return 0, golemerr.New(golemerr.TypeMismatch, "value %d overflows s%d", i, bits)
			}
		}
		return i, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if bits < 64 && u >= uint64(1)<<uint(bits-1) {
			return 0, golemerr.New(golemerr.TypeMismatch, "value %d overflows s%d", u, bits)
		}
		return int64(u), nil
	default:
		return 0, typeMismatch(t, v)
	}
}

// serializeOption handles both implicit-optional (*T, nil check) and
// explicit (reflectx.Union[T], Present flag) host shapes.
func serializeOption(v reflect.Value, t wit.OptionType) (cm.Value, error) {
	if !v.IsValid() {
		return cm.OptionValue{}, nil
	}
	if val, present, ok := reflectx.IsUnion(v); ok {
		if !present {
			return cm.OptionValue{}, nil
		}
		inner, err := Serialize(val, t.Inner)
		if err != nil {
			return nil, err
		}
		return cm.OptionValue{Inner: inner}, nil
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return cm.OptionValue{}, nil
		}
		inner, err := Serialize(v.Elem(), t.Inner)
		if err != nil {
			return nil, err
		}
		return cm.OptionValue{Inner: inner}, nil
	}
	inner, err := Serialize(v, t.Inner)
	if err != nil {
		return nil, err
	}
	return cm.OptionValue{Inner: inner}, nil
}

func serializeList(v reflect.Value, t wit.ListType) (cm.Value, error) {
	if !v.IsValid() {
		return nil, typeMismatch(t, v)
	}
	if t.MapType != nil {
		return serializeMap(v, t)
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, typeMismatch(t, v)
	}
	items := make([]cm.Value, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		item, err := Serialize(v.Index(i), t.Inner)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return cm.ListValue{Items: items}, nil
}

func serializeMap(v reflect.Value, t wit.ListType) (cm.Value, error) {
	if v.Kind() != reflect.Map {
		return nil, typeMismatch(t, v)
	}
	items := make([]cm.Value, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := Serialize(iter.Key(), t.MapType.KeyType)
		if err != nil {
			return nil, err
		}
		val, err := Serialize(iter.Value(), t.MapType.ValueType)
		if err != nil {
			return nil, err
		}
		items = append(items, cm.TupleValue{Items: []cm.Value{k, val}})
	}
	return cm.ListValue{Items: items}, nil
}

func serializeTuple(v reflect.Value, t wit.TupleType) (cm.Value, error) {
	if len(t.Items) == 0 {
		return cm.TupleValue{}, nil
	}
	if !v.IsValid() || v.Kind() != reflect.Struct || v.NumField() != len(t.Items) {
		return nil, typeMismatch(t, v)
	}
	items := make([]cm.Value, 0, len(t.Items))
	for i, it := range t.Items {
		val, err := Serialize(v.Field(i), it)
		if err != nil {
			return nil, err
		}
		items = append(items, val)
	}
	return cm.TupleValue{Items: items}, nil
}

func serializeRecord(v reflect.Value, t wit.RecordType) (cm.Value, error) {
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return nil, typeMismatch(t, v)
	}
	fields := make([]cm.FieldValue, 0, len(t.Fields))
	for _, f := range t.Fields {
		fv := fieldByGolemName(v, f.Name)
		if !fv.IsValid() {
			if opt, ok := f.Type.(wit.OptionType); ok {
				_ = opt
				fields = append(fields, cm.FieldValue{Name: f.Name, Value: cm.OptionValue{}})
				continue
			}
			return nil, golemerr.New(golemerr.TypeMismatch, "record %T: missing required field %q", t, f.Name)
		}
		val, err := Serialize(fv, f.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, cm.FieldValue{Name: f.Name, Value: val})
	}
	return cm.RecordValue{Fields: fields}, nil
}

// fieldByGolemName finds the Go struct field whose golem wire name (per
// reflectx.FieldTag / its exported-name default) matches name.
func fieldByGolemName(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if golemFieldName(sf) == name {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

func golemFieldName(sf reflect.StructField) string {
	if tag, ok := sf.Tag.Lookup(reflectx.FieldTag); ok {
		if n, _, _ := cutComma(tag); n != "" && n != "-" {
			return n
		}
	}
	return lowerFirst(sf.Name)
}

func cutComma(s string) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

func serializeVariant(v reflect.Value, t wit.VariantType) (cm.Value, error) {
	if !v.IsValid() {
		return nil, typeMismatch(t, v)
	}
	if t.IsTagged() {
		return serializeTaggedVariant(v, t)
	}
	return serializeUntaggedVariant(v, t)
}

// serializeTaggedVariant expects v to hold a registered reflectx union case
// value (directly, or boxed in an interface already unwrapped by Serialize).
func serializeTaggedVariant(v reflect.Value, t wit.VariantType) (cm.Value, error) {
	tagger, ok := v.Interface().(reflectx.TaggedUnionCase)
	if !ok {
		return nil, golemerr.New(golemerr.UnionAmbiguityOrMiss, "variant: value of type %s is not a registered union case", v.Type())
	}
	tag := tagger.UnionTag()
	idx := t.CaseIndex(tag)
	if idx < 0 {
		return nil, golemerr.New(golemerr.UnionAmbiguityOrMiss, "variant: unknown case tag %q", tag)
	}
	c := t.Cases[idx]
	if c.Type == nil {
		return cm.VariantValue{CaseIdx: uint32(idx)}, nil
	}
	valField := v.FieldByName("Val")
	if !valField.IsValid() {
		return nil, golemerr.New(golemerr.UnionAmbiguityOrMiss, "variant: case %q declares a payload but value has no Val field", tag)
	}
	payload, err := Serialize(valField, c.Type)
	if err != nil {
		return nil, err
	}
	return cm.VariantValue{CaseIdx: uint32(idx), CaseValue: payload}, nil
}

// serializeUntaggedVariant performs the structural "first type that matches
// the value" search spec §4.5 describes for untagged unions; the Go
// realization never produces untagged variants itself (every Go tagged union
// requires explicit registration), but a consumer could declare one by hand,
// so it is still honored here on a best-effort basis.
func serializeUntaggedVariant(v reflect.Value, t wit.VariantType) (cm.Value, error) {
	for i, c := range t.Cases {
		if c.Type == nil {
			continue
		}
		if val, err := Serialize(v, c.Type); err == nil {
			return cm.VariantValue{CaseIdx: uint32(i), CaseValue: val}, nil
		}
	}
	return nil, golemerr.New(golemerr.UnionAmbiguityOrMiss, "untagged variant: no case matches value of type %s", v.Type())
}

func serializeEnum(v reflect.Value, t wit.EnumType) (cm.Value, error) {
	if !v.IsValid() || v.Kind() != reflect.String {
		return nil, typeMismatch(t, v)
	}
	s := v.String()
	for i, c := range t.Cases {
		if c == s {
			return cm.EnumValue{CaseIdx: uint32(i)}, nil
		}
	}
	return nil, golemerr.New(golemerr.TypeMismatch, "enum: %q is not a declared case", s)
}

func serializeResult(v reflect.Value, t wit.ResultType) (cm.Value, error) {
	if !v.IsValid() {
		return nil, typeMismatch(t, v)
	}
	okVal, errVal, isErr, ok := reflectx.IsResult(v)
	if !ok {
		return nil, typeMismatch(t, v)
	}
	if isErr {
		if t.ErrIsEmpty() {
			return cm.ResultValue{IsErr: true}, nil
		}
		payload, err := Serialize(errVal, t.Err)
		if err != nil {
			return nil, err
		}
		return cm.ResultValue{IsErr: true, Value: payload}, nil
	}
	if t.OKIsEmpty() {
		return cm.ResultValue{}, nil
	}
	payload, err := Serialize(okVal, t.OK)
	if err != nil {
		return nil, err
	}
	return cm.ResultValue{Value: payload}, nil
}
