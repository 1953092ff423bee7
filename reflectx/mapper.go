// Package reflectx maps a Go reflect.Type into a wit.AnalysedType, the Go
// realization of the external "reflection collaborator" spec §4.3 describes:
// where the original SDK consumed a TypeScript compiler's structural Type
// shape, this module reflects over the host language it actually runs
// in — Go structs, methods, and generics — using the standard reflect
// package, the idiomatic substitute grounded in examples such as
// humaproto.SchemaFromType and globulario's dynamic reflection helpers.
package reflectx

import (
	"math/big"
	"reflect"
	"regexp"
	"time"

	"github.com/golemcloud/golem-agent-sdk/golemerr"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

// ScopeKind names the declaration site a type is being mapped from.
type ScopeKind string

const (
	ScopeConstructorArg ScopeKind = "constructor-arg"
	ScopeMethodParam    ScopeKind = "method-param"
	ScopeMethodReturn   ScopeKind = "method-return"
	ScopeRecordField    ScopeKind = "record-field"
)

// Scope carries the context the type mapper needs to produce good error
// messages and to apply the optional-wrapping rule.
type Scope struct {
	Kind      ScopeKind
	ClassName string
	MemberName string // constructor, method, or field name
	ParamName string
	// Optional is true when the declaration site marks this type as
	// optional (a `*T` record field or one whose `golem` tag includes
	// "optional", or a constructor/method parameter whose ParamMeta.Optional
	// is set). It drives
	// the optional-wrapping rule in §4.3: if the mapped type is not already an
	// option(T, question-mark), it is wrapped as option(T, question-mark).
	Optional bool
}

func (s Scope) context() string {
	ctx := s.ClassName
	if s.MemberName != "" {
		ctx += "." + s.MemberName
	}
	if s.ParamName != "" {
		ctx += "(" + s.ParamName + ")"
	}
	return ctx
}

// unionOptionalMarker is implemented by [Union] to signal an explicit
// T | undefined union, as distinct from an implicitly optional field.
type unionOptionalMarker interface{ isUnionOptional() }

var unionOptionalMarkerType = reflect.TypeOf((*unionOptionalMarker)(nil)).Elem()

// Union represents an explicit `T | undefined` union member, as opposed to a
// `*T` field which the mapper treats as an implicitly optional field
// (option(T, question-mark) vs option(T, union) in spec §4.1 terms). Unlike a
// `*T`, a Union[T] also makes the "no value" case explicit at the type level
// instead of overloading Go's nil.
type Union[T any] struct {
	Val     T
	Present bool
}

// SomeUnion returns a present Union[T] holding v.
func SomeUnion[T any](v T) Union[T] { return Union[T]{Val: v, Present: true} }

// NoneUnion returns an absent Union[T].
func NoneUnion[T any]() Union[T] { return Union[T]{} }

func (Union[T]) isUnionOptional() {}

// TaggedUnionCase is implemented by a tagged-union case type to name its
// wire tag literal. It must be implemented so that UnionTag's result does
// not depend on the receiver's field values: the schema builder calls it on
// a zero-value instance (reflect.New(c).Elem()), since building a schema
// works from types alone, never from a live value. An optional exported
// "Val" field on the case struct carries the case's payload, if any.
//
//	type Sunny struct{ Val int }
//	func (Sunny) UnionTag() string { return "sunny" }
type TaggedUnionCase interface {
	UnionTag() string
}

var taggedUnionCaseType = reflect.TypeOf((*TaggedUnionCase)(nil)).Elem()

// resultMarker is implemented by [Result] to identify it structurally.
type resultMarker interface{ isGolemResult() (ok, err reflect.Type) }

var resultMarkerType = reflect.TypeOf((*resultMarker)(nil)).Elem()

// Result represents a Result<OK, Err>. EmptyOK/EmptyErr instantiations use
// struct{} for the empty side; the mapper recognizes struct{} (and any type
// implementing [IsVoidLike]) as the inbuilt empty type. Fields are unexported
// so construction goes through [Ok] and [Failure], which keep the ok/err
// payload and the isErr discriminant from getting out of sync.
type Result[OK, Err any] struct {
	okVal  OK
	errVal Err
	isErr  bool
}

// Ok returns a Result in the ok state holding v.
func Ok[OK, Err any](v OK) Result[OK, Err] { return Result[OK, Err]{okVal: v} }

// Failure returns a Result in the err state holding e.
func Failure[OK, Err any](e Err) Result[OK, Err] { return Result[OK, Err]{errVal: e, isErr: true} }

// IsErr reports whether r holds the err case.
func (r Result[OK, Err]) IsErr() bool { return r.isErr }

// OKValue returns r's ok payload. Only meaningful when !r.IsErr().
func (r Result[OK, Err]) OKValue() OK { return r.okVal }

// ErrValue returns r's err payload. Only meaningful when r.IsErr().
func (r Result[OK, Err]) ErrValue() Err { return r.errVal }

func (Result[OK, Err]) isGolemResult() (ok, err reflect.Type) {
	return reflect.TypeOf((*OK)(nil)).Elem(), reflect.TypeOf((*Err)(nil)).Elem()
}

// IsVoidLike is implemented by types that should be treated as the "nothing"
// arm of a Result or as an empty method return, distinguishing which flavor
// of empty (void/null/undefined) to preserve for round-tripping.
type IsVoidLike interface {
	EmptyKind() wit.EmptyKind
}

// Mapper converts reflect.Type values into wit.AnalysedType, caching tagged
// union case registrations supplied by the caller (the schema builder) since
// Go cannot discover interface implementors on its own.
type Mapper struct {
	unions map[reflect.Type][]reflect.Type // union interface type -> registered case types, in registration order
}

// NewMapper returns a Mapper ready to use.
func NewMapper() *Mapper {
	return &Mapper{unions: make(map[reflect.Type][]reflect.Type)}
}

// RegisterUnion declares that the interface type iface's possible values are
// exactly the given case struct types, each of which must implement
// [TaggedUnionCase] with a distinct tag. Call this before mapping any type
// that contains iface.
func (m *Mapper) RegisterUnion(iface reflect.Type, cases ...reflect.Type) error {
	if iface.Kind() != reflect.Interface {
		return golemerr.New(golemerr.SchemaConstruction, "RegisterUnion: %s is not an interface type", iface)
	}
	seen := make(map[string]bool, len(cases))
	for _, c := range cases {
		if !c.Implements(taggedUnionCaseType) && !reflect.PointerTo(c).Implements(taggedUnionCaseType) {
			return golemerr.New(golemerr.SchemaConstruction, "RegisterUnion: case %s does not implement TaggedUnionCase", c)
		}
		tag := caseTag(c)
		if seen[tag] {
			return golemerr.New(golemerr.SchemaConstruction, "RegisterUnion: duplicate tag %q among cases of %s", tag, iface)
		}
		seen[tag] = true
	}
	m.unions[iface] = cases
	return nil
}

// IsOptionPointer reports whether v's type is a pointer to a non-primitive
// type, the implicit-optional-field shape the mapper assigns
// option(T, question-mark). Primitive pointers are rejected earlier, at
// mapping time, so this only needs to check the kind.
func IsOptionPointer(v reflect.Value) bool { return v.Kind() == reflect.Pointer }

// IsUnion reports whether v's type is a [Union][T]. If so it returns the
// Val field and the Present flag.
func IsUnion(v reflect.Value) (val reflect.Value, present bool, ok bool) {
	t := v.Type()
	if !reflect.PointerTo(t).Implements(unionOptionalMarkerType) && !t.Implements(unionOptionalMarkerType) {
		return reflect.Value{}, false, false
	}
	return v.FieldByName("Val"), v.FieldByName("Present").Bool(), true
}

// IsResult reports whether v's type is a [Result][OK, Err]. If so it returns
// accessors for the ok/err payload and the isErr discriminant, read via its
// exported methods.
func IsResult(v reflect.Value) (okVal, errVal reflect.Value, isErr bool, ok bool) {
	t := v.Type()
	if !t.Implements(resultMarkerType) && !reflect.PointerTo(t).Implements(resultMarkerType) {
		return reflect.Value{}, reflect.Value{}, false, false
	}
	isErr = v.MethodByName("IsErr").Call(nil)[0].Bool()
	okVal = v.MethodByName("OKValue").Call(nil)[0]
	errVal = v.MethodByName("ErrValue").Call(nil)[0]
	return okVal, errVal, isErr, true
}

func caseTag(c reflect.Type) string {
	return reflect.New(c).Elem().Interface().(TaggedUnionCase).UnionTag()
}

// UnionCases returns the case types registered for iface via RegisterUnion,
// in registration order.
func (m *Mapper) UnionCases(iface reflect.Type) ([]reflect.Type, bool) {
	cases, ok := m.unions[iface]
	return cases, ok
}

// CaseByTag returns the case type registered for iface whose tag literal is
// tag, used by the deserializer to reconstruct a tagged-union value from its
// wire tag.
func (m *Mapper) CaseByTag(iface reflect.Type, tag string) (reflect.Type, bool) {
	for _, c := range m.unions[iface] {
		if caseTag(c) == tag {
			return c, true
		}
	}
	return nil, false
}

// CaseTagAndPayload returns a registered union case's tag literal and the
// reflect.Type of its "Val" field, or a nil payload type if the case carries
// no payload.
func (m *Mapper) CaseTagAndPayload(c reflect.Type) (tag string, payload reflect.Type) {
	tag = caseTag(c)
	for i := 0; i < c.NumField(); i++ {
		if f := c.Field(i); f.Name == "Val" {
			return tag, f.Type
		}
	}
	return tag, nil
}

// boxedRejects names Go types that stand in for the spec's boxed-primitive
// wrapper types (String, Number, Boolean, BigInt, Symbol, Date, RegExp):
// stdlib wrapper structs whose use in place of a plain primitive is a schema
// construction mistake, each with a hint naming the primitive alternative.
var boxedRejects = map[reflect.Type]string{
	reflect.TypeOf(time.Time{}):     "use a string (RFC3339) field instead of time.Time",
	reflect.TypeOf(big.Int{}):       "use an int64/uint64 or string field instead of big.Int",
	reflect.TypeOf(big.Float{}):     "use a float64 field instead of big.Float",
	reflect.TypeOf(regexp.Regexp{}): "use a string field instead of regexp.Regexp",
}

// Map converts t into an AnalysedType under scope, or a *golemerr.Error of
// kind SchemaConstruction describing why t cannot be represented.
func (m *Mapper) Map(t reflect.Type, scope Scope) (wit.AnalysedType, error) {
	analysed, err := m.mapCore(t, scope)
	if err != nil {
		return nil, err
	}
	if scope.Optional {
		if o, ok := analysed.(wit.OptionType); ok && o.Form == wit.OptionQuestionMark {
			return analysed, nil
		}
		return wit.OptionType{Inner: analysed, Form: wit.OptionQuestionMark}, nil
	}
	return analysed, nil
}

func (m *Mapper) mapCore(t reflect.Type, scope Scope) (wit.AnalysedType, error) {
	if boxed, ok := boxedRejects[t]; ok {
		return nil, golemerr.New(golemerr.SchemaConstruction, "%s: boxed type %s is not supported: %s", scope.context(), t, boxed)
	}

	switch t.Kind() {
	case reflect.Bool:
		return wit.BoolType{}, nil
	case reflect.Int8:
		return wit.S8Type{}, nil
	case reflect.Int16:
		return wit.S16Type{}, nil
	case reflect.Int32:
		return wit.S32Type{}, nil
	case reflect.Int, reflect.Int64:
		return wit.S64Type{}, nil
	case reflect.Uint8:
		return wit.U8Type{}, nil
	case reflect.Uint16:
		return wit.U16Type{}, nil
	case reflect.Uint32:
		return wit.U32Type{}, nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return wit.U64Type{}, nil
	case reflect.Float32:
		return wit.F32Type{}, nil
	case reflect.Float64:
		return wit.F64Type{}, nil
	case reflect.String:
		return wit.StringType{}, nil

	case reflect.Pointer:
		elem := t.Elem()
		if isPrimitiveKind(elem.Kind()) {
			return nil, golemerr.New(golemerr.SchemaConstruction,
				"%s: boxed pointer-to-primitive %s is not supported: use %s directly, or an explicit option field", scope.context(), t, elem)
		}
		inner, err := m.mapCore(elem, scope)
		if err != nil {
			return nil, err
		}
		if o, ok := inner.(wit.OptionType); ok {
			return o, nil
		}
		return wit.OptionType{Inner: inner, Form: wit.OptionQuestionMark}, nil

	case reflect.Slice, reflect.Array:
		return m.mapList(t, scope)

	case reflect.Map:
		keyType, err := m.mapCore(t.Key(), scope)
		if err != nil {
			return nil, err
		}
		valType, err := m.mapCore(t.Elem(), scope)
		if err != nil {
			return nil, err
		}
		return wit.ListType{
			Inner:   wit.TupleType{Items: []wit.AnalysedType{keyType, valType}},
			MapType: &wit.MapShape{KeyType: keyType, ValueType: valType},
		}, nil

	case reflect.Interface:
		if cases, ok := m.unions[t]; ok {
			return m.mapTaggedUnion(cases, scope)
		}
		return nil, golemerr.New(golemerr.SchemaConstruction,
			"%s: interface type %s has no registered union cases (call Mapper.RegisterUnion)", scope.context(), t)

	case reflect.Struct:
		return m.mapStruct(t, scope)

	default:
		return nil, golemerr.New(golemerr.SchemaConstruction, "%s: unsupported kind %s for type %s", scope.context(), t.Kind(), t)
	}
}

func isPrimitiveKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (m *Mapper) mapList(t reflect.Type, scope Scope) (wit.AnalysedType, error) {
	elem := t.Elem()
	if tr, ok := typedArrayKind(elem); ok {
		inner, err := m.mapCore(elem, scope)
		if err != nil {
			return nil, err
		}
		return wit.ListType{Inner: inner, TypedArray: tr}, nil
	}
	inner, err := m.mapCore(elem, scope)
	if err != nil {
		return nil, err
	}
	return wit.ListType{Inner: inner}, nil
}

func (m *Mapper) mapTaggedUnion(cases []reflect.Type, scope Scope) (wit.AnalysedType, error) {
	variantCases := make([]wit.VariantCase, 0, len(cases))
	taggedTypes := make([]wit.TaggedTypeInfo, 0, len(cases))
	for _, c := range cases {
		tag := caseTag(c)
		payload, err := m.payloadOfCase(c, scope)
		if err != nil {
			return nil, err
		}
		variantCases = append(variantCases, wit.VariantCase{Name: tag, Type: payload})
		taggedTypes = append(taggedTypes, wit.TaggedTypeInfo{CaseName: tag, TagField: "tag", ValField: "val"})
	}
	return wit.VariantType{Cases: variantCases, TaggedTypes: taggedTypes}, nil
}

// payloadOfCase maps a tagged-union case struct's "Val" field, if any, to an
// AnalysedType. A case with no such field carries no payload.
func (m *Mapper) payloadOfCase(c reflect.Type, scope Scope) (wit.AnalysedType, error) {
	for i := 0; i < c.NumField(); i++ {
		f := c.Field(i)
		if f.Name == "Val" {
			return m.mapCore(f.Type, scope)
		}
	}
	return nil, nil
}

func (m *Mapper) mapStruct(t reflect.Type, scope Scope) (wit.AnalysedType, error) {
	// Result[OK, Err]
	if t.Implements(resultMarkerType) || reflect.PointerTo(t).Implements(resultMarkerType) {
		return m.mapResult(t, scope)
	}
	// Union[T] (explicit T | undefined union)
	if reflect.PointerTo(t).Implements(unionOptionalMarkerType) || t.Implements(unionOptionalMarkerType) {
		valField, ok := t.FieldByName("Val")
		if !ok {
			return nil, golemerr.New(golemerr.SchemaConstruction, "%s: malformed Union type %s: missing Val field", scope.context(), t)
		}
		inner, err := m.mapCore(valField.Type, scope)
		if err != nil {
			return nil, err
		}
		return wit.OptionType{Inner: inner, Form: wit.OptionUnion}, nil
	}
	// TupleN: fields F0, F1, ... with no gaps, no other fields.
	if isTupleShape(t) {
		items := make([]wit.AnalysedType, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			it, err := m.mapCore(t.Field(i).Type, scope)
			if err != nil {
				return nil, err
			}
			items[i] = it
		}
		return wit.TupleType{Items: items}, nil
	}
	return m.mapRecord(t, scope)
}

func isTupleShape(t reflect.Type) bool {
	if t.NumField() == 0 {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		want := "F" + itoa(i)
		if t.Field(i).Name != want {
			return false
		}
	}
	return true
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := [20]byte{}
	n := len(digits)
	for i > 0 {
		n--
		digits[n] = byte('0' + i%10)
		i /= 10
	}
	return string(digits[n:])
}

var voidLikeType = reflect.TypeOf((*IsVoidLike)(nil)).Elem()

// emptyKindOf reports the [wit.EmptyKind] a Result arm type should preserve:
// a plain struct{} defaults to EmptyVoid; a type implementing [IsVoidLike]
// reports its own flavor (void/null/undefined), so a round trip through the
// wire can reconstruct exactly which "nothing" the host type named.
func emptyKindOf(t reflect.Type) (wit.EmptyKind, bool) {
	if t.Implements(voidLikeType) {
		return reflect.New(t).Elem().Interface().(IsVoidLike).EmptyKind(), true
	}
	if t.Kind() == reflect.Struct && t.NumField() == 0 {
		return wit.EmptyVoid, true
	}
	return "", false
}

func (m *Mapper) mapResult(t reflect.Type, scope Scope) (wit.AnalysedType, error) {
	v := reflect.New(t).Elem().Interface().(resultMarker)
	okType, errType := v.isGolemResult()

	result := wit.ResultType{Kind: wit.ResultInbuilt}

	if kind, ok := emptyKindOf(okType); ok {
		result.OKEmptyKind = kind
	} else {
		ok, err := m.mapCore(okType, scope)
		if err != nil {
			return nil, err
		}
		result.OK = ok
	}
	if kind, ok := emptyKindOf(errType); ok {
		result.ErrEmptyKind = kind
	} else {
		errT, err := m.mapCore(errType, scope)
		if err != nil {
			return nil, err
		}
		result.Err = errT
	}
	if result.OK != nil && result.Err != nil {
		result.Kind = wit.ResultCustom
	}
	return result, nil
}

// FieldTag is the struct-tag key the mapper and serializer read for field
// name overrides and optional marking: `golem:"name,optional"`.
const FieldTag = "golem"

func (m *Mapper) mapRecord(t reflect.Type, scope Scope) (wit.AnalysedType, error) {
	fields := make([]wit.Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, optional := parseFieldTag(sf)
		fScope := Scope{Kind: ScopeRecordField, ClassName: scope.ClassName, MemberName: t.Name(), ParamName: name, Optional: optional}
		ft, err := m.Map(sf.Type, fScope)
		if err != nil {
			return nil, err
		}
		fields = append(fields, wit.Field{Name: name, Type: ft})
	}
	return wit.RecordType{Fields: fields}, nil
}

func parseFieldTag(sf reflect.StructField) (name string, optional bool) {
	name = lowerFirst(sf.Name)
	tag, ok := sf.Tag.Lookup(FieldTag)
	if !ok {
		return name, sf.Type.Kind() == reflect.Pointer
	}
	parts := splitComma(tag)
	if len(parts) > 0 && parts[0] != "" && parts[0] != "-" {
		name = parts[0]
	}
	for _, p := range parts[1:] {
		if p == "optional" {
			optional = true
		}
	}
	if sf.Type.Kind() == reflect.Pointer {
		optional = true
	}
	return name, optional
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
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
