package marshal

import (
	"reflect"

	"github.com/golemcloud/golem-agent-sdk/cm"
	"github.com/golemcloud/golem-agent-sdk/golemerr"
	"github.com/golemcloud/golem-agent-sdk/reflectx"
	"github.com/golemcloud/golem-agent-sdk/schemabuild"
	"github.com/golemcloud/golem-agent-sdk/typeinfo"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

// PrincipalProvider supplies the caller identity injected into a
// Principal-typed parameter, without consuming a wire element.
type PrincipalProvider func() (reflect.Value, error)

// ConfigProvider supplies the configuration tree injected into a
// Config-typed parameter, without consuming a wire element.
type ConfigProvider func() (reflect.Value, error)

// Injectors bundles the two auto-injection hooks DeserializeArgs consults.
// Either field may be nil if the call site never registers a Principal- or
// Config-typed parameter.
type Injectors struct {
	Principal PrincipalProvider
	Config    ConfigProvider
}

// DeserializeArgs walks params (and the Mapper used to build their schema) in
// lockstep with dv's wire elements to produce one reflect.Value per entry in
// params/targets, ready to pass as a method call's arguments. Principal and
// Config slots are filled from inj without advancing the wire cursor (spec
// §4.6's dual-cursor rule); a lone multimodal parameter consumes dv's named
// elements instead of its positional ones.
func DeserializeArgs(mapper *reflectx.Mapper, dv cm.DataValue, params []typeinfo.TypeInfo, targets []reflect.Type, inj Injectors) ([]reflect.Value, error) {
	if len(params) != len(targets) {
		return nil, golemerr.New(golemerr.SchemaConstruction, "deserialize: %d params but %d target types", len(params), len(targets))
	}

	out := make([]reflect.Value, len(params))

	for i, info := range params {
		switch info.Kind {
		case typeinfo.KindPrincipal:
			if inj.Principal == nil {
				return nil, golemerr.New(golemerr.UnresolvedParameter, "parameter %d: no principal available for injection", i)
			}
			v, err := inj.Principal()
			if err != nil {
				return nil, err
			}
			out[i] = v
		case typeinfo.KindConfig:
			if inj.Config == nil {
				return nil, golemerr.New(golemerr.UnresolvedParameter, "parameter %d: no config available for injection", i)
			}
			v, err := inj.Config()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
	}

	if len(params) == 1 && params[0].Kind == typeinfo.KindMultimodal {
		md, ok := dv.(cm.MultimodalDataValue)
		if !ok {
			return nil, golemerr.New(golemerr.MultimodalShape, "expected a multimodal data value, got %T", dv)
		}
		v, err := deserializeMultimodal(mapper, md.Elements, params[0], targets[0])
		if err != nil {
			return nil, err
		}
		out[0] = v
		return out, nil
	}

	td, ok := dv.(cm.TupleDataValue)
	if !ok {
		return nil, golemerr.New(golemerr.SchemaConstruction, "expected a tuple data value, got %T", dv)
	}

	wireIdx := 0
	for i, info := range params {
		if !info.ConsumesWireSlot() {
			continue
		}
		if wireIdx >= len(td.Elements) {
			return nil, golemerr.New(golemerr.UnresolvedParameter, "parameter %d: missing wire element (have %d)", i, len(td.Elements))
		}
		v, err := deserializeElement(mapper, td.Elements[wireIdx], info, targets[i])
		wireIdx++
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func deserializeElement(mapper *reflectx.Mapper, ev cm.ElementValue, info typeinfo.TypeInfo, target reflect.Type) (reflect.Value, error) {
	switch e := ev.(type) {
	case cm.ComponentModelElementValue:
		if info.Kind != typeinfo.KindAnalysed {
			return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "expected a %s element, got a component-model value", info.Kind)
		}
		value, err := cm.FromWitValue(e.Value)
		if err != nil {
			return reflect.Value{}, golemerr.Wrap(golemerr.TypeMismatch, err, "decoding wire value")
		}
		return Deserialize(mapper, value, info.Analysed, target)

	case cm.UnstructuredTextElementValue:
		if info.Kind != typeinfo.KindUnstructuredText {
			return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "expected a %s element, got unstructured text", info.Kind)
		}
		return wrapUnstructuredText(e.Reference, target)

	case cm.UnstructuredBinaryElementValue:
		if info.Kind != typeinfo.KindUnstructuredBinary {
			return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "expected a %s element, got unstructured binary", info.Kind)
		}
		return wrapUnstructuredBinary(e.Reference, target)

	default:
		return reflect.Value{}, golemerr.New(golemerr.SchemaConstruction, "deserialize: unsupported element value %T", ev)
	}
}

func wrapUnstructuredText(ref cm.TextReference, target reflect.Type) (reflect.Value, error) {
	v := reflect.New(target).Elem()
	payload := reflect.ValueOf(schemabuild.UnstructuredText{Reference: ref})
	if !payload.Type().AssignableTo(target) {
		return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "target type %s cannot hold UnstructuredText", target)
	}
	v.Set(payload)
	return v, nil
}

func wrapUnstructuredBinary(ref cm.BinaryReference, target reflect.Type) (reflect.Value, error) {
	v := reflect.New(target).Elem()
	payload := reflect.ValueOf(schemabuild.UnstructuredBinary{Reference: ref})
	if !payload.Type().AssignableTo(target) {
		return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "target type %s cannot hold UnstructuredBinary", target)
	}
	v.Set(payload)
	return v, nil
}

// deserializeMultimodal decodes a multimodal data value's named elements into
// target, a slice of the registered union interface. Each named element's
// Name selects the case by wire tag via mapper.CaseByTag.
func deserializeMultimodal(mapper *reflectx.Mapper, elems []cm.NamedElementValue, info typeinfo.TypeInfo, target reflect.Type) (reflect.Value, error) {
	if target.Kind() != reflect.Slice || target.Elem().Kind() != reflect.Interface {
		return reflect.Value{}, golemerr.New(golemerr.MultimodalShape, "multimodal target must be a slice of interface, got %s", target)
	}
	iface := target.Elem()
	out := reflect.MakeSlice(target, 0, len(elems))
	for _, ne := range elems {
		var wantInfo typeinfo.TypeInfo
		found := false
		for _, c := range info.MultimodalCases {
			if c.Name == ne.Name {
				wantInfo = c.Info
				found = true
				break
			}
		}
		if !found {
			return reflect.Value{}, golemerr.New(golemerr.MultimodalShape, "multimodal element tag %q is not a declared case", ne.Name)
		}
		caseType, ok := mapper.CaseByTag(iface, ne.Name)
		if !ok {
			return reflect.Value{}, golemerr.New(golemerr.UnionAmbiguityOrMiss, "multimodal element tag %q has no registered case type", ne.Name)
		}
		caseVal := reflect.New(caseType).Elem()
		if _, payload := mapper.CaseTagAndPayload(caseType); payload != nil {
			inner, err := deserializeElement(mapper, ne.Value, wantInfo, payload)
			if err != nil {
				return reflect.Value{}, err
			}
			caseVal.FieldByName("Val").Set(inner)
		}
		out = reflect.Append(out, caseVal)
	}
	return out, nil
}

// Deserialize converts a cm.Value tree into a reflect.Value of Go type
// target, the shape t describes, the reverse of Serialize.
func Deserialize(mapper *reflectx.Mapper, v cm.Value, t wit.AnalysedType, target reflect.Type) (reflect.Value, error) {
	switch tt := t.(type) {
	case wit.BoolType:
		b, ok := cm.As[cm.BoolValue](v)
		if !ok {
			return reflect.Value{}, decodeMismatch(t, v)
		}
		return reflect.ValueOf(b.V).Convert(target), nil

	case wit.U8Type:
		return decodeUint[cm.U8Value](v, t, target, func(x cm.U8Value) uint64 { return uint64(x.V) })
	case wit.U16Type:
		return decodeUint[cm.U16Value](v, t, target, func(x cm.U16Value) uint64 { return uint64(x.V) })
	case wit.U32Type:
		return decodeUint[cm.U32Value](v, t, target, func(x cm.U32Value) uint64 { return uint64(x.V) })
	case wit.U64Type:
		return decodeUint[cm.U64Value](v, t, target, func(x cm.U64Value) uint64 { return x.V })

	case wit.S8Type:
		return decodeInt[cm.S8Value](v, t, target, func(x cm.S8Value) int64 { return int64(x.V) })
	case wit.S16Type:
		return decodeInt[cm.S16Value](v, t, target, func(x cm.S16Value) int64 { return int64(x.V) })
	case wit.S32Type:
		return decodeInt[cm.S32Value](v, t, target, func(x cm.S32Value) int64 { return int64(x.V) })
	case wit.S64Type:
		return decodeInt[cm.S64Value](v, t, target, func(x cm.S64Value) int64 { return x.V })

	case wit.F32Type:
		f, ok := cm.As[cm.F32Value](v)
		if !ok {
			return reflect.Value{}, decodeMismatch(t, v)
		}
		return reflect.ValueOf(float64(f.V)).Convert(target), nil
	case wit.F64Type:
		f, ok := cm.As[cm.F64Value](v)
		if !ok {
			return reflect.Value{}, decodeMismatch(t, v)
		}
		return reflect.ValueOf(f.V).Convert(target), nil

	case wit.StringType:
		s, ok := cm.As[cm.StringValue](v)
		if !ok {
			return reflect.Value{}, decodeMismatch(t, v)
		}
		return reflect.ValueOf(s.V).Convert(target), nil

	case wit.HandleType:
		h, ok := cm.As[cm.HandleValue](v)
		if !ok {
			return reflect.Value{}, decodeMismatch(t, v)
		}
		return reflect.ValueOf(h.V).Convert(target), nil

	case wit.OptionType:
		return deserializeOption(mapper, v, tt, target)
	case wit.ListType:
		return deserializeList(mapper, v, tt, target)
	case wit.TupleType:
		return deserializeTuple(mapper, v, tt, target)
	case wit.RecordType:
		return deserializeRecord(mapper, v, tt, target)
	case wit.VariantType:
		return deserializeVariant(mapper, v, tt, target)
	case wit.EnumType:
		return deserializeEnum(v, tt, target)
	case wit.ResultType:
		return deserializeResult(mapper, v, tt, target)

	default:
		return reflect.Value{}, golemerr.New(golemerr.SchemaConstruction, "deserialize: unsupported AnalysedType %T", t)
	}
}

func decodeMismatch(t wit.AnalysedType, v cm.Value) error {
	return golemerr.New(golemerr.TypeMismatch, "expected wire value matching %T, got %T", t, v)
}

func decodeUint[V cm.Value](v cm.Value, t wit.AnalysedType, target reflect.Type, extract func(V) uint64) (reflect.Value, error) {
	val, ok := cm.As[V](v)
	if !ok {
		return reflect.Value{}, decodeMismatch(t, v)
	}
	switch target.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return reflect.ValueOf(extract(val)).Convert(target), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(int64(extract(val))).Convert(target), nil
	default:
		return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "cannot decode unsigned wire value into Go type %s", target)
	}
}

func decodeInt[V cm.Value](v cm.Value, t wit.AnalysedType, target reflect.Type, extract func(V) int64) (reflect.Value, error) {
	val, ok := cm.As[V](v)
	if !ok {
		return reflect.Value{}, decodeMismatch(t, v)
	}
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(extract(val)).Convert(target), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return reflect.ValueOf(uint64(extract(val))).Convert(target), nil
	default:
		return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "cannot decode signed wire value into Go type %s", target)
	}
}

func deserializeOption(mapper *reflectx.Mapper, v cm.Value, t wit.OptionType, target reflect.Type) (reflect.Value, error) {
	opt, ok := cm.As[cm.OptionValue](v)
	if !ok {
		return reflect.Value{}, decodeMismatch(t, v)
	}

	if t.Form == wit.OptionUnion {
		unionMake, ok := unionConstructor(target)
		if !ok {
			return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "target type %s is not a reflectx.Union for an explicit option", target)
		}
		if opt.IsNone() {
			return unionMake(reflect.Value{}, false), nil
		}
		inner, err := Deserialize(mapper, opt.Inner, t.Inner, target.Field(0).Type)
		if err != nil {
			return reflect.Value{}, err
		}
		return unionMake(inner, true), nil
	}

	if target.Kind() == reflect.Pointer {
		if opt.IsNone() {
			return reflect.Zero(target), nil
		}
		inner, err := Deserialize(mapper, opt.Inner, t.Inner, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(target.Elem())
		p.Elem().Set(inner)
		return p, nil
	}

	if opt.IsNone() {
		return reflect.Zero(target), nil
	}
	return Deserialize(mapper, opt.Inner, t.Inner, target)
}

// unionConstructor returns a function building a reflectx.Union[T] value of
// target's exact instantiation from a Val/Present pair, found by locating the
// "Val" and "Present" fields reflectively (target's type parameter T is not
// otherwise recoverable from a reflect.Type alone).
func unionConstructor(target reflect.Type) (func(val reflect.Value, present bool) reflect.Value, bool) {
	if target.Kind() != reflect.Struct {
		return nil, false
	}
	valField, ok := target.FieldByName("Val")
	if !ok {
		return nil, false
	}
	if _, ok := target.FieldByName("Present"); !ok {
		return nil, false
	}
	return func(val reflect.Value, present bool) reflect.Value {
		out := reflect.New(target).Elem()
		if present {
			out.FieldByName("Val").Set(val)
		} else {
			out.FieldByName("Val").Set(reflect.Zero(valField.Type))
		}
		out.FieldByName("Present").SetBool(present)
		return out
	}, true
}

func deserializeList(mapper *reflectx.Mapper, v cm.Value, t wit.ListType, target reflect.Type) (reflect.Value, error) {
	if t.MapType != nil {
		return deserializeMap(mapper, v, t, target)
	}
	lv, ok := cm.As[cm.ListValue](v)
	if !ok {
		return reflect.Value{}, decodeMismatch(t, v)
	}
	if target.Kind() != reflect.Slice && target.Kind() != reflect.Array {
		return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "list: target type %s is not a slice/array", target)
	}
	elemType := target.Elem()
	out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, len(lv.Items))
	for _, item := range lv.Items {
		dv, err := Deserialize(mapper, item, t.Inner, elemType)
		if err != nil {
			return reflect.Value{}, err
		}
		out = reflect.Append(out, dv)
	}
	if target.Kind() == reflect.Array {
		arr := reflect.New(target).Elem()
		reflect.Copy(arr, out)
		return arr, nil
	}
	return out, nil
}

func deserializeMap(mapper *reflectx.Mapper, v cm.Value, t wit.ListType, target reflect.Type) (reflect.Value, error) {
	lv, ok := cm.As[cm.ListValue](v)
	if !ok {
		return reflect.Value{}, decodeMismatch(t, v)
	}
	if target.Kind() != reflect.Map {
		return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "map: target type %s is not a map", target)
	}
	out := reflect.MakeMapWithSize(target, len(lv.Items))
	for _, item := range lv.Items {
		tup, ok := cm.As[cm.TupleValue](item)
		if !ok || len(tup.Items) != 2 {
			return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "map: expected a 2-tuple entry, got %T", item)
		}
		k, err := Deserialize(mapper, tup.Items[0], t.MapType.KeyType, target.Key())
		if err != nil {
			return reflect.Value{}, err
		}
		val, err := Deserialize(mapper, tup.Items[1], t.MapType.ValueType, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(k, val)
	}
	return out, nil
}

func deserializeTuple(mapper *reflectx.Mapper, v cm.Value, t wit.TupleType, target reflect.Type) (reflect.Value, error) {
	if len(t.Items) == 0 {
		return reflect.Zero(target), nil
	}
	tv, ok := cm.As[cm.TupleValue](v)
	if !ok || len(tv.Items) != len(t.Items) {
		return reflect.Value{}, decodeMismatch(t, v)
	}
	out := reflect.New(target).Elem()
	for i, it := range t.Items {
		fv, err := Deserialize(mapper, tv.Items[i], it, target.Field(i).Type)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(i).Set(fv)
	}
	return out, nil
}

func deserializeRecord(mapper *reflectx.Mapper, v cm.Value, t wit.RecordType, target reflect.Type) (reflect.Value, error) {
	rv, ok := cm.As[cm.RecordValue](v)
	if !ok {
		return reflect.Value{}, decodeMismatch(t, v)
	}
	out := reflect.New(target).Elem()
	for i := 0; i < target.NumField(); i++ {
		sf := target.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := golemFieldName(sf)
		f, ok := t.FieldByName(name)
		if !ok {
			continue
		}
		fieldVal, present := rv.ByName(name)
		if !present {
			continue
		}
		dv, err := Deserialize(mapper, fieldVal, f.Type, sf.Type)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(i).Set(dv)
	}
	return out, nil
}

func deserializeVariant(mapper *reflectx.Mapper, v cm.Value, t wit.VariantType, target reflect.Type) (reflect.Value, error) {
	vv, ok := cm.As[cm.VariantValue](v)
	if !ok {
		return reflect.Value{}, decodeMismatch(t, v)
	}
	if int(vv.CaseIdx) >= len(t.Cases) {
		return reflect.Value{}, golemerr.New(golemerr.UnionAmbiguityOrMiss, "variant: case index %d out of range", vv.CaseIdx)
	}
	c := t.Cases[vv.CaseIdx]

	if target.Kind() != reflect.Interface {
		return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "variant: target type %s is not an interface", target)
	}
	caseType, ok := mapper.CaseByTag(target, c.Name)
	if !ok {
		return reflect.Value{}, golemerr.New(golemerr.UnionAmbiguityOrMiss, "variant: no registered case for tag %q", c.Name)
	}
	caseVal := reflect.New(caseType).Elem()
	if c.Type != nil {
		if vv.CaseValue == nil {
			return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "variant: case %q declares a payload but wire value carries none", c.Name)
		}
		valField := caseVal.FieldByName("Val")
		if !valField.IsValid() {
			return reflect.Value{}, golemerr.New(golemerr.SchemaConstruction, "variant: case %q has no Val field", c.Name)
		}
		inner, err := Deserialize(mapper, vv.CaseValue, c.Type, valField.Type())
		if err != nil {
			return reflect.Value{}, err
		}
		valField.Set(inner)
	}
	return caseVal, nil
}

func deserializeEnum(v cm.Value, t wit.EnumType, target reflect.Type) (reflect.Value, error) {
	ev, ok := cm.As[cm.EnumValue](v)
	if !ok {
		return reflect.Value{}, decodeMismatch(t, v)
	}
	if int(ev.CaseIdx) >= len(t.Cases) {
		return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "enum: case index %d out of range", ev.CaseIdx)
	}
	if target.Kind() != reflect.String {
		return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "enum: target type %s is not a string", target)
	}
	return reflect.ValueOf(t.Cases[ev.CaseIdx]).Convert(target), nil
}

func deserializeResult(mapper *reflectx.Mapper, v cm.Value, t wit.ResultType, target reflect.Type) (reflect.Value, error) {
	rv, ok := cm.As[cm.ResultValue](v)
	if !ok {
		return reflect.Value{}, decodeMismatch(t, v)
	}
	makeResult, ok := resultConstructor(target)
	if !ok {
		return reflect.Value{}, golemerr.New(golemerr.TypeMismatch, "target type %s is not a reflectx.Result", target)
	}
	if rv.IsErr {
		if t.ErrIsEmpty() {
			return makeResult(reflect.Value{}, reflect.Value{}, true), nil
		}
		errField, _ := target.FieldByName("errVal")
		errVal, err := Deserialize(mapper, rv.Value, t.Err, errField.Type)
		if err != nil {
			return reflect.Value{}, err
		}
		return makeResult(reflect.Value{}, errVal, true), nil
	}
	if t.OKIsEmpty() {
		return makeResult(reflect.Value{}, reflect.Value{}, false), nil
	}
	okField, _ := target.FieldByName("okVal")
	okVal, err := Deserialize(mapper, rv.Value, t.OK, okField.Type)
	if err != nil {
		return reflect.Value{}, err
	}
	return makeResult(okVal, reflect.Value{}, false), nil
}

// resultConstructor returns a function building a reflectx.Result[OK, Err]
// value of target's exact instantiation, locating its unexported okVal/errVal
// fields reflectively since Ok/Failure require statically known type
// parameters this code never has.
func resultConstructor(target reflect.Type) (func(okVal, errVal reflect.Value, isErr bool) reflect.Value, bool) {
	if target.Kind() != reflect.Struct {
		return nil, false
	}
	okField, hasOK := target.FieldByName("okVal")
	errField, hasErr := target.FieldByName("errVal")
	if !hasOK || !hasErr {
		return nil, false
	}
	if _, ok := target.FieldByName("isErr"); !ok {
		return nil, false
	}
	return func(okVal, errVal reflect.Value, isErr bool) reflect.Value {
		out := reflect.New(target).Elem()
		if okVal.IsValid() {
			setUnexportedField(out.FieldByName("okVal"), okVal)
		} else {
			setUnexportedField(out.FieldByName("okVal"), reflect.Zero(okField.Type))
		}
		if errVal.IsValid() {
			setUnexportedField(out.FieldByName("errVal"), errVal)
		} else {
			setUnexportedField(out.FieldByName("errVal"), reflect.Zero(errField.Type))
		}
		setUnexportedField(out.FieldByName("isErr"), reflect.ValueOf(isErr))
		return out
	}, true
}

// setUnexportedField assigns val to an unexported struct field obtained via
// reflect.Value.FieldByName, bypassing the read-only flag reflect normally
// sets on such fields. Safe here because out is always a fresh, unshared
// reflect.New(target).Elem() value this package constructed itself.
func setUnexportedField(field reflect.Value, val reflect.Value) {
	reflect.NewAt(field.Type(), field.Addr().UnsafePointer()).Elem().Set(val)
}
