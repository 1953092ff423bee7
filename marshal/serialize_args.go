package marshal

import (
	"reflect"

	"github.com/golemcloud/golem-agent-sdk/cm"
	"github.com/golemcloud/golem-agent-sdk/golemerr"
	"github.com/golemcloud/golem-agent-sdk/reflectx"
	"github.com/golemcloud/golem-agent-sdk/typeinfo"
)

// SerializeArgs packs a call's host argument values into a cm.DataValue per
// spec §4.7: an ordered cm.TupleDataValue for an ordinary parameter list, or
// a cm.MultimodalDataValue for a lone multimodal parameter. Principal- and
// Config-typed arguments are dropped rather than packed — they are
// auto-injected on the receiving side and never occupy a wire slot (the
// mirror image of DeserializeArgs's injection rule).
func SerializeArgs(args []reflect.Value, params []typeinfo.TypeInfo) (cm.DataValue, error) {
	if len(args) != len(params) {
		return nil, golemerr.New(golemerr.SchemaConstruction, "serialize args: %d arguments but %d declared parameters", len(args), len(params))
	}

	if len(params) == 1 && params[0].Kind == typeinfo.KindMultimodal {
		elems, err := serializeMultimodalArg(args[0], params[0])
		if err != nil {
			return nil, err
		}
		return cm.MultimodalDataValue{Elements: elems}, nil
	}

	elements := make([]cm.ElementValue, 0, len(params))
	for i, info := range params {
		if !info.ConsumesWireSlot() {
			continue
		}
		ev, err := serializeArgElement(args[i], info)
		if err != nil {
			return nil, err
		}
		elements = append(elements, ev)
	}
	return cm.TupleDataValue{Elements: elements}, nil
}

func serializeArgElement(v reflect.Value, info typeinfo.TypeInfo) (cm.ElementValue, error) {
	switch info.Kind {
	case typeinfo.KindAnalysed:
		value, err := Serialize(v, info.Analysed)
		if err != nil {
			return nil, err
		}
		wv, err := cm.ToWitValue(value)
		if err != nil {
			return nil, golemerr.Wrap(golemerr.TypeMismatch, err, "encoding wire value")
		}
		return cm.ComponentModelElementValue{Value: wv}, nil

	case typeinfo.KindUnstructuredText:
		ref, err := unstructuredTextRef(v)
		if err != nil {
			return nil, err
		}
		return cm.UnstructuredTextElementValue{Reference: ref}, nil

	case typeinfo.KindUnstructuredBinary:
		ref, err := unstructuredBinaryRef(v)
		if err != nil {
			return nil, err
		}
		return cm.UnstructuredBinaryElementValue{Reference: ref}, nil

	default:
		return nil, golemerr.New(golemerr.SchemaConstruction, "serialize args: unsupported TypeInfo kind %s for a wire slot", info.Kind)
	}
}

func unstructuredTextRef(v reflect.Value) (cm.TextReference, error) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, golemerr.New(golemerr.TypeMismatch, "unstructured text: nil value")
		}
		v = v.Elem()
	}
	f := v.FieldByName("Reference")
	if !f.IsValid() {
		return nil, golemerr.New(golemerr.TypeMismatch, "unstructured text: value of type %s has no Reference field", v.Type())
	}
	ref, ok := f.Interface().(cm.TextReference)
	if !ok {
		return nil, golemerr.New(golemerr.TypeMismatch, "unstructured text: Reference field is not a cm.TextReference")
	}
	return ref, nil
}

func unstructuredBinaryRef(v reflect.Value) (cm.BinaryReference, error) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, golemerr.New(golemerr.TypeMismatch, "unstructured binary: nil value")
		}
		v = v.Elem()
	}
	f := v.FieldByName("Reference")
	if !f.IsValid() {
		return nil, golemerr.New(golemerr.TypeMismatch, "unstructured binary: value of type %s has no Reference field", v.Type())
	}
	ref, ok := f.Interface().(cm.BinaryReference)
	if !ok {
		return nil, golemerr.New(golemerr.TypeMismatch, "unstructured binary: Reference field is not a cm.BinaryReference")
	}
	return ref, nil
}

// serializeMultimodalArg packs a []SomeInterface host value (v is the
// reflect.Value of that slice) into the named elements of a
// cm.MultimodalDataValue, one per registered tagged-union case in v.
func serializeMultimodalArg(v reflect.Value, info typeinfo.TypeInfo) ([]cm.NamedElementValue, error) {
	for v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return nil, golemerr.New(golemerr.MultimodalShape, "multimodal argument must be a slice, got %s", v.Type())
	}
	out := make([]cm.NamedElementValue, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		for item.Kind() == reflect.Interface {
			item = item.Elem()
		}
		tagger, ok := item.Interface().(reflectx.TaggedUnionCase)
		if !ok {
			return nil, golemerr.New(golemerr.MultimodalShape, "multimodal element %d: value of type %s is not a registered union case", i, item.Type())
		}
		tag := tagger.UnionTag()
		var caseInfo typeinfo.TypeInfo
		found := false
		for _, c := range info.MultimodalCases {
			if c.Name == tag {
				caseInfo = c.Info
				found = true
				break
			}
		}
		if !found {
			return nil, golemerr.New(golemerr.MultimodalShape, "multimodal element %d: unknown case tag %q", i, tag)
		}
		var ev cm.ElementValue
		var err error
		if valField := item.FieldByName("Val"); valField.IsValid() {
			ev, err = serializeArgElement(valField, caseInfo)
		} else {
			wv, wErr := cm.ToWitValue(cm.TupleValue{})
			if wErr != nil {
				return nil, golemerr.Wrap(golemerr.TypeMismatch, wErr, "encoding empty multimodal case payload")
			}
			ev = cm.ComponentModelElementValue{Value: wv}
		}
		if err != nil {
			return nil, err
		}
		out = append(out, cm.NamedElementValue{Name: tag, Value: ev})
	}
	return out, nil
}
