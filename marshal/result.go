package marshal

import (
	"reflect"

	"github.com/golemcloud/golem-agent-sdk/cm"
	"github.com/golemcloud/golem-agent-sdk/golemerr"
	"github.com/golemcloud/golem-agent-sdk/reflectx"
	"github.com/golemcloud/golem-agent-sdk/typeinfo"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

// SerializeResult packs a method's single return value into the DataValue
// shape schemabuild's output schema builder produces: an empty tuple for a
// void return, a one-element tuple for an ordinary or unstructured return, or
// a multimodal DataValue for a multimodal return. This is the result-side
// counterpart to SerializeArgs.
func SerializeResult(v reflect.Value, info typeinfo.TypeInfo) (cm.DataValue, error) {
	if info.Kind == typeinfo.KindMultimodal {
		elems, err := serializeMultimodalArg(v, info)
		if err != nil {
			return nil, err
		}
		return cm.MultimodalDataValue{Elements: elems}, nil
	}
	if isVoidReturn(info) {
		return cm.TupleDataValue{}, nil
	}
	ev, err := serializeArgElement(v, info)
	if err != nil {
		return nil, err
	}
	return cm.TupleDataValue{Elements: []cm.ElementValue{ev}}, nil
}

// DeserializeResult unpacks a method's return DataValue into target, the
// reverse of SerializeResult.
func DeserializeResult(mapper *reflectx.Mapper, dv cm.DataValue, info typeinfo.TypeInfo, target reflect.Type) (reflect.Value, error) {
	if info.Kind == typeinfo.KindMultimodal {
		md, ok := dv.(cm.MultimodalDataValue)
		if !ok {
			return reflect.Value{}, golemerr.New(golemerr.MultimodalShape, "expected a multimodal result, got %T", dv)
		}
		return deserializeMultimodal(mapper, md.Elements, info, target)
	}
	if isVoidReturn(info) {
		return reflect.Zero(target), nil
	}
	td, ok := dv.(cm.TupleDataValue)
	if !ok || len(td.Elements) != 1 {
		return reflect.Value{}, golemerr.New(golemerr.SchemaConstruction, "expected a single-element tuple result, got %T", dv)
	}
	return deserializeElement(mapper, td.Elements[0], info, target)
}

func isVoidReturn(info typeinfo.TypeInfo) bool {
	if info.Kind != typeinfo.KindAnalysed {
		return false
	}
	t, ok := info.Analysed.(wit.TupleType)
	return ok && len(t.Items) == 0
}
