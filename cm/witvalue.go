package cm

import (
	"fmt"

	"github.com/golemcloud/golem-agent-sdk/wit"
)

// WitNodeTag discriminates the shape of a [WitNode].
type WitNodeTag string

const (
	TagPrimBool   WitNodeTag = "prim-bool"
	TagPrimU8     WitNodeTag = "prim-u8"
	TagPrimU16    WitNodeTag = "prim-u16"
	TagPrimU32    WitNodeTag = "prim-u32"
	TagPrimU64    WitNodeTag = "prim-u64"
	TagPrimS8     WitNodeTag = "prim-s8"
	TagPrimS16    WitNodeTag = "prim-s16"
	TagPrimS32    WitNodeTag = "prim-s32"
	TagPrimS64    WitNodeTag = "prim-s64"
	TagPrimF32    WitNodeTag = "prim-f32"
	TagPrimF64    WitNodeTag = "prim-f64"
	TagPrimChar   WitNodeTag = "prim-char"
	TagPrimString WitNodeTag = "prim-string"
	TagHandle     WitNodeTag = "handle"
	TagOption     WitNodeTag = "option-value"
	TagList       WitNodeTag = "list-value"
	TagTuple      WitNodeTag = "tuple-value"
	TagRecord     WitNodeTag = "record-value"
	TagVariant    WitNodeTag = "variant-value"
	TagEnum       WitNodeTag = "enum-value"
	TagFlags      WitNodeTag = "flags-value"
	TagResult     WitNodeTag = "result-value"
)

// WitNode is one entry in a [WitValue]'s flattened node array. Prim carries
// the scalar payload for primitive leaves. Children holds child node indices,
// whose meaning is positional and tag-dependent (record field order, tuple
// item order, list item order, or a single-element payload slot for
// option/variant/result). CaseIdx is the selected case for variant/enum
// nodes, and IsErr distinguishes the ok/err arm of a result node. FieldNames
// preserves record field names and HasPayload records whether an
// option/result node's sole child is present (as opposed to the node having
// zero children because the case itself carries no payload).
type WitNode struct {
	Tag        WitNodeTag
	Prim       any
	Children   []int
	CaseIdx    uint32
	IsErr      bool
	HasPayload bool
	FieldNames []string
}

// WitValue is the flattened, node-indexed wire form of a [Value] tree: an
// ordered node array referencing children by index, with the root always at
// index 0. It is the DAG shape described in spec §3/§4.2.
type WitValue struct {
	Nodes []WitNode
}

// ToWitValue converts a Value tree into its flattened WitValue wire form by a
// depth-first traversal: a placeholder is appended for the current node,
// children are recursed first, and the placeholder is then overwritten with
// its final tag and child-index vector. This produces a topologically
// ordered array with the root at index 0.
func ToWitValue(v Value) (WitValue, error) {
	var wv WitValue
	_, err := appendNode(&wv, v)
	if err != nil {
		return WitValue{}, err
	}
	return wv, nil
}

func appendNode(wv *WitValue, v Value) (int, error) {
	idx := len(wv.Nodes)
	wv.Nodes = append(wv.Nodes, WitNode{}) // placeholder

	node, err := buildNode(wv, v)
	if err != nil {
		return 0, err
	}
	wv.Nodes[idx] = node
	return idx, nil
}

func buildNode(wv *WitValue, v Value) (WitNode, error) {
	switch val := v.(type) {
	case BoolValue:
		return WitNode{Tag: TagPrimBool, Prim: val.V}, nil
	case U8Value:
		return WitNode{Tag: TagPrimU8, Prim: val.V}, nil
	case U16Value:
		return WitNode{Tag: TagPrimU16, Prim: val.V}, nil
	case U32Value:
		return WitNode{Tag: TagPrimU32, Prim: val.V}, nil
	case U64Value:
		return WitNode{Tag: TagPrimU64, Prim: val.V}, nil
	case S8Value:
		return WitNode{Tag: TagPrimS8, Prim: val.V}, nil
	case S16Value:
		return WitNode{Tag: TagPrimS16, Prim: val.V}, nil
	case S32Value:
		return WitNode{Tag: TagPrimS32, Prim: val.V}, nil
	case S64Value:
		return WitNode{Tag: TagPrimS64, Prim: val.V}, nil
	case F32Value:
		return WitNode{Tag: TagPrimF32, Prim: val.V}, nil
	case F64Value:
		return WitNode{Tag: TagPrimF64, Prim: val.V}, nil
	case CharValue:
		return WitNode{Tag: TagPrimChar, Prim: val.V}, nil
	case StringValue:
		return WitNode{Tag: TagPrimString, Prim: val.V}, nil
	case HandleValue:
		return WitNode{Tag: TagHandle, Prim: val.V}, nil
	case OptionValue:
		if val.Inner == nil {
			return WitNode{Tag: TagOption, HasPayload: false}, nil
		}
		ci, err := appendNode(wv, val.Inner)
		if err != nil {
			return WitNode{}, err
		}
		return WitNode{Tag: TagOption, Children: []int{ci}, HasPayload: true}, nil
	case ListValue:
		children := make([]int, 0, len(val.Items))
		for _, item := range val.Items {
			ci, err := appendNode(wv, item)
			if err != nil {
				return WitNode{}, err
			}
			children = append(children, ci)
		}
		return WitNode{Tag: TagList, Children: children}, nil
	case TupleValue:
		children := make([]int, 0, len(val.Items))
		for _, item := range val.Items {
			ci, err := appendNode(wv, item)
			if err != nil {
				return WitNode{}, err
			}
			children = append(children, ci)
		}
		return WitNode{Tag: TagTuple, Children: children}, nil
	case RecordValue:
		children := make([]int, 0, len(val.Fields))
		names := make([]string, 0, len(val.Fields))
		for _, f := range val.Fields {
			ci, err := appendNode(wv, f.Value)
			if err != nil {
				return WitNode{}, err
			}
			children = append(children, ci)
			names = append(names, f.Name)
		}
		return WitNode{Tag: TagRecord, Children: children, FieldNames: names}, nil
	case VariantValue:
		if val.CaseValue == nil {
			return WitNode{Tag: TagVariant, CaseIdx: val.CaseIdx}, nil
		}
		ci, err := appendNode(wv, val.CaseValue)
		if err != nil {
			return WitNode{}, err
		}
		return WitNode{Tag: TagVariant, CaseIdx: val.CaseIdx, Children: []int{ci}, HasPayload: true}, nil
	case EnumValue:
		return WitNode{Tag: TagEnum, CaseIdx: val.CaseIdx}, nil
	case FlagsValue:
		return WitNode{Tag: TagFlags, Prim: val.Bits}, nil
	case ResultValue:
		if val.Value == nil {
			return WitNode{Tag: TagResult, IsErr: val.IsErr}, nil
		}
		ci, err := appendNode(wv, val.Value)
		if err != nil {
			return WitNode{}, err
		}
		return WitNode{Tag: TagResult, IsErr: val.IsErr, Children: []int{ci}, HasPayload: true}, nil
	default:
		return WitNode{}, fmt.Errorf("cm: ToWitValue: unsupported value type %T", v)
	}
}

// FromWitValue decodes wv back into a Value tree by interpreting node 0 and
// following child indices recursively. A malformed node array, an empty node
// array, or a dangling index is a fatal decode error.
func FromWitValue(wv WitValue) (Value, error) {
	if len(wv.Nodes) == 0 {
		return nil, fmt.Errorf("cm: FromWitValue: empty node array")
	}
	return decodeNode(wv, 0)
}

func decodeNode(wv WitValue, idx int) (Value, error) {
	if idx < 0 || idx >= len(wv.Nodes) {
		return nil, fmt.Errorf("cm: FromWitValue: dangling node index %d (have %d nodes)", idx, len(wv.Nodes))
	}
	n := wv.Nodes[idx]
	switch n.Tag {
	case TagPrimBool:
		b, ok := n.Prim.(bool)
		if !ok {
			return nil, fmt.Errorf("cm: FromWitValue: node %d: prim-bool has non-bool payload", idx)
		}
		return BoolValue{V: b}, nil
	case TagPrimU8:
		return decodePrim[uint8](n, idx, func(v uint8) Value { return U8Value{V: v} })
	case TagPrimU16:
		return decodePrim[uint16](n, idx, func(v uint16) Value { return U16Value{V: v} })
	case TagPrimU32:
		return decodePrim[uint32](n, idx, func(v uint32) Value { return U32Value{V: v} })
	case TagPrimU64:
		return decodePrim[uint64](n, idx, func(v uint64) Value { return U64Value{V: v} })
	case TagPrimS8:
		return decodePrim[int8](n, idx, func(v int8) Value { return S8Value{V: v} })
	case TagPrimS16:
		return decodePrim[int16](n, idx, func(v int16) Value { return S16Value{V: v} })
	case TagPrimS32:
		return decodePrim[int32](n, idx, func(v int32) Value { return S32Value{V: v} })
	case TagPrimS64:
		return decodePrim[int64](n, idx, func(v int64) Value { return S64Value{V: v} })
	case TagPrimF32:
		return decodePrim[float32](n, idx, func(v float32) Value { return F32Value{V: v} })
	case TagPrimF64:
		return decodePrim[float64](n, idx, func(v float64) Value { return F64Value{V: v} })
	case TagPrimChar:
		return decodePrim[rune](n, idx, func(v rune) Value { return CharValue{V: v} })
	case TagPrimString:
		return decodePrim[string](n, idx, func(v string) Value { return StringValue{V: v} })
	case TagHandle:
		return decodePrim[uint32](n, idx, func(v uint32) Value { return HandleValue{V: v} })
	case TagOption:
		if !n.HasPayload {
			return OptionValue{}, nil
		}
		if len(n.Children) != 1 {
			return nil, fmt.Errorf("cm: FromWitValue: node %d: option-value with payload must have exactly one child", idx)
		}
		inner, err := decodeNode(wv, n.Children[0])
		if err != nil {
			return nil, err
		}
		return OptionValue{Inner: inner}, nil
	case TagList:
		items := make([]Value, 0, len(n.Children))
		for _, ci := range n.Children {
			item, err := decodeNode(wv, ci)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return ListValue{Items: items}, nil
	case TagTuple:
		items := make([]Value, 0, len(n.Children))
		for _, ci := range n.Children {
			item, err := decodeNode(wv, ci)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return TupleValue{Items: items}, nil
	case TagRecord:
		if len(n.FieldNames) != len(n.Children) {
			return nil, fmt.Errorf("cm: FromWitValue: node %d: record-value field/child count mismatch", idx)
		}
		fields := make([]FieldValue, 0, len(n.Children))
		for i, ci := range n.Children {
			fv, err := decodeNode(wv, ci)
			if err != nil {
				return nil, err
			}
			fields = append(fields, FieldValue{Name: n.FieldNames[i], Value: fv})
		}
		return RecordValue{Fields: fields}, nil
	case TagVariant:
		if !n.HasPayload {
			return VariantValue{CaseIdx: n.CaseIdx}, nil
		}
		if len(n.Children) != 1 {
			return nil, fmt.Errorf("cm: FromWitValue: node %d: variant-value with payload must have exactly one child", idx)
		}
		cv, err := decodeNode(wv, n.Children[0])
		if err != nil {
			return nil, err
		}
		return VariantValue{CaseIdx: n.CaseIdx, CaseValue: cv}, nil
	case TagEnum:
		return EnumValue{CaseIdx: n.CaseIdx}, nil
	case TagFlags:
		bits, _ := n.Prim.([]bool)
		return FlagsValue{Bits: bits}, nil
	case TagResult:
		if !n.HasPayload {
			return ResultValue{IsErr: n.IsErr}, nil
		}
		if len(n.Children) != 1 {
			return nil, fmt.Errorf("cm: FromWitValue: node %d: result-value with payload must have exactly one child", idx)
		}
		rv, err := decodeNode(wv, n.Children[0])
		if err != nil {
			return nil, err
		}
		return ResultValue{IsErr: n.IsErr, Value: rv}, nil
	default:
		return nil, fmt.Errorf("cm: FromWitValue: node %d: malformed node tag %q", idx, n.Tag)
	}
}

func decodePrim[T any](n WitNode, idx int, wrap func(T) Value) (Value, error) {
	v, ok := n.Prim.(T)
	if !ok {
		return nil, fmt.Errorf("cm: FromWitValue: node %d: %s has wrong payload type", idx, n.Tag)
	}
	return wrap(v), nil
}

// VariantCaseName is a convenience used by the deserializer: it looks up
// case name for a variant value against t's declared cases, for error
// messages that name the offending case.
func VariantCaseName(t wit.VariantType, idx uint32) string {
	if int(idx) < 0 || int(idx) >= len(t.Cases) {
		return fmt.Sprintf("<invalid case %d>", idx)
	}
	return t.Cases[idx].Name
}
