package marshal

import (
	"reflect"
	"testing"

	"github.com/golemcloud/golem-agent-sdk/cm"
	"github.com/golemcloud/golem-agent-sdk/reflectx"
	"github.com/golemcloud/golem-agent-sdk/typeinfo"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

func TestSerializeDeserializeScalarRoundTrip(t *testing.T) {
	mapper := reflectx.NewMapper()
	cases := []struct {
		name   string
		t      wit.AnalysedType
		v      reflect.Value
		target reflect.Type
	}{
		{"bool", wit.BoolType{}, reflect.ValueOf(true), reflect.TypeOf(false)},
		{"u32", wit.U32Type{}, reflect.ValueOf(uint32(7)), reflect.TypeOf(uint32(0))},
		{"s64", wit.S64Type{}, reflect.ValueOf(int64(-9)), reflect.TypeOf(int64(0))},
		{"string", wit.StringType{}, reflect.ValueOf("hi"), reflect.TypeOf("")},
	}
	for _, c := range cases {
		value, err := Serialize(c.v, c.t)
		if err != nil {
			t.Fatalf("%s: Serialize: %v", c.name, err)
		}
		got, err := Deserialize(mapper, value, c.t, c.target)
		if err != nil {
			t.Fatalf("%s: Deserialize: %v", c.name, err)
		}
		if !reflect.DeepEqual(got.Interface(), c.v.Interface()) {
			t.Errorf("%s: round trip = %v, want %v", c.name, got.Interface(), c.v.Interface())
		}
	}
}

type recordType struct {
	A int32
	B string
}

func TestSerializeDeserializeRecordRoundTrip(t *testing.T) {
	mapper := reflectx.NewMapper()
	rt := wit.RecordType{Fields: []wit.Field{
		{Name: "a", Type: wit.S32Type{}},
		{Name: "b", Type: wit.StringType{}},
	}}
	in := recordType{A: 3, B: "x"}
	value, err := Serialize(reflect.ValueOf(in), rt)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Deserialize(mapper, value, rt, reflect.TypeOf(recordType{}))
	if err != nil {
		t.Fatal(err)
	}
	if out := got.Interface().(recordType); out != in {
		t.Errorf("record round trip = %+v, want %+v", out, in)
	}
}

func TestSerializeDeserializeOptionSymmetry(t *testing.T) {
	mapper := reflectx.NewMapper()
	ot := wit.OptionType{Inner: wit.S32Type{}, Form: wit.OptionQuestionMark}
	target := reflect.TypeOf((*int32)(nil))

	var nilPtr *int32
	value, err := Serialize(reflect.ValueOf(nilPtr), ot)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Deserialize(mapper, value, ot, target)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsNil() {
		t.Errorf("none round trip: got %v, want nil pointer", got.Interface())
	}

	n := int32(5)
	value, err = Serialize(reflect.ValueOf(&n), ot)
	if err != nil {
		t.Fatal(err)
	}
	got, err = Deserialize(mapper, value, ot, target)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsNil() || got.Elem().Int() != 5 {
		t.Errorf("some round trip: got %v, want *5", got.Interface())
	}
}

func TestSerializeArgsDropsPrincipalAndConfig(t *testing.T) {
	params := []typeinfo.TypeInfo{
		typeinfo.Principal(),
		typeinfo.Analysed(wit.StringType{}),
		typeinfo.Config(),
	}
	args := []reflect.Value{
		reflect.ValueOf("ignored-principal"),
		reflect.ValueOf("city"),
		reflect.ValueOf("ignored-config"),
	}
	dv, err := SerializeArgs(args, params)
	if err != nil {
		t.Fatal(err)
	}
	td, ok := dv.(cm.TupleDataValue)
	if !ok || len(td.Elements) != 1 {
		t.Fatalf("SerializeArgs = %#v, want single-element tuple", dv)
	}
}

func TestSerializeArgsRejectsArgCountMismatch(t *testing.T) {
	params := []typeinfo.TypeInfo{typeinfo.Analysed(wit.StringType{})}
	if _, err := SerializeArgs(nil, params); err == nil {
		t.Error("SerializeArgs with 0 args but 1 param: expected error")
	}
}

func TestDeserializeArgsInjectsPrincipalAndConfig(t *testing.T) {
	mapper := reflectx.NewMapper()
	params := []typeinfo.TypeInfo{
		typeinfo.Principal(),
		typeinfo.Analysed(wit.StringType{}),
		typeinfo.Config(),
	}
	targets := []reflect.Type{
		reflect.TypeOf(""),
		reflect.TypeOf(""),
		reflect.TypeOf(""),
	}
	dv := cm.TupleDataValue{Elements: []cm.ElementValue{mustElement(t, "city", wit.StringType{})}}

	inj := Injectors{
		Principal: func() (reflect.Value, error) { return reflect.ValueOf("alice"), nil },
		Config:    func() (reflect.Value, error) { return reflect.ValueOf("cfg"), nil },
	}
	out, err := DeserializeArgs(mapper, dv, params, targets, inj)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].String() != "alice" || out[1].String() != "city" || out[2].String() != "cfg" {
		t.Errorf("DeserializeArgs = %v, %v, %v", out[0], out[1], out[2])
	}
}

func TestDeserializeArgsMissingInjectorIsError(t *testing.T) {
	mapper := reflectx.NewMapper()
	params := []typeinfo.TypeInfo{typeinfo.Principal()}
	targets := []reflect.Type{reflect.TypeOf("")}
	dv := cm.TupleDataValue{}
	if _, err := DeserializeArgs(mapper, dv, params, targets, Injectors{}); err == nil {
		t.Error("DeserializeArgs with no Principal injector: expected error")
	}
}

func mustElement(t *testing.T, v string, ty wit.AnalysedType) cm.ElementValue {
	t.Helper()
	value, err := Serialize(reflect.ValueOf(v), ty)
	if err != nil {
		t.Fatal(err)
	}
	wv, err := cm.ToWitValue(value)
	if err != nil {
		t.Fatal(err)
	}
	return cm.ComponentModelElementValue{Value: wv}
}

func TestSerializeDeserializeResultVoidAndValue(t *testing.T) {
	mapper := reflectx.NewMapper()

	voidInfo := typeinfo.Analysed(wit.TupleType{})
	dv, err := SerializeResult(reflect.Value{}, voidInfo)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := dv.(cm.TupleDataValue); !ok || len(dv.(cm.TupleDataValue).Elements) != 0 {
		t.Errorf("SerializeResult(void) = %#v, want empty tuple", dv)
	}
	got, err := DeserializeResult(mapper, dv, voidInfo, reflect.TypeOf(struct{}{}))
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind() != reflect.Struct {
		t.Errorf("DeserializeResult(void) = %#v", got)
	}

	info := typeinfo.Analysed(wit.U32Type{})
	dv, err = SerializeResult(reflect.ValueOf(uint32(9)), info)
	if err != nil {
		t.Fatal(err)
	}
	got, err = DeserializeResult(mapper, dv, info, reflect.TypeOf(uint32(0)))
	if err != nil {
		t.Fatal(err)
	}
	if got.Interface().(uint32) != 9 {
		t.Errorf("DeserializeResult(u32) = %v, want 9", got.Interface())
	}
}
