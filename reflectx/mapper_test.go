package reflectx

import (
	"reflect"
	"testing"

	"github.com/golemcloud/golem-agent-sdk/wit"
)

func mapType(t *testing.T, m *Mapper, v any, scope Scope) wit.AnalysedType {
	t.Helper()
	at, err := m.Map(reflect.TypeOf(v), scope)
	if err != nil {
		t.Fatalf("Map(%T): %v", v, err)
	}
	return at
}

func TestMapPrimitives(t *testing.T) {
	m := NewMapper()
	cases := []struct {
		v    any
		want wit.AnalysedType
	}{
		{true, wit.BoolType{}},
		{int8(1), wit.S8Type{}},
		{uint8(1), wit.U8Type{}},
		{int32(1), wit.S32Type{}},
		{uint64(1), wit.U64Type{}},
		{float32(1), wit.F32Type{}},
		{float64(1), wit.F64Type{}},
		{"s", wit.StringType{}},
	}
	for _, c := range cases {
		if got := mapType(t, m, c.v, Scope{}); got != c.want {
			t.Errorf("Map(%T) = %#v, want %#v", c.v, got, c.want)
		}
	}
}

func TestMapOptionPointer(t *testing.T) {
	m := NewMapper()
	var p *pair
	got := mapType(t, m, p, Scope{})
	opt, ok := got.(wit.OptionType)
	if !ok {
		t.Fatalf("Map(*pair) = %#v, want OptionType", got)
	}
	if opt.Form != wit.OptionQuestionMark {
		t.Errorf("Map(*pair).Form = %s, want %s", opt.Form, wit.OptionQuestionMark)
	}
	if _, ok := opt.Inner.(wit.RecordType); !ok {
		t.Errorf("Map(*pair).Inner = %#v, want RecordType", opt.Inner)
	}
}

func TestMapOptionalScopeWrapsNonOption(t *testing.T) {
	m := NewMapper()
	at, err := m.Map(reflect.TypeOf(""), Scope{Optional: true})
	if err != nil {
		t.Fatal(err)
	}
	opt, ok := at.(wit.OptionType)
	if !ok || opt.Form != wit.OptionQuestionMark {
		t.Errorf("Map(string, Optional) = %#v, want option(string, question-mark)", at)
	}
}

func TestMapRejectsBoxedPrimitive(t *testing.T) {
	m := NewMapper()
	var p *int
	if _, err := m.Map(reflect.TypeOf(p), Scope{}); err == nil {
		t.Error("Map(*int): expected error for boxed pointer-to-primitive")
	}
}

type pair struct {
	A int32
	B string
}

func TestMapRecordFieldNaming(t *testing.T) {
	m := NewMapper()
	got := mapType(t, m, pair{}, Scope{ClassName: "Test"})
	rec, ok := got.(wit.RecordType)
	if !ok || len(rec.Fields) != 2 {
		t.Fatalf("Map(pair{}) = %#v, want 2-field RecordType", got)
	}
	if rec.Fields[0].Name != "a" || rec.Fields[1].Name != "b" {
		t.Errorf("field names = %q, %q, want lowerCamel a, b", rec.Fields[0].Name, rec.Fields[1].Name)
	}
}

type taggedField struct {
	Count int32 `golem:"count,optional"`
}

func TestMapRecordFieldTagOverridesNameAndOptional(t *testing.T) {
	m := NewMapper()
	got := mapType(t, m, taggedField{}, Scope{})
	rec := got.(wit.RecordType)
	f, ok := rec.FieldByName("count")
	if !ok {
		t.Fatalf("FieldByName(count) not found in %#v", rec.Fields)
	}
	if _, ok := f.Type.(wit.OptionType); !ok {
		t.Errorf("tagged optional field type = %#v, want OptionType", f.Type)
	}
}

type tuple2 struct {
	F0 int32
	F1 string
}

func TestMapTupleShape(t *testing.T) {
	m := NewMapper()
	got := mapType(t, m, tuple2{}, Scope{})
	tup, ok := got.(wit.TupleType)
	if !ok || len(tup.Items) != 2 {
		t.Fatalf("Map(tuple2{}) = %#v, want 2-item TupleType", got)
	}
}

func TestMapListAndMap(t *testing.T) {
	m := NewMapper()
	got := mapType(t, m, []int32{}, Scope{})
	lt, ok := got.(wit.ListType)
	if !ok {
		t.Fatalf("Map([]int32) = %#v, want ListType", got)
	}
	if _, ok := lt.Inner.(wit.S32Type); !ok {
		t.Errorf("Map([]int32).Inner = %#v, want S32Type", lt.Inner)
	}

	gotMap := mapType(t, m, map[string]int32{}, Scope{})
	mt := gotMap.(wit.ListType)
	if mt.MapType == nil {
		t.Fatal("Map(map[string]int32).MapType = nil, want non-nil")
	}
	if _, ok := mt.MapType.KeyType.(wit.StringType); !ok {
		t.Errorf("MapType.KeyType = %#v, want StringType", mt.MapType.KeyType)
	}
}

type sunny struct{ Val int32 }

func (sunny) UnionTag() string { return "sunny" }

type rainy struct{ MM int32 }

func (rainy) UnionTag() string { return "rainy" }

type weather interface{ isWeather() }

func TestRegisterUnionAndMapTaggedUnion(t *testing.T) {
	m := NewMapper()
	iface := reflect.TypeOf((*weather)(nil)).Elem()
	// sunny/rainy don't implement weather (no isWeather method), but
	// RegisterUnion only requires TaggedUnionCase, matching the schema
	// builder's own union-registration contract (spec §4.3).
	if err := m.RegisterUnion(iface, reflect.TypeOf(sunny{}), reflect.TypeOf(rainy{})); err != nil {
		t.Fatalf("RegisterUnion: %v", err)
	}
	cases, ok := m.UnionCases(iface)
	if !ok || len(cases) != 2 {
		t.Fatalf("UnionCases = %v, %v", cases, ok)
	}
	c, ok := m.CaseByTag(iface, "rainy")
	if !ok || c != reflect.TypeOf(rainy{}) {
		t.Errorf("CaseByTag(rainy) = %v, %v", c, ok)
	}
	tag, payload := m.CaseTagAndPayload(reflect.TypeOf(sunny{}))
	if tag != "sunny" || payload.Kind() != reflect.Int32 {
		t.Errorf("CaseTagAndPayload(sunny) = %q, %v", tag, payload)
	}
}

func TestRegisterUnionRejectsDuplicateTag(t *testing.T) {
	m := NewMapper()
	iface := reflect.TypeOf((*weather)(nil)).Elem()
	if err := m.RegisterUnion(iface, reflect.TypeOf(sunny{}), reflect.TypeOf(sunny{})); err == nil {
		t.Error("RegisterUnion with duplicate tags: expected error")
	}
}

func TestIsUnionAndIsResult(t *testing.T) {
	u := Union[int32]{Val: 5, Present: true}
	val, present, ok := IsUnion(reflect.ValueOf(u))
	if !ok || !present || val.Int() != 5 {
		t.Errorf("IsUnion(present union) = %v, %v, %v", val, present, ok)
	}

	r := Ok[int32, string](7)
	okVal, _, isErr, ok := IsResult(reflect.ValueOf(r))
	if !ok || isErr || okVal.Int() != 7 {
		t.Errorf("IsResult(ok) = %v, %v, %v", okVal, isErr, ok)
	}

	f := Failure[int32, string]("boom")
	_, errVal, isErr, ok := IsResult(reflect.ValueOf(f))
	if !ok || !isErr || errVal.String() != "boom" {
		t.Errorf("IsResult(failure) = %v, %v, %v", errVal, isErr, ok)
	}
}
