package schemabuild

import (
	"reflect"
	"testing"

	"github.com/golemcloud/golem-agent-sdk/reflectx"
	"github.com/golemcloud/golem-agent-sdk/typeinfo"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

func testIdent(t *testing.T) wit.Ident {
	t.Helper()
	id, err := wit.ParseIdent("golem:weather-agent")
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestBuildSimpleClass(t *testing.T) {
	b := NewBuilder(reflectx.NewMapper())
	meta := ClassMetadata{
		Ident: testIdent(t),
		Constructor: []ParamMeta{
			{Name: "city", Type: reflect.TypeOf("")},
		},
		Methods: []MethodMeta{
			{
				Name:   "GetWeather",
				Params: []ParamMeta{{Name: "days", Type: reflect.TypeOf(int32(0))}},
				Return: ReturnMeta{Type: reflect.TypeOf(int32(0))},
			},
		},
	}

	reg, err := b.Build(meta)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if reg.Schema.Ident.UnversionedString() != "golem:weather-agent" {
		t.Errorf("Schema.Ident = %v", reg.Schema.Ident)
	}
	if len(reg.Schema.Methods) != 1 || reg.Schema.Methods[0].Name != "get-weather" {
		t.Fatalf("Schema.Methods = %+v, want kebab-cased get-weather", reg.Schema.Methods)
	}
	mr, ok := reg.Methods["get-weather"]
	if !ok || len(mr.Params) != 1 || mr.Return.Kind != typeinfo.KindAnalysed {
		t.Fatalf("Methods[get-weather] = %+v, %v", mr, ok)
	}
}

func TestBuildRejectsReservedMethodName(t *testing.T) {
	b := NewBuilder(reflectx.NewMapper())
	meta := ClassMetadata{
		Ident: testIdent(t),
		Methods: []MethodMeta{
			{Name: "Initialize", Return: ReturnMeta{}},
		},
	}
	if _, err := b.Build(meta); err == nil {
		t.Error("Build with method name 'Initialize': expected error")
	}
}

func TestBuildRejectsDollarInMethodName(t *testing.T) {
	b := NewBuilder(reflectx.NewMapper())
	meta := ClassMetadata{
		Ident:   testIdent(t),
		Methods: []MethodMeta{{Name: "Get$Weather", Return: ReturnMeta{}}},
	}
	if _, err := b.Build(meta); err == nil {
		t.Error("Build with '$' in method name: expected error")
	}
}

func TestBuildRejectsDuplicateMethodName(t *testing.T) {
	b := NewBuilder(reflectx.NewMapper())
	meta := ClassMetadata{
		Ident: testIdent(t),
		Methods: []MethodMeta{
			{Name: "GetWeather", Return: ReturnMeta{}},
			{Name: "get-weather", Return: ReturnMeta{}},
		},
	}
	if _, err := b.Build(meta); err == nil {
		t.Error("Build with duplicate kebab-cased method names: expected error")
	}
}

func TestBuildVoidReturnIsEmptyTuple(t *testing.T) {
	b := NewBuilder(reflectx.NewMapper())
	meta := ClassMetadata{
		Ident:   testIdent(t),
		Methods: []MethodMeta{{Name: "Ping", Return: ReturnMeta{}}},
	}
	reg, err := b.Build(meta)
	if err != nil {
		t.Fatal(err)
	}
	out, ok := reg.Schema.Methods[0].Output.(wit.TupleDataSchema)
	if !ok || len(out.Elements) != 0 {
		t.Errorf("void return Output = %#v, want empty TupleDataSchema", reg.Schema.Methods[0].Output)
	}
	if reg.Methods["ping"].Return.Kind != typeinfo.KindAnalysed {
		t.Errorf("void return TypeInfo.Kind = %s", reg.Methods["ping"].Return.Kind)
	}
}

func TestToKebabCaseInitialisms(t *testing.T) {
	cases := map[string]string{
		"GetWeather":     "get-weather",
		"ListHTTPRoutes": "list-http-routes",
		"GetID":          "get-id",
	}
	for in, want := range cases {
		if got := toKebabCase(in); got != want {
			t.Errorf("toKebabCase(%q) = %q, want %q", in, got, want)
		}
	}
}
