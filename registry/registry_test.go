package registry

import (
	"reflect"
	"testing"

	"github.com/golemcloud/golem-agent-sdk/reflectx"
	"github.com/golemcloud/golem-agent-sdk/schemabuild"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

func buildRegistration(t *testing.T, identStr, methodName string) *schemabuild.ClassRegistration {
	t.Helper()
	id, err := wit.ParseIdent(identStr)
	if err != nil {
		t.Fatal(err)
	}
	b := schemabuild.NewBuilder(reflectx.NewMapper())
	reg, err := b.Build(schemabuild.ClassMetadata{
		Ident: id,
		Methods: []schemabuild.MethodMeta{
			{
				Name:   methodName,
				Params: []schemabuild.ParamMeta{{Name: "x", Type: reflect.TypeOf(int32(0))}},
				Return: schemabuild.ReturnMeta{Type: reflect.TypeOf(int32(0))},
			},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return reg
}

func TestRegisterAndLookup(t *testing.T) {
	r := New(nil)
	reg := buildRegistration(t, "golem:weather-agent", "GetWeather")
	if err := r.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	id, _ := wit.ParseIdent("golem:weather-agent")
	got, ok := r.Lookup(id)
	if !ok || got != reg {
		t.Errorf("Lookup = %v, %v, want %v, true", got, ok, reg)
	}

	got, ok = r.LookupByKey("golem:weather-agent")
	if !ok || got != reg {
		t.Errorf("LookupByKey = %v, %v, want %v, true", got, ok, reg)
	}

	if _, ok := r.LookupByKey("golem:unknown-agent"); ok {
		t.Error("LookupByKey(unknown): expected ok=false")
	}
}

func TestRegisterRejectsDuplicateKey(t *testing.T) {
	r := New(nil)
	reg := buildRegistration(t, "golem:weather-agent", "GetWeather")
	if err := r.Register(reg); err != nil {
		t.Fatal(err)
	}
	dup := buildRegistration(t, "golem:weather-agent", "GetForecast")
	if err := r.Register(dup); err == nil {
		t.Error("Register with duplicate class key: expected error")
	}
}

func TestMethodLookup(t *testing.T) {
	r := New(nil)
	reg := buildRegistration(t, "golem:weather-agent", "GetWeather")
	if err := r.Register(reg); err != nil {
		t.Fatal(err)
	}
	mr, ok := r.Method("golem:weather-agent", "get-weather")
	if !ok || len(mr.Params) != 1 {
		t.Errorf("Method(get-weather) = %+v, %v", mr, ok)
	}
	if _, ok := r.Method("golem:weather-agent", "no-such-method"); ok {
		t.Error("Method(no-such-method): expected ok=false")
	}
	if _, ok := r.Method("golem:unknown-agent", "get-weather"); ok {
		t.Error("Method on unknown class: expected ok=false")
	}
}

func TestKeysAndSchemasPreserveRegistrationOrder(t *testing.T) {
	r := New(nil)
	first := buildRegistration(t, "golem:a-agent", "Ping")
	second := buildRegistration(t, "golem:b-agent", "Ping")
	if err := r.Register(first); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(second); err != nil {
		t.Fatal(err)
	}

	keys := r.Keys()
	if len(keys) != 2 || keys[0] != "golem:a-agent" || keys[1] != "golem:b-agent" {
		t.Errorf("Keys() = %v, want [golem:a-agent golem:b-agent]", keys)
	}

	schemas := r.Schemas()
	if len(schemas) != 2 || schemas[0].Ident.UnversionedString() != "golem:a-agent" {
		t.Errorf("Schemas() order mismatch: %+v", schemas)
	}
}

func TestNewWithNilLoggerDoesNotPanic(t *testing.T) {
	r := New(nil)
	reg := buildRegistration(t, "golem:weather-agent", "GetWeather")
	if err := r.Register(reg); err != nil {
		t.Fatalf("Register with discard logger: %v", err)
	}
}
