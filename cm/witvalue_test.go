package cm

import (
	"reflect"
	"testing"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	wv, err := ToWitValue(v)
	if err != nil {
		t.Fatalf("ToWitValue: %v", err)
	}
	got, err := FromWitValue(wv)
	if err != nil {
		t.Fatalf("FromWitValue: %v", err)
	}
	return got
}

func TestWitValueRoundTripPrimitives(t *testing.T) {
	cases := []Value{
		BoolValue{V: true},
		U8Value{V: 7},
		U64Value{V: 1 << 40},
		S32Value{V: -5},
		F64Value{V: 3.5},
		StringValue{V: "hello"},
		HandleValue{V: 42},
	}
	for _, v := range cases {
		got := roundTrip(t, v)
		if !reflect.DeepEqual(got, v) {
			t.Errorf("round trip %#v: got %#v", v, got)
		}
	}
}

func TestWitValueRoundTripOption(t *testing.T) {
	none := OptionValue{}
	if got := roundTrip(t, none); !got.(OptionValue).IsNone() {
		t.Errorf("none round trip: got %#v", got)
	}

	some := OptionValue{Inner: U32Value{V: 3}}
	got := roundTrip(t, some)
	if !reflect.DeepEqual(got, some) {
		t.Errorf("some round trip: got %#v, want %#v", got, some)
	}
}

func TestWitValueRoundTripList(t *testing.T) {
	v := ListValue{Items: []Value{U8Value{V: 1}, U8Value{V: 2}, U8Value{V: 3}}}
	got := roundTrip(t, v)
	if !reflect.DeepEqual(got, v) {
		t.Errorf("list round trip: got %#v, want %#v", got, v)
	}
}

func TestWitValueRoundTripRecord(t *testing.T) {
	v := RecordValue{Fields: []FieldValue{
		{Name: "a", Value: U32Value{V: 1}},
		{Name: "b", Value: StringValue{V: "x"}},
	}}
	got := roundTrip(t, v)
	if !reflect.DeepEqual(got, v) {
		t.Errorf("record round trip: got %#v, want %#v", got, v)
	}
	rv := got.(RecordValue)
	if val, ok := rv.ByName("b"); !ok || val.(StringValue).V != "x" {
		t.Errorf("ByName(b) = %#v, %v", val, ok)
	}
}

func TestWitValueRoundTripVariant(t *testing.T) {
	withPayload := VariantValue{CaseIdx: 1, CaseValue: StringValue{V: "err"}}
	got := roundTrip(t, withPayload)
	if !reflect.DeepEqual(got, withPayload) {
		t.Errorf("variant round trip: got %#v, want %#v", got, withPayload)
	}

	noPayload := VariantValue{CaseIdx: 0}
	got = roundTrip(t, noPayload)
	if !reflect.DeepEqual(got, noPayload) {
		t.Errorf("variant (no payload) round trip: got %#v, want %#v", got, noPayload)
	}
}

func TestWitValueRoundTripResult(t *testing.T) {
	ok := ResultValue{IsErr: false, Value: U32Value{V: 1}}
	got := roundTrip(t, ok)
	if !reflect.DeepEqual(got, ok) {
		t.Errorf("result (ok) round trip: got %#v, want %#v", got, ok)
	}

	errEmpty := ResultValue{IsErr: true}
	got = roundTrip(t, errEmpty)
	if !reflect.DeepEqual(got, errEmpty) {
		t.Errorf("result (empty err) round trip: got %#v, want %#v", got, errEmpty)
	}
}

func TestFromWitValueEmptyNodesIsError(t *testing.T) {
	if _, err := FromWitValue(WitValue{}); err == nil {
		t.Error("FromWitValue({}): expected error")
	}
}

func TestFromWitValueDanglingIndexIsError(t *testing.T) {
	wv := WitValue{Nodes: []WitNode{{Tag: TagOption, Children: []int{5}, HasPayload: true}}}
	if _, err := FromWitValue(wv); err == nil {
		t.Error("FromWitValue with dangling child index: expected error")
	}
}
