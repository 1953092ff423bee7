package wit

import "testing"

func TestDiscriminantWidth(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{0, 1},
		{2, 1},
		{3, 8},
		{1 << 8, 8},
		{1<<8 + 1, 16},
		{1 << 16, 16},
		{1<<16 + 1, 32},
	}
	for _, c := range cases {
		if got := DiscriminantWidth(c.n); got != c.want {
			t.Errorf("DiscriminantWidth(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestDespecializeOption(t *testing.T) {
	o := OptionType{Inner: StringType{}, Form: OptionQuestionMark}
	v, ok := Despecialize(o)
	if !ok {
		t.Fatal("Despecialize(OptionType): expected ok")
	}
	if len(v.Cases) != 2 || v.Cases[0].Name != "none" || v.Cases[1].Name != "some" {
		t.Errorf("unexpected despecialized cases: %+v", v.Cases)
	}
	if _, ok := v.Cases[1].Type.(StringType); !ok {
		t.Errorf("despecialized some-case type = %T, want StringType", v.Cases[1].Type)
	}
}

func TestDespecializeResult(t *testing.T) {
	r := ResultType{Kind: ResultCustom, OK: U32Type{}, Err: StringType{}}
	v, ok := Despecialize(r)
	if !ok {
		t.Fatal("Despecialize(ResultType): expected ok")
	}
	if len(v.Cases) != 2 || v.Cases[0].Name != "ok" || v.Cases[1].Name != "err" {
		t.Errorf("unexpected despecialized cases: %+v", v.Cases)
	}
}

func TestDespecializeNotApplicable(t *testing.T) {
	if _, ok := Despecialize(BoolType{}); ok {
		t.Error("Despecialize(BoolType): expected ok=false")
	}
}
