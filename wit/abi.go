package wit

// DiscriminantWidth returns the smallest unsigned integer width, in bits,
// needed to represent the tag of a variant, enum, or result with n cases.
// A 2-case shape (option, result) can be carried in a single bool; beyond
// that the smallest of u8/u16/u32 is chosen. This mirrors the Canonical ABI's
// own discriminant-sizing rule. The WitValue codec (package cm) does not use
// it: it stores every case index as a uint32.
func DiscriminantWidth(n int) int {
	switch {
	case n <= 2:
		return 1
	case n <= 1<<8:
		return 8
	case n <= 1<<16:
		return 16
	default:
		return 32
	}
}

// Despecializer is implemented by AnalysedType kinds that have a canonical
// two-or-more-case variant form. [OptionType] despecializes into a variant
// with cases "none" and "some"; [ResultType] despecializes into a variant
// with cases "ok" and "err". The Value/WitValue codec (package cm) does not
// use this; it handles option, result, and variant each on its own.
type Despecializer interface {
	Despecialize() VariantType
}

var (
	_ Despecializer = OptionType{}
	_ Despecializer = ResultType{}
)

// Despecialize returns t's canonical variant form if t implements
// [Despecializer], otherwise it returns ok=false.
func Despecialize(t AnalysedType) (VariantType, bool) {
	d, ok := t.(Despecializer)
	if !ok {
		return VariantType{}, false
	}
	return d.Despecialize(), true
}

// Despecialize implements [Despecializer] for OptionType.
func (o OptionType) Despecialize() VariantType {
	return VariantType{
		Cases: []VariantCase{
			{Name: "none"},
			{Name: "some", Type: o.Inner},
		},
	}
}

// Despecialize implements [Despecializer] for ResultType.
func (r ResultType) Despecialize() VariantType {
	return VariantType{
		Cases: []VariantCase{
			{Name: "ok", Type: r.OK},
			{Name: "err", Type: r.Err},
		},
	}
}
