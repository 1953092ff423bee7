package cm

// Option is a typed convenience wrapper for an optional value, the
// statically typed counterpart of [OptionValue].
type Option[T any] struct {
	some  T
	isSet bool
}

// None returns an [Option] representing the none case.
func None[T any]() Option[T] { return Option[T]{} }

// Some returns an [Option] representing the some case holding v.
func Some[T any](v T) Option[T] { return Option[T]{some: v, isSet: true} }

// IsNone reports whether o represents the none case.
func (o Option[T]) IsNone() bool { return !o.isSet }

// Get returns o's value and true, or the zero value and false if o is none.
func (o Option[T]) Get() (T, bool) { return o.some, o.isSet }

// Tuple2 is a typed 2-element tuple.
type Tuple2[T0, T1 any] struct {
	F0 T0
	F1 T1
}

// Tuple3 is a typed 3-element tuple.
type Tuple3[T0, T1, T2 any] struct {
	F0 T0
	F1 T1
	F2 T2
}
