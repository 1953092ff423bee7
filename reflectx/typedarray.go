package reflectx

import (
	"reflect"

	"github.com/golemcloud/golem-agent-sdk/wit"
)

// typedArrayKind reports the typed-array hint for a list element type,
// mirroring spec §4.1's typed-array recognition. The hint is recorded in the
// schema only; decode builds a slice of the target's own element type whether
// or not it is set.
func typedArrayKind(elem reflect.Type) (wit.TypedArrayKind, bool) {
	switch elem.Kind() {
	case reflect.Uint8:
		return wit.TypedArrayU8, true
	case reflect.Uint16:
		return wit.TypedArrayU16, true
	case reflect.Uint32:
		return wit.TypedArrayU32, true
	case reflect.Int8:
		return wit.TypedArrayI8, true
	case reflect.Int16:
		return wit.TypedArrayI16, true
	case reflect.Int32:
		return wit.TypedArrayI32, true
	case reflect.Float32:
		return wit.TypedArrayF32, true
	case reflect.Float64:
		return wit.TypedArrayF64, true
	case reflect.Uint64, reflect.Uint:
		return wit.TypedArrayBigU64, true
	case reflect.Int64, reflect.Int:
		return wit.TypedArrayBigI64, true
	default:
		return wit.TypedArrayNone, false
	}
}
