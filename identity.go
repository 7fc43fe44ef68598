package eventhub

import "reflect"

// sameRef reports whether a and b refer to the same value.
//
// Comparable dynamic types use ==, so pointers compare by address. Maps,
// funcs and chans compare by pointer and slices by data pointer and length.
// Any other non-comparable value only equals itself by type and is never
// considered the same.
func sameRef(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return comparableEqual(a, b)
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		return false
	}
}

// comparableEqual compares two values of a comparable type. Structs and arrays
// holding interface fields can still panic on ==; those are treated as
// distinct.
func comparableEqual(a, b any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return a == b
}
