package reactive

import "reflect"

// SameValue reports whether writing b over a is a no-op.
//
// Comparable values use ==. Maps and slices compare by identity (same
// backing storage), as do functions. Other non-comparable values, such as
// structs holding slices, fall back to reflect.DeepEqual.
func SameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	switch ta.Kind() {
	case reflect.Map, reflect.Func:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	case reflect.Slice:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if ta.Comparable() {
		return comparableEquals(a, b)
	}
	return reflect.DeepEqual(a, b)
}

// comparableEquals uses == and treats a runtime comparison panic (an array
// or struct holding a non-comparable interface value) as "not equal".
func comparableEquals(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
