// Package utils holds small generic helpers for the optional (pointer) fields
// of catalog API payloads.
package utils

// Value dereferences v, giving the zero value of T for a nil pointer.
func Value[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// Ptr returns a pointer to a copy of v, for filling optional fields inline.
func Ptr[T any](v T) *T {
	return &v
}
