// Package must turns start-up errors into panics. Use it only where an error means the binary
// itself is broken, such as a missing embedded directory.
package must

// OK panics if err is not nil.
func OK(err error) {
	if err != nil {
		panic(err)
	}
}

// Any returns v, or panics if err is not nil.
//
//nolint:ireturn // Generic passthrough.
func Any[T any](v T, err error) T {
	OK(err)

	return v
}
