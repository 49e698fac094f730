package util

import "fmt"

// Assertf panics with a formatted message if cond is false. Used throughout
// the module for internal invariants that must never be violated by correct
// callers -- not for validating untrusted input, which returns errors instead.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, evalLazyArgs(args...)...))
	}
}

// AssertNoError panics if err is non-nil. Reserved for errors that indicate
// broken invariants (e.g. a corrupted local data structure), never for
// recoverable conditions reported to a caller.
func AssertNoError(err error, prefix ...string) {
	if err == nil {
		return
	}
	if len(prefix) > 0 {
		panic(fmt.Sprintf("%s: %v", prefix[0], err))
	}
	panic(err)
}

// evalLazyArgs allows passing func() any as an argument; it is only invoked
// when the assertion actually fails, so expensive diagnostics don't run on
// the hot path.
func evalLazyArgs(args ...any) []any {
	ret := make([]any, len(args))
	for i, a := range args {
		if fn, ok := a.(func() any); ok {
			ret[i] = fn()
		} else {
			ret[i] = a
		}
	}
	return ret
}
