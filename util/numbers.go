package util

import "math"

// CapInt64 is the associative, overflow-safe saturating cap applied to
// rating accumulation: i64::MAX/2 leaves enough headroom that a sum of two
// capped values never itself overflows int64.
const CapInt64 = math.MaxInt64 / 2

// CapSum adds a and b and saturates the result at cap, treating any
// overflow (including the negative-wraparound kind) as cap. a and b are
// both assumed already <= cap.
func CapSum(a, b, cap int64) int64 {
	sum := a + b
	if sum < 0 || sum > cap {
		return cap
	}
	return sum
}
