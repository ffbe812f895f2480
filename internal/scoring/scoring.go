// Package scoring derives the secondary relationship indices from a
// quantitative analysis: the weighted health score, four threat meters, the
// damage report and the communication pattern screening. Every function is
// total over well-typed input: absent optional sections fall back to
// documented defaults instead of failing, and every score lands in [0, 100].
//
// The numeric weights and band cutoffs in this package are product
// constants. They have no derivation; do not tune them.
package scoring

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// imbalance maps two magnitudes to 0-100, where 0 is an even split and 100
// fully one-sided. Two empty sides count as even.
func imbalance(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	if a < 0 {
		a = 0
	}
	if b < 0 {
		b = 0
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 100 * diff / (a + b)
}
