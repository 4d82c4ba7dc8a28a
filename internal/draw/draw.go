// Package draw provides the weighted and uniform selection primitives shared
// by the samplers. Every function consumes the caller's *rand.Rand so a seed
// reproduces the same draws.
package draw

import "math/rand"

// IntBetween returns a uniform integer in [lo, hi].
func IntBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// Choice returns a uniformly chosen element of items. items must not be empty.
func Choice[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

// Weighted returns one element of items chosen with the given relative
// weights. items and weights must have the same non-zero length.
func Weighted[T any](rng *rand.Rand, items []T, weights []float64) T {
	var total float64
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return items[i]
		}
		r -= w
	}
	return items[len(items)-1]
}

// Sample returns k distinct elements of items in draw order. k is clamped to
// len(items). items is not modified.
func Sample[T any](rng *rand.Rand, items []T, k int) []T {
	if k > len(items) {
		k = len(items)
	}
	pool := make([]T, len(items))
	copy(pool, items)
	out := make([]T, 0, k)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		out = append(out, pool[i])
	}
	return out
}
