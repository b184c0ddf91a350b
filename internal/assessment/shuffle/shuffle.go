// Package shuffle deterministically permutes question sets from a ledger
// seed. The permutation must be bit-for-bit reproducible by any third party
// holding the seed and the question list, so the generator and the swap
// schedule are fixed and must never change.
package shuffle

import (
	"strconv"
	"strings"
)

// seedHexDigits is how many leading hex digits of the seed feed the generator.
const seedHexDigits = 8

// Source is a mulberry32 pseudo-random generator. It is 32-bit on purpose:
// auditors reproduce orderings in environments without 64-bit integers.
type Source struct {
	state uint32
}

// NewSource creates a generator from a 32-bit seed.
func NewSource(seed uint32) *Source {
	return &Source{state: seed}
}

// Float64 returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	s.state += 0x6D2B79F5
	z := s.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return float64(z^(z>>14)) / 4294967296.0
}

// ParseSeed derives the generator seed from a hex seed string. The leading
// eight hex digits are taken after stripping any 0x prefix; a seed that
// parses to zero or fails to parse falls back to 1 so the generator never
// degenerates.
func ParseSeed(seed string) uint32 {
	s := strings.TrimPrefix(strings.TrimSpace(seed), "0x")
	if len(s) > seedHexDigits {
		s = s[:seedHexDigits]
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || v == 0 {
		return 1
	}
	return uint32(v)
}

// Order returns the permutation of n indices produced by a Fisher-Yates
// pass driven by the seeded generator.
func Order(seed string, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	src := NewSource(ParseSeed(seed))
	for i := n - 1; i >= 1; i-- {
		j := int(src.Float64() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Apply permutes items according to the seed without mutating the input.
func Apply[T any](seed string, items []T) []T {
	order := Order(seed, len(items))
	out := make([]T, len(items))
	for i, idx := range order {
		out[i] = items[idx]
	}
	return out
}
