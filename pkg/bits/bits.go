// Package bits provides helpers for manipulating single bits of a byte.
package bits

import "math/bits"

// Reset resets the bit at the given index.
func Reset(b, i uint8) uint8 {
	return b &^ (1 << i)
}

// Set sets the bit at the given index.
func Set(b, i uint8) uint8 {
	return b | (1 << i)
}

// Test tests the bit at the given index.
func Test(b, i uint8) bool {
	return (b>>i)&1 != 0
}

// Assign sets the bit at the given index when v is true,
// and resets it otherwise.
func Assign(b, i uint8, v bool) uint8 {
	if v {
		return Set(b, i)
	}
	return Reset(b, i)
}

// Parity reports whether b has an even number of set bits.
func Parity(b uint8) bool {
	return bits.OnesCount8(b)%2 == 0
}
