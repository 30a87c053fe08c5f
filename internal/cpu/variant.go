package cpu

import "strings"

// Variant identifies which processor a CPU emulates. Variants form a
// bitmask so that an instruction can declare every variant it runs on.
type Variant uint8

const (
	// Z80 is the general-purpose Zilog Z80.
	Z80 Variant = 1 << iota
	// LR35902 is the Sharp LR35902 used by the Game Boy: a Z80 derivative
	// without the shadow register set, index registers or port I/O, and
	// with a different flag layout.
	LR35902

	// Both is shorthand for instructions shared by both variants.
	Both = Z80 | LR35902
)

var variantNames = map[Variant]string{
	Z80:     "Z80",
	LR35902: "LR35902",
	Both:    "Z80/LR35902",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return "unknown"
}

// index returns the position of a single variant in per-variant tables.
func (v Variant) index() int {
	if v == LR35902 {
		return 1
	}
	return 0
}

// ParseVariant converts a name such as "z80", "lr35902", "gb" or "sm83"
// into a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch strings.ToLower(s) {
	case "z80", "a":
		return Z80, true
	case "lr35902", "gb", "gbz80", "sm83", "b":
		return LR35902, true
	}
	return 0, false
}
