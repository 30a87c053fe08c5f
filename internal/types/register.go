package types

import "github.com/thelolagemann/gbz80/pkg/bits"

// Register8 represents an 8-bit CPU register. Values wrap naturally
// within 8 bits; there is no range checking.
type Register8 uint8

// Read returns the value held by the register.
func (r *Register8) Read() uint8 {
	return uint8(*r)
}

// Write stores v in the register.
func (r *Register8) Write(v uint8) {
	*r = Register8(v)
}

// Register16 represents a standalone 16-bit register, such as
// the stack pointer or program counter.
type Register16 uint16

// Read returns the value held by the register.
func (r *Register16) Read() uint16 {
	return uint16(*r)
}

// Write stores v in the register.
func (r *Register16) Write(v uint16) {
	*r = Register16(v)
}

// RegisterPair represents a pair of 8-bit registers accessed as a
// single 16-bit value (AF, BC, DE, HL, IX, IY). The pair holds no
// storage of its own: every read recomputes the value from its
// halves, and every write splits the value across both of them.
type RegisterPair struct {
	High *Register8
	Low  *Register8
}

// NewRegisterPair returns a RegisterPair composed of high and low.
func NewRegisterPair(high, low *Register8) *RegisterPair {
	return &RegisterPair{High: high, Low: low}
}

// Read returns the value of the RegisterPair as an uint16.
func (r *RegisterPair) Read() uint16 {
	return uint16(*r.High)<<8 | uint16(*r.Low)
}

// Write sets the value of the RegisterPair to the given value.
func (r *RegisterPair) Write(v uint16) {
	*r.High = Register8(v >> 8)
	*r.Low = Register8(v)
}

// Flag is a view over a single bit of a flag register. Writing a
// flag performs a read-modify-write of the underlying register, so
// writers of different flags of the same register must be serialized.
type Flag struct {
	reg *Register8
	bit uint8
}

// NewFlag returns a Flag over the given bit of reg.
func NewFlag(reg *Register8, bit uint8) *Flag {
	return &Flag{reg: reg, bit: bit}
}

// Read reports whether the flag is set.
func (f *Flag) Read() bool {
	return bits.Test(f.reg.Read(), f.bit)
}

// Write sets or clears the flag.
func (f *Flag) Write(v bool) {
	f.reg.Write(bits.Assign(f.reg.Read(), f.bit, v))
}
