package cpu

import (
	"fmt"

	"github.com/thelolagemann/gbz80/pkg/bits"
)

// BIT tests a bit of an 8-bit location.
//
//	BIT b, r
//	b = 0 - 7, r = A, B, C, D, E, H, L, (HL), (IX+d)
//
// Flags affected:
//
//	S - Set if b is 7 and the bit is set. (Z80)
//	Z - Set if bit b of register r is 0.
//	N - Reset.
//	H - Set.
//	P/V - Same as Z. (Z80)
//	C - Not affected.
type BIT struct {
	meta
	bit uint8
	src Source8
}

func (i *BIT) Execute(c *CPU) {
	set := bits.Test(i.src.Read(), i.bit)
	c.Zero.Write(!set)
	c.Subtract.Write(false)
	c.HalfCarry.Write(true)
	if c.variant == Z80 {
		c.Sign.Write(i.bit == 7 && set)
		c.ParityOverflow.Write(!set)
	}
}

func (i *BIT) String() string { return fmt.Sprintf("BIT %d,%s", i.bit, i.src) }

// SET sets a bit of an 8-bit location. No flags are affected.
type SET struct {
	meta
	bit uint8
	dst Operand8
}

func (i *SET) Execute(*CPU)   { i.dst.Write(bits.Set(i.dst.Read(), i.bit)) }
func (i *SET) String() string { return fmt.Sprintf("SET %d,%s", i.bit, i.dst) }

// RES resets a bit of an 8-bit location. No flags are affected.
type RES struct {
	meta
	bit uint8
	dst Operand8
}

func (i *RES) Execute(*CPU)   { i.dst.Write(bits.Reset(i.dst.Read(), i.bit)) }
func (i *RES) String() string { return fmt.Sprintf("RES %d,%s", i.bit, i.dst) }
