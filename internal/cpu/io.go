package cpu

import (
	"fmt"

	"github.com/thelolagemann/gbz80/internal/types"
)

// portAddress is the 16-bit port address of IN A,(n) and OUT (n),A: the
// immediate forms the low byte and A the high byte.
type portAddress struct {
	a *types.Register8
	n uint8
}

func (p portAddress) Read() uint16   { return uint16(p.a.Read())<<8 | uint16(p.n) }
func (p portAddress) Kind() Kind     { return KindImmediate }
func (p portAddress) String() string { return fmt.Sprintf("$%02X", p.n) }

// IN reads a byte from the port space.
//
//	IN A, (n)
//	IN r, (C)
//	IN (C)
//
// Flags affected by the (C) forms:
//
//	S - Set if the input is negative.
//	Z - Set if the input is zero.
//	H - Reset.
//	P/V - Set if the input has even parity.
//	N - Reset.
//	C - Not affected.
type IN struct {
	meta
	dst   Operand8 // nil for IN (C), which only sets flags
	port  Source8
	flags bool
}

func (i *IN) Execute(c *CPU) {
	v := i.port.Read()
	if i.dst != nil {
		i.dst.Write(v)
	}
	if i.flags {
		c.Zero.Write(v == 0)
		c.Subtract.Write(false)
		c.HalfCarry.Write(false)
		c.setSignParity(v)
	}
}

func (i *IN) String() string {
	if i.dst == nil {
		return "IN " + i.port.String()
	}
	return "IN " + i.dst.String() + "," + i.port.String()
}

// OUT writes a byte to the port space. No flags are affected.
//
//	OUT (n), A
//	OUT (C), r
//	OUT (C), 0
type OUT struct {
	meta
	port Operand8
	src  Source8
}

func (i *OUT) Execute(*CPU)   { i.port.Write(i.src.Read()) }
func (i *OUT) String() string { return "OUT " + i.port.String() + "," + i.src.String() }
