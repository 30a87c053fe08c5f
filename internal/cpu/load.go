package cpu

import (
	"github.com/thelolagemann/gbz80/internal/types"
)

// NOP does nothing.
type NOP struct{ meta }

func (i *NOP) Execute(*CPU)   {}
func (i *NOP) String() string { return "NOP" }

// LD8 loads an 8-bit value into dst.
//
//	LD r, r'
//	LD r, n
//	LD r, (HL)
//	LD (HL), r
//	LD A, (nn)
//
// Flags affected: none.
type LD8 struct {
	meta
	dst Operand8
	src Source8
}

func (i *LD8) Execute(*CPU) {
	i.dst.Write(i.src.Read())
}

func (i *LD8) String() string { return "LD " + i.dst.String() + "," + i.src.String() }

// LD16 loads a 16-bit value into dst.
//
//	LD rr, nn
//	LD (nn), rr
//	LD rr, (nn)
//	LD SP, HL
//
// Flags affected: none.
type LD16 struct {
	meta
	dst Operand16
	src Source16
}

func (i *LD16) Execute(*CPU) {
	i.dst.Write(i.src.Read())
}

func (i *LD16) String() string { return "LD " + i.dst.String() + "," + i.src.String() }

// LDSpecial loads the interrupt vector or refresh register into A.
//
//	LD A, I
//	LD A, R
//
// Flags affected:
//
//	S - Set if the result is negative.
//	Z - Set if the result is zero.
//	H - Reset.
//	P/V - Set to IFF2.
//	N - Reset.
//	C - Not affected.
type LDSpecial struct {
	meta
	src register8
}

func (i *LDSpecial) Execute(c *CPU) {
	v := i.src.Read()
	c.A.Write(v)
	c.Sign.Write(v&0x80 != 0)
	c.Zero.Write(v == 0)
	c.HalfCarry.Write(false)
	c.ParityOverflow.Write(c.IFF2)
	c.Subtract.Write(false)
}

func (i *LDSpecial) String() string { return "LD A," + i.src.String() }

// PUSH pushes a register pair onto the stack.
//
//	PUSH rr
//	rr = BC, DE, HL, AF, IX, IY
type PUSH struct {
	meta
	src Source16
}

func (i *PUSH) Execute(c *CPU) {
	c.Push(i.src.Read())
}

func (i *PUSH) String() string { return "PUSH " + i.src.String() }

// POP pops a register pair off the stack. On the LR35902 the low nibble
// of F does not exist, so POP AF masks it off.
//
//	POP rr
//	rr = BC, DE, HL, AF, IX, IY
type POP struct {
	meta
	dst  Operand16
	mask uint16
}

func (i *POP) Execute(c *CPU) {
	i.dst.Write(c.Pop() & i.mask)
}

func (i *POP) String() string { return "POP " + i.dst.String() }

// EX exchanges the contents of two 16-bit locations.
//
//	EX DE, HL
//	EX AF, AF'
//	EX (SP), HL
type EX struct {
	meta
	a, b Operand16
}

func (i *EX) Execute(*CPU) {
	a, b := i.a.Read(), i.b.Read()
	i.a.Write(b)
	i.b.Write(a)
}

func (i *EX) String() string { return "EX " + i.a.String() + "," + i.b.String() }

// EXX exchanges BC, DE and HL with their shadow registers.
type EXX struct{ meta }

func (i *EXX) Execute(c *CPU) {
	s := &c.Ext.Shadow
	for _, p := range [][2]*types.RegisterPair{{c.BC, s.BC}, {c.DE, s.DE}, {c.HL, s.HL}} {
		v := p[0].Read()
		p[0].Write(p[1].Read())
		p[1].Write(v)
	}
}

func (i *EXX) String() string { return "EXX" }

// LDHLSP loads SP plus a signed offset into HL.
//
//	LD HL, SP+e
//
// Flags affected:
//
//	Z - Reset.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
type LDHLSP struct {
	meta
	offset immediate8
}

func (i *LDHLSP) Execute(c *CPU) {
	r := addSigned8(c.SP.Read(), i.offset.Read())
	c.HL.Write(r.value)
	c.setFlags(false, false, r.halfCarry, r.carry)
}

func (i *LDHLSP) String() string {
	return "LD HL,SP" + signed(i.offset.Read())
}
