package cpu

import "fmt"

// JP jumps to target if cc is met.
//
//	JP nn
//	JP cc, nn
//	JP (HL)
//	cc = NZ, Z, NC, C, PO, PE, P, M
type JP struct {
	meta
	cc     *Condition
	target Source16
}

func (i *JP) Execute(c *CPU) {
	if i.cc.Met(c) {
		c.PC.Write(i.target.Read())
	}
}

func (i *JP) String() string {
	if i.target.Kind() == KindRegister {
		return withCondition("JP", i.cc, "("+i.target.String()+")")
	}
	return withCondition("JP", i.cc, i.target.String())
}

// JR adds a signed offset to PC if cc is met. The offset is relative to
// the address of the following instruction.
//
//	JR e
//	JR cc, e
//	cc = NZ, Z, NC, C
type JR struct {
	meta
	cc     *Condition
	offset immediate8
}

func (i *JR) Execute(c *CPU) {
	if i.cc.Met(c) {
		c.PC.Write(relative(c.PC.Read(), i.offset.Read()))
	}
}

func (i *JR) String() string { return withCondition("JR", i.cc, signed(i.offset.Read())) }

func relative(pc uint16, e uint8) uint16 {
	return uint16(int32(pc) + int32(int8(e)))
}

// DJNZ decrements B and jumps relative if it is not zero.
//
//	DJNZ e
type DJNZ struct {
	meta
	offset immediate8
}

func (i *DJNZ) Execute(c *CPU) {
	b := c.B.Read() - 1
	c.B.Write(b)
	if b != 0 {
		c.PC.Write(relative(c.PC.Read(), i.offset.Read()))
	}
}

func (i *DJNZ) String() string { return "DJNZ " + signed(i.offset.Read()) }

// CALL pushes the address of the next instruction onto the stack and
// jumps to target if cc is met.
//
//	CALL nn
//	CALL cc, nn
type CALL struct {
	meta
	cc     *Condition
	target immediate16
}

func (i *CALL) Execute(c *CPU) {
	if i.cc.Met(c) {
		c.Push(c.PC.Read())
		c.PC.Write(i.target.Read())
	}
}

func (i *CALL) String() string { return withCondition("CALL", i.cc, i.target.String()) }

// RET pops the return address off the stack if cc is met.
//
//	RET
//	RET cc
type RET struct {
	meta
	cc *Condition
}

func (i *RET) Execute(c *CPU) {
	if i.cc.Met(c) {
		c.PC.Write(c.Pop())
	}
}

func (i *RET) String() string { return withCondition("RET", i.cc, "") }

// RETI returns from an interrupt handler. The LR35902 enables interrupts
// immediately, without the delay EI has. The Z80 restores IFF1 from IFF2.
type RETI struct{ meta }

func (i *RETI) Execute(c *CPU) {
	c.PC.Write(c.Pop())
	if c.variant == LR35902 {
		c.IFF1, c.IFF2 = true, true
		return
	}
	c.IFF1 = c.IFF2
}

func (i *RETI) String() string { return "RETI" }

// RETN returns from a non-maskable interrupt handler, restoring IFF1
// from IFF2.
type RETN struct{ meta }

func (i *RETN) Execute(c *CPU) {
	c.PC.Write(c.Pop())
	c.IFF1 = c.IFF2
}

func (i *RETN) String() string { return "RETN" }

// RST pushes the address of the next instruction onto the stack and
// jumps to one of the eight restart vectors.
//
//	RST n
//	n = 0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38
type RST struct {
	meta
	vector uint16
}

func (i *RST) Execute(c *CPU) {
	c.Push(c.PC.Read())
	c.PC.Write(i.vector)
}

func (i *RST) String() string { return fmt.Sprintf("RST $%02X", i.vector) }
