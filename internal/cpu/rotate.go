package cpu

// shiftOp is one of the CB-prefixed rotate and shift operations, in
// opcode order.
type shiftOp uint8

const (
	opRLC shiftOp = iota
	opRRC
	opRL
	opRR
	opSLA
	opSRA
	opSLL
	opSRL
	opSWAP
)

var shiftNames = [...]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL", "SWAP"}

func (op shiftOp) String() string { return shiftNames[op] }

// apply returns the shifted value and the bit shifted out into carry.
func (op shiftOp) apply(v uint8, carry bool) (uint8, bool) {
	switch op {
	case opRLC:
		return v<<1 | v>>7, v&0x80 != 0
	case opRRC:
		return v>>1 | v<<7, v&0x01 != 0
	case opRL:
		return v<<1 | uint8(b2u(carry)), v&0x80 != 0
	case opRR:
		return v>>1 | uint8(b2u(carry))<<7, v&0x01 != 0
	case opSLA:
		return v << 1, v&0x80 != 0
	case opSRA:
		return v>>1 | v&0x80, v&0x01 != 0
	case opSLL:
		// undocumented, shifts a 1 into bit 0
		return v<<1 | 0x01, v&0x80 != 0
	case opSRL:
		return v >> 1, v&0x01 != 0
	case opSWAP:
		return v<<4 | v>>4, false
	}
	panic("cpu: invalid shift op")
}

// RotateA rotates A, as the unprefixed RLCA, RRCA, RLA and RRA do.
//
// Flags affected:
//
//	S - Not affected. (Z80)
//	Z - Z80: not affected. LR35902: reset.
//	N - Reset.
//	H - Reset.
//	P/V - Not affected. (Z80)
//	C - Contains the bit shifted out.
//
// The LR35902 manual documents Z as set if the result is zero. The
// hardware resets it, and so does this implementation.
type RotateA struct {
	meta
	op shiftOp
}

func (i *RotateA) Execute(c *CPU) {
	v, carry := i.op.apply(c.A.Read(), c.Carry.Read())
	c.A.Write(v)
	if c.variant == LR35902 {
		c.Zero.Write(false)
	}
	c.Subtract.Write(false)
	c.HalfCarry.Write(false)
	c.Carry.Write(carry)
}

func (i *RotateA) String() string { return i.op.String() + "A" }

// Shift rotates or shifts an 8-bit location.
//
//	RLC n, RRC n, RL n, RR n, SLA n, SRA n, SLL n, SRL n, SWAP n
//	n = A, B, C, D, E, H, L, (HL), (IX+d)
//
// Flags affected:
//
//	S - Set if the result is negative. (Z80)
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	P/V - Set if the result has even parity. (Z80)
//	C - Contains the bit shifted out. Reset by SWAP.
type Shift struct {
	meta
	op  shiftOp
	dst Operand8
}

func (i *Shift) Execute(c *CPU) {
	v, carry := i.op.apply(i.dst.Read(), c.Carry.Read())
	i.dst.Write(v)
	c.setFlags(v == 0, false, false, carry)
	c.setSignParity(v)
}

func (i *Shift) String() string { return i.op.String() + " " + i.dst.String() }

// RLD rotates the low nibble of A and the byte at (HL) left by one nibble:
// the low nibble of (HL) moves to its high nibble, the high nibble of (HL)
// to the low nibble of A, and the low nibble of A to the low nibble of (HL).
//
// Flags affected:
//
//	S - Set if A is negative.
//	Z - Set if A is zero.
//	H - Reset.
//	P/V - Set if A has even parity.
//	N - Reset.
//	C - Not affected.
type RLD struct {
	meta
	mem Operand8
}

func (i *RLD) Execute(c *CPU) {
	a, m := c.A.Read(), i.mem.Read()
	i.mem.Write(m<<4 | a&0x0F)
	c.A.Write(a&0xF0 | m>>4)
	c.rotateDigitFlags()
}

func (i *RLD) String() string { return "RLD" }

// RRD is the right-rotating counterpart of RLD.
type RRD struct {
	meta
	mem Operand8
}

func (i *RRD) Execute(c *CPU) {
	a, m := c.A.Read(), i.mem.Read()
	i.mem.Write(a<<4 | m>>4)
	c.A.Write(a&0xF0 | m&0x0F)
	c.rotateDigitFlags()
}

func (i *RRD) String() string { return "RRD" }

func (c *CPU) rotateDigitFlags() {
	a := c.A.Read()
	c.Zero.Write(a == 0)
	c.Subtract.Write(false)
	c.HalfCarry.Write(false)
	c.setSignParity(a)
}
