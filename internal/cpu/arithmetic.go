package cpu

// setArithmetic commits the flags of an 8-bit add or subtract. On the Z80
// the sign is copied and P/V reports signed overflow.
func (c *CPU) setArithmetic(r result, subtract bool) {
	c.setFlags(r.zero, subtract, r.halfCarry, r.carry)
	if c.variant == Z80 {
		c.Sign.Write(r.sign)
		c.ParityOverflow.Write(r.overflow)
	}
}

// ADD8 adds src to A.
//
//	ADD A, n
//	n = A, B, C, D, E, H, L, (HL), (IX+d), #
//
// Flags affected:
//
//	S - Set if the result is negative. (Z80)
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	P/V - Set on overflow. (Z80)
//	C - Set if carry from bit 7.
type ADD8 struct {
	meta
	src Source8
}

func (i *ADD8) Execute(c *CPU) {
	r := add8(c.A.Read(), i.src.Read(), false)
	c.A.Write(r.u8())
	c.setArithmetic(r, false)
}

func (i *ADD8) String() string { return "ADD A," + i.src.String() }

// ADC8 adds src plus the carry flag to A.
//
//	ADC A, n
//
// Flags affected: as ADD8.
type ADC8 struct {
	meta
	src Source8
}

func (i *ADC8) Execute(c *CPU) {
	r := add8(c.A.Read(), i.src.Read(), c.Carry.Read())
	c.A.Write(r.u8())
	c.setArithmetic(r, false)
}

func (i *ADC8) String() string { return "ADC A," + i.src.String() }

// SUB8 subtracts src from A.
//
//	SUB n
//
// Flags affected:
//
//	S - Set if the result is negative. (Z80)
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	P/V - Set on overflow. (Z80)
//	C - Set if borrow.
type SUB8 struct {
	meta
	src Source8
}

func (i *SUB8) Execute(c *CPU) {
	r := sub8(c.A.Read(), i.src.Read(), false)
	c.A.Write(r.u8())
	c.setArithmetic(r, true)
}

func (i *SUB8) String() string { return "SUB " + i.src.String() }

// SBC8 subtracts src plus the carry flag from A.
//
//	SBC A, n
//
// Flags affected: as SUB8.
type SBC8 struct {
	meta
	src Source8
}

func (i *SBC8) Execute(c *CPU) {
	r := sub8(c.A.Read(), i.src.Read(), c.Carry.Read())
	c.A.Write(r.u8())
	c.setArithmetic(r, true)
}

func (i *SBC8) String() string { return "SBC A," + i.src.String() }

// CP compares A with src. This is basically an A - n subtraction
// instruction but the results are thrown away.
//
//	CP n
//
// Flags affected: as SUB8.
type CP struct {
	meta
	src Source8
}

func (i *CP) Execute(c *CPU) {
	c.setArithmetic(sub8(c.A.Read(), i.src.Read(), false), true)
}

func (i *CP) String() string { return "CP " + i.src.String() }

// INC8 increments an 8-bit location.
//
//	INC n
//	n = A, B, C, D, E, H, L, (HL), (IX+d)
//
// Flags affected:
//
//	S - Set if the result is negative. (Z80)
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	P/V - Set if the operand was 0x7F. (Z80)
//	C - Not affected.
type INC8 struct {
	meta
	dst Operand8
}

func (i *INC8) Execute(c *CPU) {
	v := i.dst.Read()
	r := add8(v, 1, false)
	i.dst.Write(r.u8())
	c.Zero.Write(r.zero)
	c.Subtract.Write(false)
	c.HalfCarry.Write(r.halfCarry)
	if c.variant == Z80 {
		c.Sign.Write(r.sign)
		c.ParityOverflow.Write(v == 0x7F)
	}
}

func (i *INC8) String() string { return "INC " + i.dst.String() }

// DEC8 decrements an 8-bit location.
//
//	DEC n
//
// Flags affected:
//
//	S - Set if the result is negative. (Z80)
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	P/V - Set if the operand was 0x80. (Z80)
//	C - Not affected.
type DEC8 struct {
	meta
	dst Operand8
}

func (i *DEC8) Execute(c *CPU) {
	v := i.dst.Read()
	r := sub8(v, 1, false)
	i.dst.Write(r.u8())
	c.Zero.Write(r.zero)
	c.Subtract.Write(true)
	c.HalfCarry.Write(r.halfCarry)
	if c.variant == Z80 {
		c.Sign.Write(r.sign)
		c.ParityOverflow.Write(v == 0x80)
	}
}

func (i *DEC8) String() string { return "DEC " + i.dst.String() }

// INC16 increments a register pair. No flags are affected.
type INC16 struct {
	meta
	dst Operand16
}

func (i *INC16) Execute(*CPU)   { i.dst.Write(i.dst.Read() + 1) }
func (i *INC16) String() string { return "INC " + i.dst.String() }

// DEC16 decrements a register pair. No flags are affected.
type DEC16 struct {
	meta
	dst Operand16
}

func (i *DEC16) Execute(*CPU)   { i.dst.Write(i.dst.Read() - 1) }
func (i *DEC16) String() string { return "DEC " + i.dst.String() }

// ADD16 adds src to HL (or IX, IY).
//
//	ADD HL, rr
//	rr = BC, DE, HL, SP
//
// Flags affected:
//
//	Z - Not affected.
//	N - Reset.
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
type ADD16 struct {
	meta
	dst Operand16
	src Source16
}

func (i *ADD16) Execute(c *CPU) {
	r := add16(i.dst.Read(), i.src.Read(), false)
	i.dst.Write(r.value)
	c.Subtract.Write(false)
	c.HalfCarry.Write(r.halfCarry)
	c.Carry.Write(r.carry)
}

func (i *ADD16) String() string { return "ADD " + i.dst.String() + "," + i.src.String() }

// ADC16 adds src plus the carry flag to HL.
//
//	ADC HL, rr
//
// Flags affected:
//
//	S - Set if the result is negative.
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 11.
//	P/V - Set on overflow.
//	C - Set if carry from bit 15.
type ADC16 struct {
	meta
	dst Operand16
	src Source16
}

func (i *ADC16) Execute(c *CPU) {
	r := add16(i.dst.Read(), i.src.Read(), c.Carry.Read())
	i.dst.Write(r.value)
	c.setArithmetic(r, false)
}

func (i *ADC16) String() string { return "ADC " + i.dst.String() + "," + i.src.String() }

// SBC16 subtracts src plus the carry flag from HL.
//
//	SBC HL, rr
//
// Flags affected: as ADC16, with N set.
type SBC16 struct {
	meta
	dst Operand16
	src Source16
}

func (i *SBC16) Execute(c *CPU) {
	r := sub16(i.dst.Read(), i.src.Read(), c.Carry.Read())
	i.dst.Write(r.value)
	c.setArithmetic(r, true)
}

func (i *SBC16) String() string { return "SBC " + i.dst.String() + "," + i.src.String() }

// ADDSP adds a signed offset to SP.
//
//	ADD SP, e
//
// Flags affected:
//
//	Z - Reset.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
type ADDSP struct {
	meta
	offset immediate8
}

func (i *ADDSP) Execute(c *CPU) {
	r := addSigned8(c.SP.Read(), i.offset.Read())
	c.SP.Write(r.value)
	c.setFlags(false, false, r.halfCarry, r.carry)
}

func (i *ADDSP) String() string { return "ADD SP," + i.offset.String() }

// NEG negates A.
//
// Flags affected:
//
//	S - Set if the result is negative.
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	P/V - Set if A was 0x80.
//	C - Set if A was not 0x00.
type NEG struct{ meta }

func (i *NEG) Execute(c *CPU) {
	r := sub8(0, c.A.Read(), false)
	c.A.Write(r.u8())
	c.setArithmetic(r, true)
}

func (i *NEG) String() string { return "NEG" }

// DAA adjusts A to a binary coded decimal after an addition or
// subtraction, using N and H to tell which one it followed.
//
// Flags affected:
//
//	S - Set if the result is negative. (Z80)
//	Z - Set if result is zero.
//	N - Not affected.
//	H - Z80: set if the adjustment carried or borrowed from bit 3.
//	    LR35902: reset.
//	P/V - Set if the result has even parity. (Z80)
//	C - Set if the adjustment produced a carry.
type DAA struct{ meta }

func (i *DAA) Execute(c *CPU) {
	a := c.A.Read()
	carry := c.Carry.Read()
	half := c.HalfCarry.Read()
	sub := c.Subtract.Read()

	if c.variant == LR35902 {
		if !sub {
			if carry || a > 0x99 {
				a += 0x60
				carry = true
			}
			if half || a&0x0F > 0x09 {
				a += 0x06
			}
		} else {
			if carry {
				a -= 0x60
			}
			if half {
				a -= 0x06
			}
		}
		c.A.Write(a)
		c.setFlags(a == 0, sub, false, carry)
		return
	}

	var diff uint8
	if half || a&0x0F > 0x09 {
		diff |= 0x06
	}
	if carry || a > 0x99 {
		diff |= 0x60
		carry = true
	}
	result := a + diff
	if sub {
		result = a - diff
		half = half && a&0x0F < 0x06
	} else {
		half = a&0x0F > 0x09
	}
	c.A.Write(result)
	c.setFlags(result == 0, sub, half, carry)
	c.setSignParity(result)
}

func (i *DAA) String() string { return "DAA" }
