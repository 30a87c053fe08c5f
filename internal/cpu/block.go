package cpu

// blockOp describes one of the Z80's block transfer, compare and I/O
// instructions. delta steps HL (and DE), and repeat makes the instruction
// re-execute itself by rewinding PC until its counter runs out.
type blockOp struct {
	meta
	name   string
	delta  uint16
	repeat bool
}

func (b *blockOp) String() string { return b.name }

// again rewinds PC onto the instruction so the next Step executes it once
// more.
func (b *blockOp) again(c *CPU) {
	c.PC.Write(c.PC.Read() - b.length)
}

// LDBlock copies (HL) to (DE), steps both, and decrements BC.
//
//	LDI, LDD, LDIR, LDDR
//
// Flags affected:
//
//	H - Reset.
//	P/V - Set if BC is not zero after the decrement.
//	N - Reset.
type LDBlock struct{ blockOp }

func (i *LDBlock) Execute(c *CPU) {
	c.bus.Write(c.DE.Read(), c.bus.Read(c.HL.Read()))
	c.HL.Write(c.HL.Read() + i.delta)
	c.DE.Write(c.DE.Read() + i.delta)
	bc := c.BC.Read() - 1
	c.BC.Write(bc)

	c.HalfCarry.Write(false)
	c.Subtract.Write(false)
	c.ParityOverflow.Write(bc != 0)
	if i.repeat && bc != 0 {
		i.again(c)
	}
}

// CPBlock compares A with (HL), steps HL, and decrements BC. The
// repeating forms stop early once a match is found.
//
//	CPI, CPD, CPIR, CPDR
//
// Flags affected:
//
//	S - Set if A - (HL) is negative.
//	Z - Set if A equals (HL).
//	H - Set if borrow from bit 4.
//	P/V - Set if BC is not zero after the decrement.
//	N - Set.
//	C - Not affected.
type CPBlock struct{ blockOp }

func (i *CPBlock) Execute(c *CPU) {
	r := sub8(c.A.Read(), c.bus.Read(c.HL.Read()), false)
	c.HL.Write(c.HL.Read() + i.delta)
	bc := c.BC.Read() - 1
	c.BC.Write(bc)

	c.Sign.Write(r.sign)
	c.Zero.Write(r.zero)
	c.HalfCarry.Write(r.halfCarry)
	c.ParityOverflow.Write(bc != 0)
	c.Subtract.Write(true)
	if i.repeat && bc != 0 && !r.zero {
		i.again(c)
	}
}

// INBlock reads port (C) into (HL), steps HL, and decrements B.
//
//	INI, IND, INIR, INDR
//
// Flags affected:
//
//	Z - Set if B is zero after the decrement.
//	N - Set.
type INBlock struct{ blockOp }

func (i *INBlock) Execute(c *CPU) {
	c.bus.Write(c.HL.Read(), c.ports.Read(c.BC.Read()))
	c.HL.Write(c.HL.Read() + i.delta)
	b := c.B.Read() - 1
	c.B.Write(b)

	c.Zero.Write(b == 0)
	c.Subtract.Write(true)
	if i.repeat && b != 0 {
		i.again(c)
	}
}

// OUTBlock decrements B, writes (HL) to port (C), and steps HL.
//
//	OUTI, OUTD, OTIR, OTDR
//
// Flags affected: as INBlock.
type OUTBlock struct{ blockOp }

func (i *OUTBlock) Execute(c *CPU) {
	v := c.bus.Read(c.HL.Read())
	b := c.B.Read() - 1
	c.B.Write(b)
	c.ports.Write(c.BC.Read(), v)
	c.HL.Write(c.HL.Read() + i.delta)

	c.Zero.Write(b == 0)
	c.Subtract.Write(true)
	if i.repeat && b != 0 {
		i.again(c)
	}
}
