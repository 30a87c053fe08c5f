package cpu

// setLogical commits the flags of AND, OR and XOR.
func (c *CPU) setLogical(v uint8, halfCarry bool) {
	c.setFlags(v == 0, false, halfCarry, false)
	c.setSignParity(v)
}

// AND performs a bitwise AND of src with A.
//
//	AND n
//
// Flags affected:
//
//	S - Set if the result is negative. (Z80)
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set.
//	P/V - Set if the result has even parity. (Z80)
//	C - Reset.
type AND struct {
	meta
	src Source8
}

func (i *AND) Execute(c *CPU) {
	v := c.A.Read() & i.src.Read()
	c.A.Write(v)
	c.setLogical(v, true)
}

func (i *AND) String() string { return "AND " + i.src.String() }

// OR performs a bitwise OR of src with A.
//
// Flags affected: as AND, with H reset.
type OR struct {
	meta
	src Source8
}

func (i *OR) Execute(c *CPU) {
	v := c.A.Read() | i.src.Read()
	c.A.Write(v)
	c.setLogical(v, false)
}

func (i *OR) String() string { return "OR " + i.src.String() }

// XOR performs a bitwise exclusive OR of src with A.
//
// Flags affected: as AND, with H reset.
type XOR struct {
	meta
	src Source8
}

func (i *XOR) Execute(c *CPU) {
	v := c.A.Read() ^ i.src.Read()
	c.A.Write(v)
	c.setLogical(v, false)
}

func (i *XOR) String() string { return "XOR " + i.src.String() }

// CPL complements A.
//
// Flags affected:
//
//	N - Set.
//	H - Set.
type CPL struct{ meta }

func (i *CPL) Execute(c *CPU) {
	c.A.Write(^c.A.Read())
	c.Subtract.Write(true)
	c.HalfCarry.Write(true)
}

func (i *CPL) String() string { return "CPL" }

// SCF sets the carry flag.
//
// Flags affected:
//
//	N - Reset.
//	H - Reset.
//	C - Set.
type SCF struct{ meta }

func (i *SCF) Execute(c *CPU) {
	c.Subtract.Write(false)
	c.HalfCarry.Write(false)
	c.Carry.Write(true)
}

func (i *SCF) String() string { return "SCF" }

// CCF complements the carry flag.
//
// Flags affected:
//
//	N - Reset.
//	H - Z80: previous carry. LR35902: reset.
//	C - Complemented.
type CCF struct{ meta }

func (i *CCF) Execute(c *CPU) {
	carry := c.Carry.Read()
	c.Subtract.Write(false)
	c.HalfCarry.Write(c.variant == Z80 && carry)
	c.Carry.Write(!carry)
}

func (i *CCF) String() string { return "CCF" }
