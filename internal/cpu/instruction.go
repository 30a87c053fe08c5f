package cpu

import "fmt"

// Instruction is a decoded instruction with its operands bound. It is
// created fresh by Decode, executed once by Step and then discarded.
type Instruction interface {
	// Execute runs the instruction against c. PC already points past the
	// instruction when Execute is called.
	Execute(c *CPU)
	// Length is the number of bytes the instruction is encoded in.
	Length() uint16
	// Variants reports the variants the instruction is defined for.
	Variants() Variant
	fmt.Stringer

	bind(length uint16, variants Variant)
}

// meta is embedded by every instruction type and filled in by the decoder
// once all of the instruction's bytes have been read.
type meta struct {
	length   uint16
	variants Variant
}

func (m *meta) bind(length uint16, variants Variant) {
	m.length = length
	m.variants = variants
}

func (m *meta) Length() uint16 {
	return m.length
}

func (m *meta) Variants() Variant {
	return m.variants
}

// Condition gates JP, JR, CALL and RET on the value of a flag.
type Condition struct {
	name   string
	flag   func(c *CPU) bool
	expect bool
}

func (cc *Condition) String() string {
	return cc.name
}

// Met reports whether the condition holds. A nil condition always holds.
func (cc *Condition) Met(c *CPU) bool {
	return cc == nil || cc.flag(c) == cc.expect
}

var conditions = [8]*Condition{
	{"NZ", func(c *CPU) bool { return c.Zero.Read() }, false},
	{"Z", func(c *CPU) bool { return c.Zero.Read() }, true},
	{"NC", func(c *CPU) bool { return c.Carry.Read() }, false},
	{"C", func(c *CPU) bool { return c.Carry.Read() }, true},
	{"PO", func(c *CPU) bool { return c.ParityOverflow.Read() }, false},
	{"PE", func(c *CPU) bool { return c.ParityOverflow.Read() }, true},
	{"P", func(c *CPU) bool { return c.Sign.Read() }, false},
	{"M", func(c *CPU) bool { return c.Sign.Read() }, true},
}

// withCondition formats a mnemonic with an optional condition prepended
// to its operands.
func withCondition(name string, cc *Condition, operands string) string {
	switch {
	case cc == nil && operands == "":
		return name
	case cc == nil:
		return name + " " + operands
	case operands == "":
		return name + " " + cc.name
	}
	return name + " " + cc.name + "," + operands
}

// signed formats an 8-bit displacement as an explicit offset, e.g. +$05.
func signed(e uint8) string {
	if int8(e) < 0 {
		return fmt.Sprintf("-$%02X", -int(int8(e)))
	}
	return fmt.Sprintf("+$%02X", e)
}
