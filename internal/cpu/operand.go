package cpu

import (
	"fmt"

	"github.com/thelolagemann/gbz80/internal/types"
)

// Kind tags where an operand's value lives. A few instructions select
// their behaviour by kind.
type Kind uint8

const (
	// KindRegister is a CPU register.
	KindRegister Kind = iota
	// KindImmediate is a constant encoded in the instruction.
	KindImmediate
	// KindIndirect is memory addressed through a register or constant.
	KindIndirect
	// KindIndexed is memory addressed through an index register plus a
	// signed displacement.
	KindIndexed
)

var kindNames = [...]string{"register", "immediate", "indirect", "indexed"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Source8 is a readable 8-bit location.
type Source8 interface {
	Read() uint8
	Kind() Kind
	fmt.Stringer
}

// Operand8 is a readable and writeable 8-bit location.
type Operand8 interface {
	Source8
	Write(v uint8)
}

// Source16 is a readable 16-bit location.
type Source16 interface {
	Read() uint16
	Kind() Kind
	fmt.Stringer
}

// Operand16 is a readable and writeable 16-bit location.
type Operand16 interface {
	Source16
	Write(v uint16)
}

// register8 is an 8-bit register operand.
type register8 struct {
	*types.Register8
	name string
}

func reg8(r *types.Register8, name string) register8 { return register8{r, name} }
func (r register8) Kind() Kind                       { return KindRegister }
func (r register8) String() string                   { return r.name }

// word is a 16-bit storage location, either standalone or a register pair.
type word interface {
	Read() uint16
	Write(v uint16)
}

// register16 is a 16-bit register operand.
type register16 struct {
	word
	name string
}

func reg16(r word, name string) register16 { return register16{r, name} }
func (r register16) Kind() Kind            { return KindRegister }
func (r register16) String() string        { return r.name }

// immediate8 is an 8-bit constant. Writes are discarded.
type immediate8 uint8

func (i immediate8) Read() uint8    { return uint8(i) }
func (i immediate8) Write(uint8)    {}
func (i immediate8) Kind() Kind     { return KindImmediate }
func (i immediate8) String() string { return fmt.Sprintf("$%02X", uint8(i)) }

// immediate16 is a 16-bit constant. Writes are discarded.
type immediate16 uint16

func (i immediate16) Read() uint16   { return uint16(i) }
func (i immediate16) Write(uint16)   {}
func (i immediate16) Kind() Kind     { return KindImmediate }
func (i immediate16) String() string { return fmt.Sprintf("$%04X", uint16(i)) }

// memory8 is a byte of memory whose address is recomputed from addr on
// every access, so a change to the address register or to the memory
// behind it is always observed.
type memory8 struct {
	bus  Bus
	addr Source16
}

func indirect(b Bus, addr Source16) memory8 { return memory8{b, addr} }
func (m memory8) Read() uint8               { return m.bus.Read(m.addr.Read()) }
func (m memory8) Write(v uint8)             { m.bus.Write(m.addr.Read(), v) }
func (m memory8) Kind() Kind                { return KindIndirect }
func (m memory8) String() string            { return "(" + m.addr.String() + ")" }

// memory16 is a little-endian word of memory at an address recomputed on
// every access.
type memory16 struct {
	bus  Bus
	addr Source16
}

func indirect16(b Bus, addr Source16) memory16 { return memory16{b, addr} }
func (m memory16) Read() uint16                { return m.bus.Read16(m.addr.Read()) }
func (m memory16) Write(v uint16)              { m.bus.Write16(m.addr.Read(), v) }
func (m memory16) Kind() Kind                  { return KindIndirect }
func (m memory16) String() string              { return "(" + m.addr.String() + ")" }

// highPage8 is the byte at 0xFF00 plus an 8-bit offset, as addressed by
// the LR35902's LDH and LD (C) forms.
type highPage8 struct {
	bus    Bus
	offset Source8
}

func (h highPage8) address() uint16 { return 0xFF00 + uint16(h.offset.Read()) }
func (h highPage8) Read() uint8     { return h.bus.Read(h.address()) }
func (h highPage8) Write(v uint8)   { h.bus.Write(h.address(), v) }
func (h highPage8) Kind() Kind      { return KindIndirect }
func (h highPage8) String() string {
	if h.offset.Kind() == KindImmediate {
		return fmt.Sprintf("($FF00+$%02X)", h.offset.Read())
	}
	return "($FF00+" + h.offset.String() + ")"
}

// indexed8 is the byte at an index register plus a signed displacement,
// as addressed by the Z80's (IX+d) and (IY+d) forms.
type indexed8 struct {
	bus  Bus
	base Source16
	disp int8
}

func (x indexed8) address() uint16 { return uint16(int32(x.base.Read()) + int32(x.disp)) }
func (x indexed8) Read() uint8     { return x.bus.Read(x.address()) }
func (x indexed8) Write(v uint8)   { x.bus.Write(x.address(), v) }
func (x indexed8) Kind() Kind      { return KindIndexed }
func (x indexed8) String() string {
	if x.disp < 0 {
		return fmt.Sprintf("(%s-$%02X)", x.base, -int(x.disp))
	}
	return fmt.Sprintf("(%s+$%02X)", x.base, x.disp)
}

// stepped8 is the byte addressed by HL, after which HL is incremented or
// decremented, as in the LR35902's LD (HL+) and LD (HL-) forms.
type stepped8 struct {
	bus   Bus
	hl    word
	delta uint16
}

func (s stepped8) Read() uint8 {
	addr := s.hl.Read()
	v := s.bus.Read(addr)
	s.hl.Write(addr + s.delta)
	return v
}

func (s stepped8) Write(v uint8) {
	addr := s.hl.Read()
	s.bus.Write(addr, v)
	s.hl.Write(addr + s.delta)
}

func (s stepped8) Kind() Kind { return KindIndirect }

func (s stepped8) String() string {
	if s.delta == 1 {
		return "(HL+)"
	}
	return "(HL-)"
}
