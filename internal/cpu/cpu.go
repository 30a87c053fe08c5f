// Package cpu provides an instruction-level emulation of the Zilog Z80
// and of its Game Boy derivative, the Sharp LR35902.
//
// Each call to Step fetches the opcode at PC, decodes it into an
// Instruction with its operands already resolved, advances PC by the
// instruction's length and executes it. Instructions are shared between
// the two variants wherever the hardware agrees, and consult the CPU's
// variant where their flag behaviour differs.
package cpu

import (
	"fmt"

	"github.com/thelolagemann/gbz80/internal/bus"
	"github.com/thelolagemann/gbz80/internal/types"
	"github.com/thelolagemann/gbz80/pkg/log"
)

// Bus is the memory interface the CPU reads opcodes and operands from.
// *bus.Bus satisfies it.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Read16(address uint16) uint16
	Write16(address uint16, value uint16)
}

type mode = uint8

const (
	// ModeNormal is the normal CPU mode.
	ModeNormal mode = iota
	// ModeHalt is entered by HALT. No instructions are fetched until Resume.
	ModeHalt
	// ModeStop is entered by STOP on the LR35902.
	ModeStop
)

// Registers contains the 8-bit registers, as well as the 16-bit register
// pairs composed from them.
type Registers struct {
	A types.Register8
	F types.Register8
	B types.Register8
	C types.Register8
	D types.Register8
	E types.Register8
	H types.Register8
	L types.Register8

	AF *types.RegisterPair
	BC *types.RegisterPair
	DE *types.RegisterPair
	HL *types.RegisterPair
}

func (r *Registers) pair() {
	r.AF = types.NewRegisterPair(&r.A, &r.F)
	r.BC = types.NewRegisterPair(&r.B, &r.C)
	r.DE = types.NewRegisterPair(&r.D, &r.E)
	r.HL = types.NewRegisterPair(&r.H, &r.L)
}

// Extended holds the registers only the Z80 has: the shadow register
// set, the index registers, and the interrupt vector and refresh registers.
type Extended struct {
	// Shadow is the alternate register set swapped in by EX AF,AF' and EXX.
	Shadow Registers

	IXH, IXL types.Register8
	IYH, IYL types.Register8
	IX, IY   *types.RegisterPair

	I types.Register8
	R types.Register8

	// IM is the interrupt mode selected by the IM instruction.
	IM uint8
}

// CPU represents an emulated processor of one Variant.
type CPU struct {
	Registers

	// SP is the stack pointer, it points to the top of the stack.
	SP types.Register16
	// PC is the program counter, it points to the next instruction to be executed.
	PC types.Register16

	// Ext holds the Z80-only registers, and is nil for the LR35902.
	Ext *Extended

	Zero      *types.Flag
	Subtract  *types.Flag
	HalfCarry *types.Flag
	Carry     *types.Flag
	// Sign and ParityOverflow exist only on the Z80, and are nil otherwise.
	Sign           *types.Flag
	ParityOverflow *types.Flag

	// IFF1 and IFF2 are the interrupt enable flip-flops. On the LR35902
	// both track the IME flag.
	IFF1, IFF2 bool

	variant   Variant
	interrupt interruptContext
	mode      mode
	steps     uint64

	bus   Bus
	ports Bus
	log   log.Logger

	// operands for the register encodings used by the decoder
	r8  [8]Operand8
	rp  [4]Operand16 // BC, DE, HL, SP
	rp2 [4]Operand16 // BC, DE, HL, AF
}

// Opt is a function that configures a CPU.
type Opt func(c *CPU)

// WithLogger sets the logger used to report unrecognized opcodes.
func WithLogger(l log.Logger) Opt {
	return func(c *CPU) {
		c.log = l
	}
}

// WithPorts sets the bus the Z80's IN and OUT instructions address.
// Without it, port reads return 0 and port writes are dropped.
func WithPorts(ports Bus) Opt {
	return func(c *CPU) {
		c.ports = ports
	}
}

// New creates a CPU of the given variant reading and writing through b.
// The bus is not owned by the CPU and may be shared with other devices.
func New(variant Variant, b Bus, opts ...Opt) *CPU {
	if variant != Z80 && variant != LR35902 {
		panic(fmt.Sprintf("cpu: invalid variant %d", variant))
	}
	if b == nil {
		panic("cpu: nil bus")
	}

	c := &CPU{
		variant: variant,
		bus:     b,
		log:     log.NewNullLogger(),
	}
	c.pair()

	switch variant {
	case Z80:
		c.Sign = types.NewFlag(&c.F, 7)
		c.Zero = types.NewFlag(&c.F, 6)
		c.HalfCarry = types.NewFlag(&c.F, 4)
		c.ParityOverflow = types.NewFlag(&c.F, 2)
		c.Subtract = types.NewFlag(&c.F, 1)
		c.Carry = types.NewFlag(&c.F, 0)

		c.Ext = &Extended{}
		c.Ext.Shadow.pair()
		c.Ext.IX = types.NewRegisterPair(&c.Ext.IXH, &c.Ext.IXL)
		c.Ext.IY = types.NewRegisterPair(&c.Ext.IYH, &c.Ext.IYL)
	case LR35902:
		c.Zero = types.NewFlag(&c.F, 7)
		c.Subtract = types.NewFlag(&c.F, 6)
		c.HalfCarry = types.NewFlag(&c.F, 5)
		c.Carry = types.NewFlag(&c.F, 4)
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.ports == nil {
		c.ports = bus.New()
	}

	c.r8 = [8]Operand8{
		reg8(&c.B, "B"), reg8(&c.C, "C"), reg8(&c.D, "D"), reg8(&c.E, "E"),
		reg8(&c.H, "H"), reg8(&c.L, "L"), indirect(c.bus, reg16(c.HL, "HL")), reg8(&c.A, "A"),
	}
	c.rp = [4]Operand16{reg16(c.BC, "BC"), reg16(c.DE, "DE"), reg16(c.HL, "HL"), reg16(&c.SP, "SP")}
	c.rp2 = [4]Operand16{c.rp[0], c.rp[1], c.rp[2], reg16(c.AF, "AF")}

	return c
}

// Variant returns the variant the CPU emulates.
func (c *CPU) Variant() Variant {
	return c.variant
}

// Bus returns the memory bus the CPU is attached to.
func (c *CPU) Bus() Bus {
	return c.bus
}

// Steps returns how many times Step has been called since New,
// including calls made by RunUntil and CallSubroutine.
func (c *CPU) Steps() uint64 {
	return c.steps
}

// Halted reports whether the CPU is waiting in HALT or STOP.
func (c *CPU) Halted() bool {
	return c.mode != ModeNormal
}

// Resume leaves HALT or STOP mode. Interrupt dispatch is not emulated,
// so the host decides when a halted CPU continues.
func (c *CPU) Resume() {
	c.mode = ModeNormal
}

// SetStackPointer sets SP.
func (c *CPU) SetStackPointer(v uint16) {
	c.SP.Write(v)
}

// SetProgramCounter sets PC.
func (c *CPU) SetProgramCounter(v uint16) {
	c.PC.Write(v)
}

// SetAccumulator sets A.
func (c *CPU) SetAccumulator(v uint8) {
	c.A.Write(v)
}

// Push pushes a 16 bit value onto the stack, high byte first, leaving
// the low byte at the lower address.
func (c *CPU) Push(value uint16) {
	c.bus.Write(c.SP.Read()-1, uint8(value>>8))
	c.bus.Write(c.SP.Read()-2, uint8(value))
	c.SP.Write(c.SP.Read() - 2)
}

// Pop pops a 16 bit value off the stack.
func (c *CPU) Pop() uint16 {
	low := uint16(c.bus.Read(c.SP.Read()))
	high := uint16(c.bus.Read(c.SP.Read() + 1))
	c.SP.Write(c.SP.Read() + 2)
	return high<<8 | low
}

// Step executes a single instruction and returns it. It returns nil when
// the opcode at PC is not recognized: the opcode is logged, PC advances
// by one byte and emulation may continue.
//
// An EI or DI executed by this step takes effect only once the following
// step has executed its instruction.
func (c *CPU) Step() Instruction {
	c.steps++
	switch c.mode {
	case ModeHalt:
		return halted
	case ModeStop:
		return stopped
	}

	pc := c.PC.Read()
	instruction := c.Decode(pc)
	if instruction == nil {
		log.WithFields(c.log, log.Fields{
			"pc":      fmt.Sprintf("%04X", pc),
			"opcode":  fmt.Sprintf("%02X", c.bus.Read(pc)),
			"variant": c.variant,
		}).Errorf("cpu: unrecognized opcode")
		c.PC.Write(pc + 1)
		return nil
	}

	if c.Ext != nil {
		// the refresh counter only counts within its low 7 bits
		r := c.Ext.R.Read()
		c.Ext.R.Write(r&0x80 | (r+1)&0x7F)
	}

	pending := c.interrupt.take()
	c.PC.Write(pc + instruction.Length())
	instruction.Execute(c)
	c.interrupt.apply(c, pending)

	return instruction
}

// Decode decodes the instruction at address without executing it. It
// returns nil if the bytes at address do not form an instruction this
// CPU's variant recognizes. Only Step reports unrecognized opcodes, so
// disassembling data is quiet.
func (c *CPU) Decode(address uint16) Instruction {
	d := &decoder{c: c, pc: address}
	return d.decode()
}

// setFlags sets the four flags both variants share.
func (c *CPU) setFlags(zero, subtract, halfCarry, carry bool) {
	c.Zero.Write(zero)
	c.Subtract.Write(subtract)
	c.HalfCarry.Write(halfCarry)
	c.Carry.Write(carry)
}

// setSignParity sets the Z80's sign flag and, as parity, its P/V flag
// from value. It does nothing on the LR35902.
func (c *CPU) setSignParity(value uint8) {
	if c.variant != Z80 {
		return
	}
	c.Sign.Write(value&types.Bit7 != 0)
	c.ParityOverflow.Write(parity(value))
}

func (c *CPU) String() string {
	s := fmt.Sprintf("A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X",
		c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L, c.SP, c.PC)
	if c.Ext != nil {
		s += fmt.Sprintf(" IX:%04X IY:%04X", c.Ext.IX.Read(), c.Ext.IY.Read())
	}
	return s
}
