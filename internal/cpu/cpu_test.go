package cpu

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/gbz80/internal/bus"
	"github.com/thelolagemann/gbz80/internal/ram"
	"github.com/thelolagemann/gbz80/internal/types"
	"github.com/thelolagemann/gbz80/pkg/log"
)

// newTestCPU returns a CPU backed by 64K of RAM holding program at 0x0000.
func newTestCPU(v Variant, program ...uint8) *CPU {
	b := bus.New()
	mem := ram.NewRAM(0x0000, 0xFFFF)
	mem.LoadData(0x0000, program)
	b.Attach("ram", mem)
	return New(v, b)
}

// load writes data to the CPU's memory starting at address.
func load(c *CPU, address uint16, data ...uint8) {
	for i, v := range data {
		c.bus.Write(address+uint16(i), v)
	}
}

// testInstruction decodes program on a fresh CPU of variant v, checks its
// disassembly against name and hands the CPU to fn.
func testInstruction(t *testing.T, v Variant, name string, program []uint8, fn func(t *testing.T, c *CPU)) {
	t.Helper()
	t.Run(v.String()+"/"+name, func(t *testing.T) {
		c := newTestCPU(v, program...)
		instruction := c.Decode(0)
		require.NotNil(t, instruction, "%02X did not decode", program)
		assert.Equal(t, name, instruction.String())
		fn(t, c)
	})
}

func TestNew_FlagLayout(t *testing.T) {
	t.Run("Z80", func(t *testing.T) {
		c := New(Z80, bus.New())
		for flag, want := range map[*types.Flag]uint8{
			c.Sign: 0x80, c.Zero: 0x40, c.HalfCarry: 0x10,
			c.ParityOverflow: 0x04, c.Subtract: 0x02, c.Carry: 0x01,
		} {
			c.F.Write(0)
			flag.Write(true)
			assert.Equal(t, want, c.F.Read())
		}
		assert.NotNil(t, c.Ext)
	})
	t.Run("LR35902", func(t *testing.T) {
		c := New(LR35902, bus.New())
		for flag, want := range map[*types.Flag]uint8{
			c.Zero: 0x80, c.Subtract: 0x40, c.HalfCarry: 0x20, c.Carry: 0x10,
		} {
			c.F.Write(0)
			flag.Write(true)
			assert.Equal(t, want, c.F.Read())
		}
		assert.Nil(t, c.Sign)
		assert.Nil(t, c.ParityOverflow)
		assert.Nil(t, c.Ext)
	})
	t.Run("invalid", func(t *testing.T) {
		assert.Panics(t, func() { New(Both, bus.New()) })
		assert.Panics(t, func() { New(Z80, nil) })
	})
}

func TestCPU_PushPop(t *testing.T) {
	for _, v := range []Variant{Z80, LR35902} {
		c := newTestCPU(v)
		c.SetStackPointer(0xFFFE)

		c.Push(0x1234)
		assert.Equal(t, uint16(0xFFFC), c.SP.Read())
		assert.Equal(t, uint8(0x34), c.bus.Read(0xFFFC))
		assert.Equal(t, uint8(0x12), c.bus.Read(0xFFFD))

		assert.Equal(t, uint16(0x1234), c.Pop())
		assert.Equal(t, uint16(0xFFFE), c.SP.Read())
	}
}

func TestCPU_Setters(t *testing.T) {
	c := newTestCPU(LR35902)
	c.SetAccumulator(0x42)
	c.SetProgramCounter(0x0150)
	c.SetStackPointer(0xDFFF)

	assert.Equal(t, uint8(0x42), c.A.Read())
	assert.Equal(t, uint16(0x0150), c.PC.Read())
	assert.Equal(t, uint16(0xDFFF), c.SP.Read())
}

func TestCPU_Step(t *testing.T) {
	// LD BC, $1234; INC B
	c := newTestCPU(Z80, 0x01, 0x34, 0x12, 0x04)

	instruction := c.Step()
	require.IsType(t, &LD16{}, instruction)
	assert.Equal(t, uint16(3), instruction.Length())
	assert.Equal(t, uint16(0x0003), c.PC.Read())
	assert.Equal(t, uint16(0x1234), c.BC.Read())

	require.IsType(t, &INC8{}, c.Step())
	assert.Equal(t, uint8(0x13), c.B.Read())
	assert.Equal(t, uint16(0x0004), c.PC.Read())
}

func TestCPU_UnrecognizedOpcode(t *testing.T) {
	var out bytes.Buffer
	b := bus.New()
	mem := ram.NewRAM(0x0000, 0xFFFF)
	mem.LoadData(0x0100, []byte{0xD3, 0x00})
	b.Attach("ram", mem)

	c := New(LR35902, b, WithLogger(log.NewWithWriter(&out, logrus.InfoLevel)))
	c.SetProgramCounter(0x0100)

	assert.Nil(t, c.Step())
	assert.Equal(t, uint16(0x0101), c.PC.Read())
	assert.Contains(t, out.String(), "unrecognized opcode")
	assert.Contains(t, out.String(), "pc=0100")
	assert.Contains(t, out.String(), "opcode=D3")

	// emulation continues with the next byte
	assert.IsType(t, &NOP{}, c.Step())
}

func TestCPU_DecodeIsQuiet(t *testing.T) {
	var out bytes.Buffer
	b := bus.New()
	mem := ram.NewRAM(0x0000, 0xFFFF)
	mem.LoadData(0x0000, []byte{0xD3, 0xDB, 0xDD})
	b.Attach("ram", mem)

	c := New(LR35902, b, WithLogger(log.NewWithWriter(&out, logrus.DebugLevel)))
	for address := uint16(0); address < 3; address++ {
		assert.Nil(t, c.Decode(address))
	}
	assert.Empty(t, out.String(), "disassembly does not log")
	assert.Equal(t, uint64(0), c.Steps())
}

func TestCPU_Steps(t *testing.T) {
	// NOP; HALT; (subroutine) LD A,$99; RET
	c := newTestCPU(LR35902, 0x00, 0x76, 0x00, 0x00, 0x3E, 0x99, 0xC9)
	c.SetStackPointer(0xFFFE)

	_, found := RunUntil[*HALT](c, 10)
	require.True(t, found)
	assert.Equal(t, uint64(2), c.Steps())

	c.Step()
	assert.Equal(t, uint64(3), c.Steps(), "halted steps still count")

	c.Resume()
	require.NoError(t, c.CallSubroutine(0x0004))
	assert.Equal(t, uint64(5), c.Steps())
}

func TestCPU_DeferredInterrupts(t *testing.T) {
	t.Run("EI", func(t *testing.T) {
		// EI; NOP; NOP
		c := newTestCPU(LR35902, 0xFB, 0x00, 0x00)

		require.IsType(t, &EI{}, c.Step())
		assert.False(t, c.IFF1)
		assert.False(t, c.IFF2)
		assert.True(t, c.Pending())

		require.IsType(t, &NOP{}, c.Step())
		assert.True(t, c.IFF1)
		assert.True(t, c.IFF2)
		assert.False(t, c.Pending())
	})
	t.Run("DI", func(t *testing.T) {
		// DI; NOP
		c := newTestCPU(Z80, 0xF3, 0x00)
		c.IFF1, c.IFF2 = true, true

		c.Step()
		assert.True(t, c.IFF1)

		c.Step()
		assert.False(t, c.IFF1)
		assert.False(t, c.IFF2)
	})
	t.Run("unrecognized opcode does not consume", func(t *testing.T) {
		// EI; (invalid); NOP
		c := newTestCPU(LR35902, 0xFB, 0xD3, 0x00)

		c.Step()
		assert.Nil(t, c.Step())
		assert.False(t, c.IFF1)

		c.Step()
		assert.True(t, c.IFF1)
	})
	t.Run("EI then DI", func(t *testing.T) {
		// EI; DI; NOP
		c := newTestCPU(Z80, 0xFB, 0xF3, 0x00)

		c.Step()
		c.Step()
		assert.True(t, c.IFF1, "EI takes effect after DI executes")
		c.Step()
		assert.False(t, c.IFF1)
	})
}

func TestCPU_Halt(t *testing.T) {
	// HALT; NOP
	c := newTestCPU(LR35902, 0x76, 0x00)

	require.IsType(t, &HALT{}, c.Step())
	assert.True(t, c.Halted())
	assert.Equal(t, uint16(0x0001), c.PC.Read())

	// no further fetching while halted
	assert.IsType(t, &HALT{}, c.Step())
	assert.Equal(t, uint16(0x0001), c.PC.Read())

	c.Resume()
	assert.False(t, c.Halted())
	assert.IsType(t, &NOP{}, c.Step())
}

func TestCPU_Stop(t *testing.T) {
	c := newTestCPU(LR35902, 0x10, 0x00)

	require.IsType(t, &STOP{}, c.Step())
	assert.Equal(t, uint16(0x0002), c.PC.Read())
	assert.True(t, c.Halted())
	assert.IsType(t, &STOP{}, c.Step())
}

func TestCPU_RefreshRegister(t *testing.T) {
	c := newTestCPU(Z80, 0x00, 0x00)
	c.Ext.R.Write(0xFF)

	c.Step()
	assert.Equal(t, uint8(0x80), c.Ext.R.Read(), "bit 7 of R is preserved")
	c.Step()
	assert.Equal(t, uint8(0x81), c.Ext.R.Read())
}

func TestCPU_SaveLoad(t *testing.T) {
	for _, v := range []Variant{Z80, LR35902} {
		c := newTestCPU(v, 0xFB)
		c.BC.Write(0x1234)
		c.DE.Write(0x5678)
		c.HL.Write(0x9ABC)
		c.AF.Write(0xDEF0)
		c.SetStackPointer(0xFFF0)
		c.Step()
		if v == Z80 {
			c.Ext.IX.Write(0x1111)
			c.Ext.IY.Write(0x2222)
			c.Ext.Shadow.HL.Write(0x3333)
			c.Ext.IM = 2
		}

		s := types.NewState()
		c.Save(s)

		restored := newTestCPU(v)
		restored.Load(types.StateFromBytes(s.Bytes()))
		assert.Equal(t, c.String(), restored.String())
		assert.Equal(t, c.F.Read(), restored.F.Read())
		assert.True(t, restored.Pending())
		if v == Z80 {
			assert.Equal(t, uint16(0x3333), restored.Ext.Shadow.HL.Read())
			assert.Equal(t, uint8(2), restored.Ext.IM)
		}
	}
}
