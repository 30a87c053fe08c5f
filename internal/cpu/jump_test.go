package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstruction_JR(t *testing.T) {
	for _, v := range []Variant{Z80, LR35902} {
		c := newTestCPU(v)
		for e := -128; e < 128; e++ {
			for _, zero := range []bool{false, true} {
				// JR NZ,e at 0x1000
				load(c, 0x1000, 0x20, uint8(int8(e)))
				c.SetProgramCounter(0x1000)
				c.Zero.Write(zero)

				instruction := c.Step()
				require.IsType(t, &JR{}, instruction)

				want := uint16(0x1002)
				if !zero {
					want = uint16(0x1002 + e)
				}
				assert.Equal(t, want, c.PC.Read(), "%s e=%d zero=%v", v, e, zero)
			}
		}
	}
}

func TestInstruction_Jumps(t *testing.T) {
	for _, v := range []Variant{Z80, LR35902} {
		// 0xC3 - JP nn
		testInstruction(t, v, "JP $1234", []uint8{0xC3, 0x34, 0x12}, func(t *testing.T, c *CPU) {
			c.Step()
			assert.Equal(t, uint16(0x1234), c.PC.Read())
		})
		// 0xCA - JP Z,nn
		testInstruction(t, v, "JP Z,$1234", []uint8{0xCA, 0x34, 0x12}, func(t *testing.T, c *CPU) {
			c.Step()
			assert.Equal(t, uint16(0x0003), c.PC.Read())
		})
		// 0xE9 - JP (HL)
		testInstruction(t, v, "JP (HL)", []uint8{0xE9}, func(t *testing.T, c *CPU) {
			c.HL.Write(0x4000)
			c.Step()
			assert.Equal(t, uint16(0x4000), c.PC.Read())
		})
		// 0xFF - RST $38
		testInstruction(t, v, "RST $38", []uint8{0xFF}, func(t *testing.T, c *CPU) {
			c.SetStackPointer(0xFFFE)
			c.Step()
			assert.Equal(t, uint16(0x0038), c.PC.Read())
			assert.Equal(t, uint16(0x0001), c.Pop())
		})
	}

	testInstruction(t, Z80, "JP M,$1234", []uint8{0xFA, 0x34, 0x12}, func(t *testing.T, c *CPU) {
		c.Sign.Write(true)
		c.Step()
		assert.Equal(t, uint16(0x1234), c.PC.Read())
	})
	testInstruction(t, Z80, "DJNZ -$02", []uint8{0x10, 0xFE}, func(t *testing.T, c *CPU) {
		c.B.Write(2)
		c.Step()
		assert.Equal(t, uint8(1), c.B.Read())
		assert.Equal(t, uint16(0x0000), c.PC.Read())

		c.Step()
		assert.Equal(t, uint8(0), c.B.Read())
		assert.Equal(t, uint16(0x0002), c.PC.Read())
	})
	testInstruction(t, Z80, "JP (IX)", []uint8{0xDD, 0xE9}, func(t *testing.T, c *CPU) {
		c.Ext.IX.Write(0x8000)
		c.Step()
		assert.Equal(t, uint16(0x8000), c.PC.Read())
	})
}

func TestInstruction_Calls(t *testing.T) {
	for _, v := range []Variant{Z80, LR35902} {
		c := newTestCPU(v)
		// CALL $1234 at 0x0100, RET at 0x1234
		load(c, 0x0100, 0xCD, 0x34, 0x12)
		load(c, 0x1234, 0xC9)
		c.SetProgramCounter(0x0100)
		c.SetStackPointer(0xFFFE)

		require.IsType(t, &CALL{}, c.Step())
		assert.Equal(t, uint16(0x1234), c.PC.Read())
		assert.Equal(t, uint16(0xFFFC), c.SP.Read())
		assert.Equal(t, uint8(0x01), c.bus.Read(0xFFFD))
		assert.Equal(t, uint8(0x03), c.bus.Read(0xFFFC))

		require.IsType(t, &RET{}, c.Step())
		assert.Equal(t, uint16(0x0103), c.PC.Read())
		assert.Equal(t, uint16(0xFFFE), c.SP.Read())
	}

	for _, v := range []Variant{Z80, LR35902} {
		// 0xC4 - CALL NZ,nn not taken
		testInstruction(t, v, "CALL NZ,$1234", []uint8{0xC4, 0x34, 0x12}, func(t *testing.T, c *CPU) {
			c.SetStackPointer(0xFFFE)
			c.Zero.Write(true)
			c.Step()

			assert.Equal(t, uint16(0x0003), c.PC.Read())
			assert.Equal(t, uint16(0xFFFE), c.SP.Read())
		})
		// 0xD8 - RET C not taken
		testInstruction(t, v, "RET C", []uint8{0xD8}, func(t *testing.T, c *CPU) {
			c.SetStackPointer(0xFFFE)
			c.Step()

			assert.Equal(t, uint16(0x0001), c.PC.Read())
			assert.Equal(t, uint16(0xFFFE), c.SP.Read())
		})
	}
}

func TestInstruction_RETI(t *testing.T) {
	testInstruction(t, LR35902, "RETI", []uint8{0xD9}, func(t *testing.T, c *CPU) {
		c.SetStackPointer(0xFFFE)
		c.Push(0x0150)
		c.Step()

		assert.Equal(t, uint16(0x0150), c.PC.Read())
		assert.True(t, c.IFF1, "RETI enables interrupts without delay")
	})
	testInstruction(t, Z80, "RETN", []uint8{0xED, 0x45}, func(t *testing.T, c *CPU) {
		c.SetStackPointer(0xFFFE)
		c.Push(0x0150)
		c.IFF2 = true
		c.Step()

		assert.Equal(t, uint16(0x0150), c.PC.Read())
		assert.True(t, c.IFF1)
	})
}

func TestCPU_CallSubroutine(t *testing.T) {
	c := newTestCPU(LR35902)
	// LD A,$42; CALL $0300; RET
	load(c, 0x0200, 0x3E, 0x42, 0xCD, 0x00, 0x03, 0xC9)
	// INC A; RET
	load(c, 0x0300, 0x3C, 0xC9)
	c.SetProgramCounter(0x0100)
	c.SetStackPointer(0xFFFE)

	require.NoError(t, c.CallSubroutine(0x0200))
	assert.Equal(t, uint8(0x43), c.A.Read())
	assert.Equal(t, uint16(0x0100), c.PC.Read())
	assert.Equal(t, uint16(0xFFFE), c.SP.Read())

	t.Run("halts", func(t *testing.T) {
		c := newTestCPU(LR35902)
		load(c, 0x0200, 0x76)
		c.SetStackPointer(0xFFFE)
		assert.ErrorIs(t, c.CallSubroutine(0x0200), ErrHalted)
	})
	t.Run("Z80", func(t *testing.T) {
		c := newTestCPU(Z80)
		assert.ErrorIs(t, c.CallSubroutine(0x0200), ErrUnsupported)
	})
}

func TestRunUntil(t *testing.T) {
	c := newTestCPU(Z80, 0x00, 0x00, 0x00, 0x76)

	halt, ok := RunUntil[*HALT](c, 10)
	require.True(t, ok)
	assert.Equal(t, "HALT", halt.String())
	assert.Equal(t, uint16(0x0004), c.PC.Read())

	c = newTestCPU(Z80, 0x00, 0x00, 0x00, 0x76)
	_, ok = RunUntil[*EI](c, 2)
	assert.False(t, ok)
	assert.Equal(t, uint16(0x0002), c.PC.Read())
}
