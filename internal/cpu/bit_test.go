package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstruction_BIT(t *testing.T) {
	for _, v := range []Variant{Z80, LR35902} {
		for bit := uint8(0); bit < 8; bit++ {
			// 0xCB 0x47 + 8*b - BIT b,A
			opcode := 0x47 | bit<<3
			testInstruction(t, v, "BIT "+string('0'+rune(bit))+",A", []uint8{0xCB, opcode}, func(t *testing.T, c *CPU) {
				c.A.Write(1 << bit)
				c.Carry.Write(true)
				c.Step()

				assert.False(t, c.Zero.Read())
				assert.True(t, c.HalfCarry.Read())
				assert.False(t, c.Subtract.Read())
				assert.True(t, c.Carry.Read())

				c.PC.Write(0)
				c.A.Write(^uint8(1 << bit))
				c.Step()
				assert.True(t, c.Zero.Read())
			})
		}
	}

	testInstruction(t, Z80, "BIT 7,A", []uint8{0xCB, 0x7F}, func(t *testing.T, c *CPU) {
		c.A.Write(0x80)
		c.Step()

		assert.True(t, c.Sign.Read())
		assert.False(t, c.ParityOverflow.Read())
	})
	testInstruction(t, Z80, "BIT 0,(IX+$05)", []uint8{0xDD, 0xCB, 0x05, 0x46}, func(t *testing.T, c *CPU) {
		c.Ext.IX.Write(0xC000)
		load(c, 0xC005, 0x00)
		c.Step()

		assert.True(t, c.Zero.Read())
		assert.True(t, c.ParityOverflow.Read())
	})
}

func TestInstruction_SetReset(t *testing.T) {
	for _, v := range []Variant{Z80, LR35902} {
		// 0xCB 0xC6 - SET 0,(HL)
		testInstruction(t, v, "SET 0,(HL)", []uint8{0xCB, 0xC6}, func(t *testing.T, c *CPU) {
			c.HL.Write(0xC000)
			c.Step()

			assert.Equal(t, uint8(0x01), c.bus.Read(0xC000))
		})
		// 0xCB 0xB8 - RES 7,B
		testInstruction(t, v, "RES 7,B", []uint8{0xCB, 0xB8}, func(t *testing.T, c *CPU) {
			c.B.Write(0xFF)
			c.F.Write(0)
			c.Step()

			assert.Equal(t, uint8(0x7F), c.B.Read())
			assert.Equal(t, uint8(0), c.F.Read())
		})
	}

	testInstruction(t, Z80, "SET 3,(IY-$01)", []uint8{0xFD, 0xCB, 0xFF, 0xDE}, func(t *testing.T, c *CPU) {
		c.Ext.IY.Write(0xC001)
		c.Step()

		assert.Equal(t, uint8(0x08), c.bus.Read(0xC000))
	})
}
