package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thelolagemann/gbz80/internal/types"
)

func TestOperand_Kinds(t *testing.T) {
	c := newTestCPU(Z80)
	for _, tt := range []struct {
		operand Source8
		kind    Kind
		name    string
	}{
		{reg8(&c.A, "A"), KindRegister, "A"},
		{immediate8(0x42), KindImmediate, "$42"},
		{indirect(c.bus, reg16(c.HL, "HL")), KindIndirect, "(HL)"},
		{indexed8{c.bus, reg16(c.Ext.IX, "IX"), -5}, KindIndexed, "(IX-$05)"},
		{highPage8{c.bus, immediate8(0x44)}, KindIndirect, "($FF00+$44)"},
	} {
		assert.Equal(t, tt.kind, tt.operand.Kind(), tt.name)
		assert.Equal(t, tt.name, tt.operand.String())
	}
	assert.Equal(t, "indexed", KindIndexed.String())
}

func TestOperand_AddressRecomputed(t *testing.T) {
	c := newTestCPU(Z80)
	load(c, 0xC000, 0x11, 0x22)
	hl := indirect(c.bus, reg16(c.HL, "HL"))

	c.HL.Write(0xC000)
	assert.Equal(t, uint8(0x11), hl.Read())
	c.L.Write(0x01)
	assert.Equal(t, uint8(0x22), hl.Read())

	// a change to the memory behind the operand is observed too
	c.bus.Write(0xC001, 0x33)
	assert.Equal(t, uint8(0x33), hl.Read())

	ix := indexed8{c.bus, reg16(c.Ext.IX, "IX"), 1}
	c.Ext.IX.Write(0xBFFF)
	ix.Write(0x44)
	assert.Equal(t, uint8(0x44), c.bus.Read(0xC000))
}

func TestOperand_ImmediateDiscardsWrites(t *testing.T) {
	i := immediate8(0x10)
	i.Write(0x20)
	assert.Equal(t, uint8(0x10), i.Read())

	w := immediate16(0x1234)
	w.Write(0)
	assert.Equal(t, uint16(0x1234), w.Read())
}

func TestOperand_Stepped(t *testing.T) {
	c := newTestCPU(LR35902)
	c.HL.Write(0xC000)
	load(c, 0xC000, 0xAA, 0xBB)

	up := stepped8{c.bus, c.HL, 1}
	assert.Equal(t, uint8(0xAA), up.Read())
	assert.Equal(t, uint8(0xBB), up.Read())
	assert.Equal(t, uint16(0xC002), c.HL.Read())

	down := stepped8{c.bus, c.HL, 0xFFFF}
	down.Write(0x01)
	assert.Equal(t, uint8(0x01), c.bus.Read(0xC002))
	assert.Equal(t, uint16(0xC001), c.HL.Read())
}

func TestInterruptContext(t *testing.T) {
	c := newTestCPU(LR35902)
	var i interruptContext

	assert.Equal(t, interruptIdle, i.take())

	i.record(interruptPendingEnable)
	s := i.take()
	assert.Equal(t, interruptPendingEnable, s)
	assert.Equal(t, interruptIdle, i.state, "take resets to idle")

	i.apply(c, s)
	assert.True(t, c.IFF1)
	assert.True(t, c.IFF2)

	i.apply(c, interruptPendingDisable)
	assert.False(t, c.IFF1)
	assert.Equal(t, "pending-disable", interruptPendingDisable.String())
}

func TestCondition(t *testing.T) {
	c := newTestCPU(Z80)
	var always *Condition
	assert.True(t, always.Met(c))

	for _, tt := range []struct {
		cc   *Condition
		flag *types.Flag
	}{
		{conditions[0], c.Zero}, {conditions[1], c.Zero},
		{conditions[2], c.Carry}, {conditions[3], c.Carry},
		{conditions[4], c.ParityOverflow}, {conditions[5], c.ParityOverflow},
		{conditions[6], c.Sign}, {conditions[7], c.Sign},
	} {
		tt.flag.Write(tt.cc.expect)
		assert.True(t, tt.cc.Met(c), tt.cc.String())
		tt.flag.Write(!tt.cc.expect)
		assert.False(t, tt.cc.Met(c), tt.cc.String())
	}
}
