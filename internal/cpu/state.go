package cpu

import "github.com/thelolagemann/gbz80/internal/types"

var _ types.Stater = (*CPU)(nil)

func (r *Registers) load(s *types.State) {
	for _, reg := range []*types.Register8{&r.A, &r.F, &r.B, &r.C, &r.D, &r.E, &r.H, &r.L} {
		reg.Write(s.Read8())
	}
}

func (r *Registers) save(s *types.State) {
	for _, reg := range []*types.Register8{&r.A, &r.F, &r.B, &r.C, &r.D, &r.E, &r.H, &r.L} {
		s.Write8(reg.Read())
	}
}

// Load restores a snapshot written by Save. The snapshot must come from
// a CPU of the same variant.
func (c *CPU) Load(s *types.State) {
	c.Registers.load(s)
	c.SP.Write(s.Read16())
	c.PC.Write(s.Read16())
	c.mode = s.Read8()
	c.IFF1 = s.ReadBool()
	c.IFF2 = s.ReadBool()
	c.interrupt.state = interruptState(s.Read8())

	if c.Ext != nil {
		c.Ext.Shadow.load(s)
		c.Ext.IX.Write(s.Read16())
		c.Ext.IY.Write(s.Read16())
		c.Ext.I.Write(s.Read8())
		c.Ext.R.Write(s.Read8())
		c.Ext.IM = s.Read8()
	}
}

// Save writes the registers, flags and interrupt state to s.
func (c *CPU) Save(s *types.State) {
	c.Registers.save(s)
	s.Write16(c.SP.Read())
	s.Write16(c.PC.Read())
	s.Write8(c.mode)
	s.WriteBool(c.IFF1)
	s.WriteBool(c.IFF2)
	s.Write8(uint8(c.interrupt.state))

	if c.Ext != nil {
		c.Ext.Shadow.save(s)
		s.Write16(c.Ext.IX.Read())
		s.Write16(c.Ext.IY.Read())
		s.Write8(c.Ext.I.Read())
		s.Write8(c.Ext.R.Read())
		s.Write8(c.Ext.IM)
	}
}
