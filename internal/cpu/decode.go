package cpu

import (
	"github.com/thelolagemann/gbz80/internal/types"
)

// decodeFunc builds the instruction encoded by opcode, reading any
// operand bytes that follow it through d.
type decodeFunc func(d *decoder, opcode uint8) Instruction

type entry struct {
	fn       decodeFunc
	variants Variant
}

// table maps an opcode to its decoder, separately for each variant.
type table [2][256]entry

// define registers fn for opcode on every variant in v.
func (t *table) define(v Variant, opcode uint8, fn decodeFunc) {
	for _, variant := range [...]Variant{Z80, LR35902} {
		if v&variant != 0 {
			t[variant.index()][opcode] = entry{fn: fn, variants: v}
		}
	}
}

var (
	// InstructionSet holds the unprefixed opcodes.
	InstructionSet table
	// InstructionSetCB holds the opcodes following a 0xCB prefix.
	InstructionSetCB table
	// InstructionSetED holds the opcodes following a 0xED prefix (Z80).
	InstructionSetED table
)

// the opcode fields the tables are organised by
//
//	7 6 5 4 3 2 1 0
//	 x  |  y  |  z
//	    | p |q|
func fieldY(opcode uint8) uint8 { return opcode >> 3 & 7 }
func fieldZ(opcode uint8) uint8 { return opcode & 7 }
func fieldP(opcode uint8) uint8 { return opcode >> 4 & 3 }

// decoder reads one instruction starting at pc.
type decoder struct {
	c  *CPU
	pc uint16
	// n is the number of bytes consumed so far
	n uint16
	// variants narrows as tables are consulted
	variants Variant
	// index is set after a DD or FD prefix
	index *indexMode
}

// indexMode substitutes IX or IY for HL, and their halves for H and L.
type indexMode struct {
	pair      *types.RegisterPair
	name      string
	high, low register8
	disp      int8
	dispRead  bool
}

func (d *decoder) next() uint8 {
	b := d.c.bus.Read(d.pc + d.n)
	d.n++
	return b
}

func (d *decoder) imm8() immediate8 {
	return immediate8(d.next())
}

func (d *decoder) imm16() immediate16 {
	low := uint16(d.next())
	high := uint16(d.next())
	return immediate16(high<<8 | low)
}

func (d *decoder) decode() Instruction {
	d.variants = Both
	instruction := d.lookup(&InstructionSet, d.next())
	if instruction == nil {
		return nil
	}
	instruction.bind(d.n, d.variants)
	return instruction
}

func (d *decoder) lookup(t *table, opcode uint8) Instruction {
	e := t[d.c.variant.index()][opcode]
	if e.fn == nil {
		return nil
	}
	d.variants &= e.variants
	return e.fn(d, opcode)
}

// r returns the 8-bit operand encoded as i:
// B, C, D, E, H, L, (HL), A.
func (d *decoder) r(i uint8) Operand8 {
	if d.index != nil {
		switch i {
		case 4:
			return d.index.high
		case 5:
			return d.index.low
		case 6:
			return d.indexed()
		}
	}
	return d.c.r8[i]
}

// indexed returns (IX+d) or (IY+d), reading the displacement the first
// time it is needed.
func (d *decoder) indexed() Operand8 {
	if !d.index.dispRead {
		d.index.disp = int8(d.next())
		d.index.dispRead = true
	}
	return indexed8{bus: d.c.bus, base: reg16(d.index.pair, d.index.name), disp: d.index.disp}
}

// rp returns the register pair encoded as p: BC, DE, HL, SP.
func (d *decoder) rp(p uint8) Operand16 {
	if p == 2 && d.index != nil {
		return reg16(d.index.pair, d.index.name)
	}
	return d.c.rp[p]
}

// rp2 returns the register pair encoded as p for PUSH and POP:
// BC, DE, HL, AF.
func (d *decoder) rp2(p uint8) Operand16 {
	if p == 2 && d.index != nil {
		return reg16(d.index.pair, d.index.name)
	}
	return d.c.rp2[p]
}

// alu builds the arithmetic or logic instruction encoded as y, operating
// on A and src.
func alu(y uint8, src Source8) Instruction {
	switch y {
	case 0:
		return &ADD8{src: src}
	case 1:
		return &ADC8{src: src}
	case 2:
		return &SUB8{src: src}
	case 3:
		return &SBC8{src: src}
	case 4:
		return &AND{src: src}
	case 5:
		return &XOR{src: src}
	case 6:
		return &OR{src: src}
	}
	return &CP{src: src}
}

func (d *decoder) a() Operand8 {
	return d.c.r8[7]
}

func (d *decoder) sp() Operand16 {
	return d.c.rp[3]
}

func init() {
	t := &InstructionSet

	// x = 0
	t.define(Both, 0x00, func(*decoder, uint8) Instruction { return &NOP{} })
	t.define(Z80, 0x08, func(d *decoder, _ uint8) Instruction {
		return &EX{a: d.c.rp2[3], b: reg16(d.c.Ext.Shadow.AF, "AF'")}
	})
	t.define(LR35902, 0x08, func(d *decoder, _ uint8) Instruction {
		return &LD16{dst: indirect16(d.c.bus, d.imm16()), src: d.sp()}
	})
	t.define(Z80, 0x10, func(d *decoder, _ uint8) Instruction { return &DJNZ{offset: d.imm8()} })
	t.define(LR35902, 0x10, func(d *decoder, _ uint8) Instruction {
		d.next()
		return &STOP{}
	})
	t.define(Both, 0x18, func(d *decoder, _ uint8) Instruction { return &JR{offset: d.imm8()} })
	for _, opcode := range [...]uint8{0x20, 0x28, 0x30, 0x38} {
		t.define(Both, opcode, func(d *decoder, opcode uint8) Instruction {
			return &JR{cc: conditions[fieldY(opcode)-4], offset: d.imm8()}
		})
	}

	for p := uint8(0); p < 4; p++ {
		// LD rr, nn
		t.define(Both, p<<4|0x01, func(d *decoder, opcode uint8) Instruction {
			dst := d.rp(fieldP(opcode))
			return &LD16{dst: dst, src: d.imm16()}
		})
		// ADD HL, rr
		t.define(Both, p<<4|0x09, func(d *decoder, opcode uint8) Instruction {
			return &ADD16{dst: d.rp(2), src: d.rp(fieldP(opcode))}
		})
		// INC rr, DEC rr
		t.define(Both, p<<4|0x03, func(d *decoder, opcode uint8) Instruction {
			return &INC16{dst: d.rp(fieldP(opcode))}
		})
		t.define(Both, p<<4|0x0B, func(d *decoder, opcode uint8) Instruction {
			return &DEC16{dst: d.rp(fieldP(opcode))}
		})
	}

	// LD (BC), A / LD (DE), A / LD A, (BC) / LD A, (DE)
	t.define(Both, 0x02, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: indirect(d.c.bus, d.c.rp[0]), src: d.a()}
	})
	t.define(Both, 0x12, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: indirect(d.c.bus, d.c.rp[1]), src: d.a()}
	})
	t.define(Both, 0x0A, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: d.a(), src: indirect(d.c.bus, d.c.rp[0])}
	})
	t.define(Both, 0x1A, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: d.a(), src: indirect(d.c.bus, d.c.rp[1])}
	})

	// absolute loads on the Z80
	t.define(Z80, 0x22, func(d *decoder, _ uint8) Instruction {
		return &LD16{dst: indirect16(d.c.bus, d.imm16()), src: d.rp(2)}
	})
	t.define(Z80, 0x2A, func(d *decoder, _ uint8) Instruction {
		dst := d.rp(2)
		return &LD16{dst: dst, src: indirect16(d.c.bus, d.imm16())}
	})
	t.define(Z80, 0x32, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: indirect(d.c.bus, d.imm16()), src: d.a()}
	})
	t.define(Z80, 0x3A, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: d.a(), src: indirect(d.c.bus, d.imm16())}
	})

	// post increment and decrement loads on the LR35902
	t.define(LR35902, 0x22, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: stepped8{d.c.bus, d.c.HL, 1}, src: d.a()}
	})
	t.define(LR35902, 0x2A, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: d.a(), src: stepped8{d.c.bus, d.c.HL, 1}}
	})
	t.define(LR35902, 0x32, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: stepped8{d.c.bus, d.c.HL, 0xFFFF}, src: d.a()}
	})
	t.define(LR35902, 0x3A, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: d.a(), src: stepped8{d.c.bus, d.c.HL, 0xFFFF}}
	})

	for y := uint8(0); y < 8; y++ {
		t.define(Both, y<<3|0x04, func(d *decoder, opcode uint8) Instruction {
			return &INC8{dst: d.r(fieldY(opcode))}
		})
		t.define(Both, y<<3|0x05, func(d *decoder, opcode uint8) Instruction {
			return &DEC8{dst: d.r(fieldY(opcode))}
		})
		t.define(Both, y<<3|0x06, func(d *decoder, opcode uint8) Instruction {
			dst := d.r(fieldY(opcode))
			return &LD8{dst: dst, src: d.imm8()}
		})
	}

	for y, op := range [...]shiftOp{opRLC, opRRC, opRL, opRR} {
		t.define(Both, uint8(y)<<3|0x07, func(*decoder, uint8) Instruction { return &RotateA{op: op} })
	}
	t.define(Both, 0x27, func(*decoder, uint8) Instruction { return &DAA{} })
	t.define(Both, 0x2F, func(*decoder, uint8) Instruction { return &CPL{} })
	t.define(Both, 0x37, func(*decoder, uint8) Instruction { return &SCF{} })
	t.define(Both, 0x3F, func(*decoder, uint8) Instruction { return &CCF{} })

	// x = 1
	for opcode := 0x40; opcode < 0x80; opcode++ {
		if opcode == 0x76 {
			t.define(Both, 0x76, func(*decoder, uint8) Instruction { return &HALT{} })
			continue
		}
		t.define(Both, uint8(opcode), func(d *decoder, opcode uint8) Instruction {
			y, z := fieldY(opcode), fieldZ(opcode)
			// LD r, (IX+d) and LD (IX+d), r address H and L, not IXH and IXL
			if d.index != nil && (y == 6 || z == 6) {
				if y == 6 {
					return &LD8{dst: d.indexed(), src: d.c.r8[z]}
				}
				return &LD8{dst: d.c.r8[y], src: d.indexed()}
			}
			return &LD8{dst: d.r(y), src: d.r(z)}
		})
	}

	// x = 2
	for opcode := 0x80; opcode < 0xC0; opcode++ {
		t.define(Both, uint8(opcode), func(d *decoder, opcode uint8) Instruction {
			return alu(fieldY(opcode), d.r(fieldZ(opcode)))
		})
	}

	// x = 3
	for y := uint8(0); y < 8; y++ {
		conditional := Both
		if y >= 4 {
			// the parity and sign conditions only exist on the Z80
			conditional = Z80
		}
		t.define(conditional, 0xC0|y<<3, func(_ *decoder, opcode uint8) Instruction {
			return &RET{cc: conditions[fieldY(opcode)]}
		})
		t.define(conditional, 0xC2|y<<3, func(d *decoder, opcode uint8) Instruction {
			return &JP{cc: conditions[fieldY(opcode)], target: d.imm16()}
		})
		t.define(conditional, 0xC4|y<<3, func(d *decoder, opcode uint8) Instruction {
			return &CALL{cc: conditions[fieldY(opcode)], target: d.imm16()}
		})
		t.define(Both, 0xC6|y<<3, func(d *decoder, opcode uint8) Instruction {
			return alu(fieldY(opcode), d.imm8())
		})
		t.define(Both, 0xC7|y<<3, func(_ *decoder, opcode uint8) Instruction {
			return &RST{vector: uint16(opcode & 0x38)}
		})
	}

	for p := uint8(0); p < 4; p++ {
		t.define(Both, 0xC1|p<<4, func(d *decoder, opcode uint8) Instruction {
			mask := uint16(0xFFFF)
			if fieldP(opcode) == 3 && d.c.variant == LR35902 {
				// the low nibble of F is always zero
				mask = 0xFFF0
			}
			return &POP{dst: d.rp2(fieldP(opcode)), mask: mask}
		})
		t.define(Both, 0xC5|p<<4, func(d *decoder, opcode uint8) Instruction {
			return &PUSH{src: d.rp2(fieldP(opcode))}
		})
	}

	t.define(Both, 0xC9, func(*decoder, uint8) Instruction { return &RET{} })
	t.define(Both, 0xC3, func(d *decoder, _ uint8) Instruction { return &JP{target: d.imm16()} })
	t.define(Both, 0xCD, func(d *decoder, _ uint8) Instruction { return &CALL{target: d.imm16()} })
	t.define(Both, 0xE9, func(d *decoder, _ uint8) Instruction { return &JP{target: d.rp(2)} })
	t.define(Both, 0xF9, func(d *decoder, _ uint8) Instruction { return &LD16{dst: d.sp(), src: d.rp(2)} })
	t.define(Both, 0xF3, func(*decoder, uint8) Instruction { return &DI{} })
	t.define(Both, 0xFB, func(*decoder, uint8) Instruction { return &EI{} })

	t.define(Z80, 0xD9, func(*decoder, uint8) Instruction { return &EXX{} })
	t.define(Z80, 0xEB, func(d *decoder, _ uint8) Instruction {
		// EX DE, HL is not affected by an index prefix
		return &EX{a: d.c.rp[1], b: d.c.rp[2]}
	})
	t.define(Z80, 0xE3, func(d *decoder, _ uint8) Instruction {
		return &EX{a: indirect16(d.c.bus, d.sp()), b: d.rp(2)}
	})
	t.define(Z80, 0xD3, func(d *decoder, _ uint8) Instruction {
		port := indirect(d.c.ports, portAddress{&d.c.A, d.next()})
		return &OUT{port: port, src: d.a()}
	})
	t.define(Z80, 0xDB, func(d *decoder, _ uint8) Instruction {
		port := indirect(d.c.ports, portAddress{&d.c.A, d.next()})
		return &IN{dst: d.a(), port: port}
	})

	t.define(LR35902, 0xD9, func(*decoder, uint8) Instruction { return &RETI{} })
	t.define(LR35902, 0xE0, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: highPage8{d.c.bus, d.imm8()}, src: d.a()}
	})
	t.define(LR35902, 0xF0, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: d.a(), src: highPage8{d.c.bus, d.imm8()}}
	})
	t.define(LR35902, 0xE2, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: highPage8{d.c.bus, d.c.r8[1]}, src: d.a()}
	})
	t.define(LR35902, 0xF2, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: d.a(), src: highPage8{d.c.bus, d.c.r8[1]}}
	})
	t.define(LR35902, 0xEA, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: indirect(d.c.bus, d.imm16()), src: d.a()}
	})
	t.define(LR35902, 0xFA, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: d.a(), src: indirect(d.c.bus, d.imm16())}
	})
	t.define(LR35902, 0xE8, func(d *decoder, _ uint8) Instruction { return &ADDSP{offset: d.imm8()} })
	t.define(LR35902, 0xF8, func(d *decoder, _ uint8) Instruction { return &LDHLSP{offset: d.imm8()} })

	// prefixes
	t.define(Both, 0xCB, (*decoder).prefixCB)
	t.define(Z80, 0xED, (*decoder).prefixED)
	t.define(Z80, 0xDD, (*decoder).prefixIndex)
	t.define(Z80, 0xFD, (*decoder).prefixIndex)
}

// prefixIndex decodes the instruction following a DD (IX) or FD (IY)
// prefix. A prefix followed by another prefix, or by ED, acts as a NOP
// and the following prefix is decoded as the next instruction.
func (d *decoder) prefixIndex(opcode uint8) Instruction {
	ext := d.c.Ext
	if opcode == 0xDD {
		d.index = &indexMode{pair: ext.IX, name: "IX", high: reg8(&ext.IXH, "IXH"), low: reg8(&ext.IXL, "IXL")}
	} else {
		d.index = &indexMode{pair: ext.IY, name: "IY", high: reg8(&ext.IYH, "IYH"), low: reg8(&ext.IYL, "IYL")}
	}

	switch d.c.bus.Read(d.pc + d.n) {
	case 0xDD, 0xFD, 0xED:
		return &NOP{}
	}
	return d.lookup(&InstructionSet, d.next())
}

// prefixCB decodes the bit instructions. After an index prefix the
// displacement precedes the final opcode byte, and the operand is always
// (IX+d) or (IY+d).
func (d *decoder) prefixCB(uint8) Instruction {
	if d.index != nil {
		d.indexed()
	}
	return d.lookup(&InstructionSetCB, d.next())
}

func (d *decoder) prefixED(uint8) Instruction {
	// ED ignores any preceding index prefix
	d.index = nil
	return d.lookup(&InstructionSetED, d.next())
}

// cbOperand returns the operand of a CB-prefixed instruction.
func (d *decoder) cbOperand(opcode uint8) Operand8 {
	if d.index != nil {
		return d.indexed()
	}
	return d.c.r8[fieldZ(opcode)]
}

func init() {
	t := &InstructionSetCB

	for opcode := 0; opcode < 0x40; opcode++ {
		op := shiftOp(fieldY(uint8(opcode)))
		if op == opSLL {
			t.define(Z80, uint8(opcode), func(d *decoder, opcode uint8) Instruction {
				return &Shift{op: opSLL, dst: d.cbOperand(opcode)}
			})
			t.define(LR35902, uint8(opcode), func(d *decoder, opcode uint8) Instruction {
				return &Shift{op: opSWAP, dst: d.cbOperand(opcode)}
			})
			continue
		}
		t.define(Both, uint8(opcode), func(d *decoder, opcode uint8) Instruction {
			return &Shift{op: shiftOp(fieldY(opcode)), dst: d.cbOperand(opcode)}
		})
	}
	for opcode := 0x40; opcode < 0x100; opcode++ {
		t.define(Both, uint8(opcode), func(d *decoder, opcode uint8) Instruction {
			operand, bit := d.cbOperand(opcode), fieldY(opcode)
			switch opcode >> 6 {
			case 1:
				return &BIT{bit: bit, src: operand}
			case 2:
				return &RES{bit: bit, dst: operand}
			}
			return &SET{bit: bit, dst: operand}
		})
	}
}

func init() {
	t := &InstructionSetED

	for y := uint8(0); y < 8; y++ {
		t.define(Z80, 0x40|y<<3, func(d *decoder, opcode uint8) Instruction {
			port := indirect(d.c.ports, reg16(d.c.BC, "C"))
			if y := fieldY(opcode); y != 6 {
				return &IN{dst: d.c.r8[y], port: port, flags: true}
			}
			return &IN{port: port, flags: true}
		})
		t.define(Z80, 0x41|y<<3, func(d *decoder, opcode uint8) Instruction {
			port := indirect(d.c.ports, reg16(d.c.BC, "C"))
			if y := fieldY(opcode); y != 6 {
				return &OUT{port: port, src: d.c.r8[y]}
			}
			return &OUT{port: port, src: immediate8(0)}
		})
		t.define(Z80, 0x44|y<<3, func(*decoder, uint8) Instruction { return &NEG{} })
		t.define(Z80, 0x45|y<<3, func(_ *decoder, opcode uint8) Instruction {
			if opcode == 0x4D {
				return &RETI{}
			}
			return &RETN{}
		})
		t.define(Z80, 0x46|y<<3, func(_ *decoder, opcode uint8) Instruction {
			return &IM{mode: [8]uint8{0, 0, 1, 2, 0, 0, 1, 2}[fieldY(opcode)]}
		})
	}

	for p := uint8(0); p < 4; p++ {
		t.define(Z80, 0x42|p<<4, func(d *decoder, opcode uint8) Instruction {
			return &SBC16{dst: d.c.rp[2], src: d.c.rp[fieldP(opcode)]}
		})
		t.define(Z80, 0x4A|p<<4, func(d *decoder, opcode uint8) Instruction {
			return &ADC16{dst: d.c.rp[2], src: d.c.rp[fieldP(opcode)]}
		})
		t.define(Z80, 0x43|p<<4, func(d *decoder, opcode uint8) Instruction {
			return &LD16{dst: indirect16(d.c.bus, d.imm16()), src: d.c.rp[fieldP(opcode)]}
		})
		t.define(Z80, 0x4B|p<<4, func(d *decoder, opcode uint8) Instruction {
			dst := d.c.rp[fieldP(opcode)]
			return &LD16{dst: dst, src: indirect16(d.c.bus, d.imm16())}
		})
	}

	t.define(Z80, 0x47, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: reg8(&d.c.Ext.I, "I"), src: d.a()}
	})
	t.define(Z80, 0x4F, func(d *decoder, _ uint8) Instruction {
		return &LD8{dst: reg8(&d.c.Ext.R, "R"), src: d.a()}
	})
	t.define(Z80, 0x57, func(d *decoder, _ uint8) Instruction {
		return &LDSpecial{src: reg8(&d.c.Ext.I, "I")}
	})
	t.define(Z80, 0x5F, func(d *decoder, _ uint8) Instruction {
		return &LDSpecial{src: reg8(&d.c.Ext.R, "R")}
	})
	t.define(Z80, 0x67, func(d *decoder, _ uint8) Instruction { return &RRD{mem: d.c.r8[6]} })
	t.define(Z80, 0x6F, func(d *decoder, _ uint8) Instruction { return &RLD{mem: d.c.r8[6]} })
	t.define(Z80, 0x77, func(*decoder, uint8) Instruction { return &NOP{} })
	t.define(Z80, 0x7F, func(*decoder, uint8) Instruction { return &NOP{} })

	// block instructions, 0xA0 - 0xBB
	names := [4][4]string{
		{"LDI", "CPI", "INI", "OUTI"},
		{"LDD", "CPD", "IND", "OUTD"},
		{"LDIR", "CPIR", "INIR", "OTIR"},
		{"LDDR", "CPDR", "INDR", "OTDR"},
	}
	for y := uint8(4); y < 8; y++ {
		for z := uint8(0); z < 4; z++ {
			op := blockOp{name: names[y-4][z], delta: 1, repeat: y >= 6}
			if y&1 == 1 {
				op.delta = 0xFFFF
			}
			t.define(Z80, 0x80|y<<3|z, func(*decoder, uint8) Instruction {
				switch z {
				case 0:
					return &LDBlock{op}
				case 1:
					return &CPBlock{op}
				case 2:
					return &INBlock{op}
				}
				return &OUTBlock{op}
			})
		}
	}
}
