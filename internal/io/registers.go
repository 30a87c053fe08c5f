// Package io provides memory-mapped hardware register files: devices that
// expose a handful of individually handled registers within an address
// range, such as the Game Boy's I/O page.
package io

import (
	"fmt"
	"sort"

	"github.com/thelolagemann/gbz80/internal/bus"
	"github.com/thelolagemann/gbz80/internal/types"
)

// Register is a single memory-mapped hardware register. The read and
// write functions are optional; a register without a read function reads
// 0xFF, and one without a write function ignores writes.
type Register struct {
	Address uint16
	Name    string

	write func(v uint8)
	read  func() uint8
}

// Read returns the value of the register.
func (r *Register) Read() uint8 {
	if r.read == nil {
		return NoRead()
	}
	return r.read()
}

// Write writes value to the register.
func (r *Register) Write(value uint8) {
	if r.write != nil {
		r.write(value)
	}
}

func (r *Register) String() string {
	return fmt.Sprintf("%s $%04X", r.Name, r.Address)
}

// Registers is a register file covering the inclusive range
// [first, last]. Addresses without a defined register read 0xFF and
// ignore writes.
type Registers struct {
	first, last uint16
	registers   map[uint16]*Register
}

// New creates an empty register file for the range [first, last]. It
// panics if the range is empty.
func New(first, last uint16) *Registers {
	if last < first {
		panic(fmt.Sprintf("io: invalid register range %04X-%04X", first, last))
	}
	return &Registers{
		first:     first,
		last:      last,
		registers: make(map[uint16]*Register),
	}
}

// FirstAddress returns the first address of the register file.
func (r *Registers) FirstAddress() uint16 { return r.first }

// LastAddress returns the last address of the register file.
func (r *Registers) LastAddress() uint16 { return r.last }

// Define adds a register at address with the given handlers, either of
// which may be nil. Defining a register outside of the file's range, or
// at an address already taken, is a wiring error and panics.
func (r *Registers) Define(address uint16, name string, write func(v uint8), read func() uint8) *Register {
	if address < r.first || address > r.last {
		panic(fmt.Sprintf("io: register %s at %04X outside of %04X-%04X", name, address, r.first, r.last))
	}
	if existing, ok := r.registers[address]; ok {
		panic(fmt.Sprintf("io: register %s at %04X already defined as %s", name, address, existing.Name))
	}

	reg := &Register{Address: address, Name: name, write: write, read: read}
	r.registers[address] = reg
	return reg
}

// Latch defines a register backed by plain storage and returns the
// storage, so that the owning peripheral can read what the CPU wrote.
func (r *Registers) Latch(address uint16, name string) *types.Register8 {
	storage := new(types.Register8)
	r.Define(address, name, storage.Write, storage.Read)
	return storage
}

// Lookup returns the register at address, if one is defined.
func (r *Registers) Lookup(address uint16) (*Register, bool) {
	reg, ok := r.registers[address]
	return reg, ok
}

// Defined returns the defined registers ordered by address.
func (r *Registers) Defined() []*Register {
	regs := make([]*Register, 0, len(r.registers))
	for _, reg := range r.registers {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Address < regs[j].Address })
	return regs
}

// Read returns the value of the register at address, or 0xFF if no
// register is defined there.
func (r *Registers) Read(address uint16) uint8 {
	if reg, ok := r.registers[address]; ok {
		return reg.Read()
	}
	return NoRead()
}

// Write writes value to the register at address. Writes to addresses
// without a register are ignored.
func (r *Registers) Write(address uint16, value uint8) {
	if reg, ok := r.registers[address]; ok {
		reg.Write(value)
	}
}

// AttachTo binds every defined register to b under id, one binding per
// contiguous run of registers, leaving the gaps to the bus's own
// fallbacks. bus.Detach(id) removes them all again.
func (r *Registers) AttachTo(b *bus.Bus, id string) {
	regs := r.Defined()
	for i := 0; i < len(regs); {
		j := i
		for j+1 < len(regs) && regs[j+1].Address == regs[j].Address+1 {
			j++
		}
		b.AttachRange(id, r, regs[i].Address, regs[j].Address)
		i = j + 1
	}
}

var _ types.Stater = (*Registers)(nil)

// Save writes the value of every defined register to s, in address
// order.
func (r *Registers) Save(s *types.State) {
	for _, reg := range r.Defined() {
		s.Write8(reg.Read())
	}
}

// Load restores values written by Save by writing them back through each
// register's write function, so a register file with the same
// definitions must be used.
func (r *Registers) Load(s *types.State) {
	for _, reg := range r.Defined() {
		reg.Write(s.Read8())
	}
}

// NoRead is the value read from a register that is not readable.
func NoRead() uint8 {
	return 0xFF
}

// NoWrite is a write function that does nothing, for registers that
// are not writeable.
func NoWrite(uint8) {}
