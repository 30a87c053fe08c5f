// Package ram provides basic RAM and ROM devices for the data bus.
package ram

import (
	"fmt"

	"github.com/thelolagemann/gbz80/internal/types"
)

// RAM represents a block of read/write memory occupying the inclusive
// address range [first, last].
type RAM struct {
	first, last uint16
	data        []uint8
}

var (
	_ types.ReadWriter = (*RAM)(nil)
	_ types.Stater     = (*RAM)(nil)
)

// NewRAM returns a zeroed RAM covering first through last.
func NewRAM(first, last uint16) *RAM {
	if last < first {
		panic(fmt.Sprintf("ram: invalid range %04X-%04X", first, last))
	}
	return &RAM{
		first: first,
		last:  last,
		data:  make([]uint8, int(last-first)+1),
	}
}

// FirstAddress returns the first address of the RAM.
func (r *RAM) FirstAddress() uint16 { return r.first }

// LastAddress returns the last address of the RAM.
func (r *RAM) LastAddress() uint16 { return r.last }

// Size returns the number of bytes held by the RAM.
func (r *RAM) Size() int { return len(r.data) }

// Read returns the value at the given address.
func (r *RAM) Read(address uint16) uint8 {
	return r.data[r.offset(address)]
}

// Write writes the value to the given address.
func (r *RAM) Write(address uint16, value uint8) {
	r.data[r.offset(address)] = value
}

// LoadData copies data into the RAM starting at address.
func (r *RAM) LoadData(address uint16, data []byte) {
	start := r.offset(address)
	if start+len(data) > len(r.data) {
		panic(fmt.Sprintf("ram: %d bytes at %04X overflow %04X-%04X", len(data), address, r.first, r.last))
	}
	copy(r.data[start:], data)
}

// Save writes the RAM's contents to s.
func (r *RAM) Save(s *types.State) {
	s.WriteData(r.data)
}

// Load restores contents written by Save on a RAM of the same size.
func (r *RAM) Load(s *types.State) {
	s.ReadData(r.data)
}

// offset translates a bus address into an index into data. An address
// outside the RAM's range can only be produced by miswiring the bus,
// so it panics rather than being recovered.
func (r *RAM) offset(address uint16) int {
	if address < r.first || address > r.last {
		panic(fmt.Sprintf("ram: address %04X outside %04X-%04X", address, r.first, r.last))
	}
	return int(address - r.first)
}
