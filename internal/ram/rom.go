package ram

import (
	"fmt"

	"github.com/thelolagemann/gbz80/internal/types"
)

// ROM is a read-only block of memory. It implements types.Writer so
// that it can claim its range for writes, but writes are discarded.
type ROM struct {
	first, last uint16
	data        []uint8
}

var _ types.ReadWriter = (*ROM)(nil)

// NewROM returns a ROM starting at first holding data. The ROM covers
// size bytes; any bytes beyond len(data) read as zero.
func NewROM(first uint16, size int, data []byte) *ROM {
	if size <= 0 || int(first)+size > 0x10000 {
		panic(fmt.Sprintf("rom: invalid size %d at %04X", size, first))
	}
	if len(data) > size {
		panic(fmt.Sprintf("rom: image of %d bytes exceeds %d byte ROM", len(data), size))
	}
	r := &ROM{
		first: first,
		last:  uint16(int(first) + size - 1),
		data:  make([]uint8, size),
	}
	copy(r.data, data)
	return r
}

// FirstAddress returns the first address of the ROM.
func (r *ROM) FirstAddress() uint16 { return r.first }

// LastAddress returns the last address of the ROM.
func (r *ROM) LastAddress() uint16 { return r.last }

// Read returns the value at the given address.
func (r *ROM) Read(address uint16) uint8 {
	if address < r.first || address > r.last {
		panic(fmt.Sprintf("rom: address %04X outside %04X-%04X", address, r.first, r.last))
	}
	return r.data[address-r.first]
}

// Write is a no-op; ROM contents cannot be changed by the guest.
func (r *ROM) Write(address uint16, value uint8) {}
