// Package bus provides the data bus connecting the CPU to memory and
// memory-mapped peripherals. Reads and writes are routed to the first
// registered binding whose address range contains the address, so a
// binding registered earlier shadows any later binding it overlaps.
//
// The bus takes no locks. A caller driving the CPU and a peripheral
// from different goroutines must serialize them itself.
package bus

import (
	"fmt"

	"github.com/thelolagemann/gbz80/internal/types"
	"github.com/thelolagemann/gbz80/pkg/log"
	"github.com/thelolagemann/gbz80/pkg/utils"
)

// Binding associates a device with the inclusive address range it
// serves on the bus.
type Binding struct {
	ID    string
	First uint16
	Last  uint16

	reader types.Reader
	writer types.Writer
}

// Contains reports whether address falls within the binding's range.
func (b Binding) Contains(address uint16) bool {
	return address >= b.First && address <= b.Last
}

func (b Binding) String() string {
	return fmt.Sprintf("%s %04X-%04X", b.ID, b.First, b.Last)
}

// Bus routes byte reads and writes to attached devices.
type Bus struct {
	reads  []Binding
	writes []Binding

	mirrors  []mirror
	reserved []span
	pseudo   map[uint16]func() uint8

	log log.Logger
}

// New returns an empty Bus configured with the given options.
func New(opts ...Opt) *Bus {
	b := &Bus{
		pseudo: make(map[uint16]func() uint8),
		log:    log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach binds device to its own address range under id. The device is
// bound for reads if it implements types.Reader, and for writes if it
// implements types.Writer.
func (b *Bus) Attach(id string, device types.Device) {
	b.AttachRange(id, device, device.FirstAddress(), device.LastAddress())
}

// AttachRange binds device to the inclusive range [first, last] under id,
// which need not match the device's own range. A device that is neither
// a types.Reader nor a types.Writer is a wiring error and panics.
func (b *Bus) AttachRange(id string, device types.Device, first, last uint16) {
	if device == nil {
		panic(fmt.Sprintf("bus: attaching nil device %q", id))
	}
	if last < first {
		panic(fmt.Sprintf("bus: invalid range %04X-%04X for %q", first, last, id))
	}

	r, readable := device.(types.Reader)
	w, writeable := device.(types.Writer)
	if !readable && !writeable {
		panic(fmt.Sprintf("bus: device %q is neither readable nor writeable", id))
	}

	if readable {
		b.reads = append(b.reads, Binding{ID: id, First: first, Last: last, reader: r})
	}
	if writeable {
		b.writes = append(b.writes, Binding{ID: id, First: first, Last: last, writer: w})
	}
	b.log.Debugf("bus: attached %s %04X-%04X (read=%t write=%t)", id, first, last, readable, writeable)
}

// Detach removes every binding registered under id, for both reads and
// writes, and returns the number of bindings removed. This is a linear
// scan over the binding lists.
func (b *Bus) Detach(id string) int {
	var removed int
	b.reads, removed = without(b.reads, id)
	var n int
	b.writes, n = without(b.writes, id)
	return removed + n
}

func without(bindings []Binding, id string) ([]Binding, int) {
	kept := bindings[:0]
	for _, binding := range bindings {
		if binding.ID != id {
			kept = append(kept, binding)
		}
	}
	removed := len(bindings) - len(kept)
	// clear the tail so detached devices can be collected
	for i := len(kept); i < len(bindings); i++ {
		bindings[i] = Binding{}
	}
	return kept, removed
}

// Bindings returns a copy of the read and write bindings, in resolution order.
func (b *Bus) Bindings() (reads, writes []Binding) {
	reads = append([]Binding(nil), b.reads...)
	writes = append([]Binding(nil), b.writes...)
	return reads, writes
}

// Read returns the byte at address. An address no device claims falls
// back to a pseudo-register, then to a mirror, and finally reads as 0.
func (b *Bus) Read(address uint16) uint8 {
	for i := range b.reads {
		if b.reads[i].Contains(address) {
			return b.reads[i].reader.Read(address)
		}
	}

	if fn, ok := b.pseudo[address]; ok {
		return fn()
	}
	if m, ok := b.mirrorFor(address); ok {
		return b.Read(address - m.offset)
	}

	return 0
}

// Write writes value to address. A write no device claims is redirected
// through a mirror, accepted silently inside a reserved range, and
// otherwise logged and dropped.
func (b *Bus) Write(address uint16, value uint8) {
	for i := range b.writes {
		if b.writes[i].Contains(address) {
			b.writes[i].writer.Write(address, value)
			return
		}
	}

	if m, ok := b.mirrorFor(address); ok {
		b.Write(address-m.offset, value)
		return
	}
	for _, r := range b.reserved {
		if r.contains(address) {
			return
		}
	}

	log.WithFields(b.log, log.Fields{
		"address": fmt.Sprintf("%04X", address),
		"value":   fmt.Sprintf("%02X", value),
	}).Warnf("bus: unrouted write")
}

// Read16 reads a little-endian 16-bit value, low byte first.
func (b *Bus) Read16(address uint16) uint16 {
	low := b.Read(address)
	high := b.Read(address + 1)
	return utils.BytesToUint16(high, low)
}

// Write16 writes a little-endian 16-bit value, low byte first.
func (b *Bus) Write16(address uint16, value uint16) {
	high, low := utils.Uint16ToBytes(value)
	b.Write(address, low)
	b.Write(address+1, high)
}

func (b *Bus) mirrorFor(address uint16) (mirror, bool) {
	for _, m := range b.mirrors {
		if m.contains(address) {
			return m, true
		}
	}
	return mirror{}, false
}
