package bus

import (
	"fmt"

	"github.com/thelolagemann/gbz80/pkg/log"
)

// Opt is a function that configures a Bus.
type Opt func(b *Bus)

type span struct {
	first, last uint16
}

func (s span) contains(address uint16) bool {
	return address >= s.first && address <= s.last
}

// mirror redirects unclaimed accesses in a span to address-offset.
type mirror struct {
	span
	offset uint16
}

// WithLogger sets the logger used to report unrouted writes.
func WithLogger(l log.Logger) Opt {
	return func(b *Bus) {
		b.log = l
	}
}

// WithMirror redirects reads and writes in [first, last] that no device
// claims to address-offset, e.g. the console's echo RAM at
// 0xE000-0xFDFF mirroring 0xC000-0xDDFF.
func WithMirror(first, last, offset uint16) Opt {
	if last < first || offset == 0 || offset > first {
		panic(fmt.Sprintf("bus: invalid mirror %04X-%04X offset %04X", first, last, offset))
	}
	return func(b *Bus) {
		b.mirrors = append(b.mirrors, mirror{span{first, last}, offset})
	}
}

// WithReserved accepts and discards writes to [first, last] that no
// device claims, modelling hardware that is present but not emulated.
func WithReserved(first, last uint16) Opt {
	if last < first {
		panic(fmt.Sprintf("bus: invalid reserved range %04X-%04X", first, last))
	}
	return func(b *Bus) {
		b.reserved = append(b.reserved, span{first, last})
	}
}

// WithPseudoRegister serves reads of address, when no device claims it,
// from fn. This is used for values derived from the host rather than
// held in memory, such as a free-running divider.
func WithPseudoRegister(address uint16, fn func() uint8) Opt {
	return func(b *Bus) {
		b.pseudo[address] = fn
	}
}
