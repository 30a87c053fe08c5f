package cpu

import "github.com/thelolagemann/gbz80/pkg/bits"

// result is the outcome of an arithmetic operation together with every
// flag either variant may derive from it. The helpers in this file are
// shared by both variants; instructions decide which of the flags they
// commit, and where.
type result struct {
	value     uint16
	zero      bool
	sign      bool
	halfCarry bool
	overflow  bool
	carry     bool
}

func (r result) u8() uint8 {
	return uint8(r.value)
}

func b2u(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

// add8 adds b and an optional carry to a.
//
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
//	V - Set if both operands share a sign the result does not.
func add8(a, b uint8, carry bool) result {
	cin := b2u(carry)
	sum := uint16(a) + uint16(b) + cin
	r := uint8(sum)
	return result{
		value:     uint16(r),
		zero:      r == 0,
		sign:      r&0x80 != 0,
		halfCarry: uint16(a&0xF)+uint16(b&0xF)+cin > 0xF,
		overflow:  (a^b)&0x80 == 0 && (a^r)&0x80 != 0,
		carry:     sum > 0xFF,
	}
}

// sub8 subtracts b and an optional borrow from a.
//
//	H - Set if borrow from bit 4.
//	C - Set if borrow.
//	V - Set if the operands differ in sign and the result's sign differs from a.
func sub8(a, b uint8, borrow bool) result {
	bin := int16(b2u(borrow))
	diff := int16(a) - int16(b) - bin
	r := uint8(diff)
	return result{
		value:     uint16(r),
		zero:      r == 0,
		sign:      r&0x80 != 0,
		halfCarry: int16(a&0xF)-int16(b&0xF)-bin < 0,
		overflow:  (a^b)&0x80 != 0 && (a^r)&0x80 != 0,
		carry:     diff < 0,
	}
}

// add16 adds b and an optional carry to a.
//
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
func add16(a, b uint16, carry bool) result {
	cin := uint32(b2u(carry))
	sum := uint32(a) + uint32(b) + cin
	r := uint16(sum)
	return result{
		value:     r,
		zero:      r == 0,
		sign:      r&0x8000 != 0,
		halfCarry: uint32(a&0xFFF)+uint32(b&0xFFF)+cin > 0xFFF,
		overflow:  (a^b)&0x8000 == 0 && (a^r)&0x8000 != 0,
		carry:     sum > 0xFFFF,
	}
}

// sub16 subtracts b and an optional borrow from a.
//
//	H - Set if borrow from bit 12.
//	C - Set if borrow.
func sub16(a, b uint16, borrow bool) result {
	bin := int32(b2u(borrow))
	diff := int32(a) - int32(b) - bin
	r := uint16(diff)
	return result{
		value:     r,
		zero:      r == 0,
		sign:      r&0x8000 != 0,
		halfCarry: int32(a&0xFFF)-int32(b&0xFFF)-bin < 0,
		overflow:  (a^b)&0x8000 != 0 && (a^r)&0x8000 != 0,
		carry:     diff < 0,
	}
}

// addSigned8 adds a signed displacement to a 16-bit value, computing the
// half-carry and carry from the unsigned addition of the low bytes, as
// the LR35902's ADD SP,e and LD HL,SP+e do.
func addSigned8(a uint16, e uint8) result {
	r := uint16(int32(a) + int32(int8(e)))
	return result{
		value:     r,
		halfCarry: (a&0xF)+uint16(e&0xF) > 0xF,
		carry:     (a&0xFF)+uint16(e) > 0xFF,
	}
}

// parity reports whether v has an even number of set bits.
func parity(v uint8) bool {
	return bits.Parity(v)
}
