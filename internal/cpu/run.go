package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned for operations the CPU's variant does
	// not provide.
	ErrUnsupported = errors.New("cpu: unsupported by variant")
	// ErrHalted is returned when a subroutine halts before returning.
	ErrHalted = errors.New("cpu: halted")
)

// RunUntil steps c until it executes an instruction of type T, and
// returns that instruction. It gives up after limit steps, or never if
// limit is 0.
func RunUntil[T Instruction](c *CPU, limit int) (T, bool) {
	for n := 0; limit == 0 || n < limit; n++ {
		if instruction, ok := c.Step().(T); ok {
			return instruction, true
		}
	}
	var zero T
	return zero, false
}

// CallSubroutine pushes the current PC, jumps to address and steps until
// PC equals the pushed return address again. It blocks for as long as
// the subroutine runs: a subroutine that never returns never lets
// CallSubroutine return, unless it halts.
func (c *CPU) CallSubroutine(address uint16) error {
	if c.variant != LR35902 {
		return fmt.Errorf("%w: CallSubroutine on %s", ErrUnsupported, c.variant)
	}

	ret := c.PC.Read()
	c.Push(ret)
	c.PC.Write(address)
	for c.PC.Read() != ret {
		c.Step()
		if c.Halted() {
			return fmt.Errorf("%w: at %04X in subroutine %04X", ErrHalted, c.PC.Read(), address)
		}
	}
	return nil
}
