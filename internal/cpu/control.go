package cpu

import "fmt"

// halted and stopped are returned by Step while the CPU waits in HALT or
// STOP mode.
var (
	halted  Instruction = &HALT{meta{1, Both}}
	stopped Instruction = &STOP{meta{2, LR35902}}
)

// HALT suspends instruction fetching until Resume is called.
type HALT struct{ meta }

func (i *HALT) Execute(c *CPU) { c.mode = ModeHalt }
func (i *HALT) String() string { return "HALT" }

// STOP enters the LR35902's very low power mode. It is encoded with a
// trailing 0x00 byte.
type STOP struct{ meta }

func (i *STOP) Execute(c *CPU) { c.mode = ModeStop }
func (i *STOP) String() string { return "STOP" }

// DI disables interrupts once the following instruction has executed.
type DI struct{ meta }

func (i *DI) Execute(c *CPU) { c.interrupt.record(interruptPendingDisable) }
func (i *DI) String() string { return "DI" }

// EI enables interrupts once the following instruction has executed.
type EI struct{ meta }

func (i *EI) Execute(c *CPU) { c.interrupt.record(interruptPendingEnable) }
func (i *EI) String() string { return "EI" }

// IM selects the Z80's interrupt mode.
type IM struct {
	meta
	mode uint8
}

func (i *IM) Execute(c *CPU) { c.Ext.IM = i.mode }
func (i *IM) String() string { return fmt.Sprintf("IM %d", i.mode) }
