package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/gbz80/internal/bus"
	"github.com/thelolagemann/gbz80/internal/cpu"
	"github.com/thelolagemann/gbz80/internal/machine"
)

func newTestMachine(t *testing.T) *machine.Machine {
	t.Helper()
	image := make([]byte, 0x0150)
	copy(image[0x0100:], []byte{
		0x3E, 0x42, // LD A,$42
		0xEA, 0x00, 0xC0, // LD ($C000),A
		0x76, // HALT
	})
	copy(image[0x0120:], []byte{0x3E, 0x99, 0xC9}) // LD A,$99; RET

	m, err := machine.New(machine.DefaultConfig(cpu.LR35902), image)
	require.NoError(t, err)
	return m
}

func runScript(t *testing.T, m *machine.Machine, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	newMonitor(m).run(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, false)
	return out.String()
}

func TestMonitor_Memory(t *testing.T) {
	m := newTestMachine(t)
	out := runScript(t, m,
		"step 2",
		"memory $C000 4",
		"write $C001 1 0x02",
		"memory $C000 3",
	)

	assert.Contains(t, out, "0100  LD A,$42\n")
	assert.Contains(t, out, "0102  LD ($C000),A\n")
	assert.Contains(t, out, "C000  42 00 00 00\n")
	assert.Contains(t, out, "C000  42 01 02\n")
}

func TestMonitor_Disassemble(t *testing.T) {
	m := newTestMachine(t)
	out := runScript(t, m, "disassemble $0100 3")

	assert.Contains(t, out, "0100  LD A,$42\n0102  LD ($C000),A\n0105  HALT\n")
	m.Inspect(func(c *cpu.CPU) {
		assert.Equal(t, uint16(0x0100), c.PC.Read(), "disassembly does not execute")
	})
}

func TestMonitor_Control(t *testing.T) {
	m := newTestMachine(t)
	out := runScript(t, m,
		"step 2",
		"call $0120",
		"until halt",
		"resume",
		"registers",
	)

	assert.Contains(t, out, "A:99")
	assert.Contains(t, out, "Stopped after HALT.")
	assert.Contains(t, out, "(halted)")
	m.Inspect(func(c *cpu.CPU) {
		assert.False(t, c.Halted())
		assert.Equal(t, uint16(0x0106), c.PC.Read())
	})
	// two steps, two in the subroutine and the HALT
	assert.Equal(t, uint64(5), m.Steps())
}

func TestMonitor_Inspection(t *testing.T) {
	m := newTestMachine(t)
	out := runScript(t, m, "bus", "state")

	assert.Contains(t, out, "rom 0000-7FFF")
	assert.Contains(t, out, "io FF05-FF7F")
	assert.Contains(t, out, "Variant: (string) (len=7) \"lr35902\"")
	assert.Contains(t, out, "IFF1=false IFF2=false pending=false halted=false")
}

func TestMonitor_Help(t *testing.T) {
	out := runScript(t, newTestMachine(t), "help", "help step")

	assert.Contains(t, out, "gbz80 commands:")
	assert.Contains(t, out, "    step             Step the CPU\n")
	assert.Contains(t, out, "Syntax: step [<count>]")
}

func TestMonitor_Errors(t *testing.T) {
	m := newTestMachine(t)
	out := runScript(t, m,
		"bogus",
		"memory",
		"memory $GGGG",
		"until nothing",
		"quit",
		"write $C000 $FF",
	)

	assert.Contains(t, out, "Command not found.")
	assert.Contains(t, out, "ERROR: address required.")
	assert.Contains(t, out, `ERROR: invalid number "0xGGGG".`)
	assert.Contains(t, out, `ERROR: unknown instruction kind "nothing".`)
	m.Peripheral(func(b *bus.Bus) {
		assert.Equal(t, uint8(0), b.Read(0xC000), "commands after quit are not run")
	})
}

func TestMonitor_Snapshot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "snapshot")
	m := newTestMachine(t)
	runScript(t, m, "step 3", "save "+file)

	restored := newTestMachine(t)
	out := runScript(t, restored, "load "+file, "registers")
	assert.Contains(t, out, "A:42")
	assert.Contains(t, out, "(halted)")
}
