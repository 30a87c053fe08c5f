package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/davecgh/go-spew/spew"
	"github.com/thelolagemann/gbz80/internal/bus"
	"github.com/thelolagemann/gbz80/internal/cpu"
	"github.com/thelolagemann/gbz80/internal/machine"
)

// errQuit ends the command loop.
var errQuit = errors.New("quit")

var (
	commands    *cmd.Tree
	descriptors []cmd.CommandDescriptor
)

func command(d cmd.CommandDescriptor) {
	commands.AddCommand(d)
	descriptors = append(descriptors, d)
}

func init() {
	commands = cmd.NewTree(cmd.TreeDescriptor{Name: "gbz80"})
	command(cmd.CommandDescriptor{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*monitor).cmdHelp,
	})
	command(cmd.CommandDescriptor{
		Name:  "step",
		Brief: "Step the CPU",
		Description: "Execute one or more instructions, printing each one" +
			" with the address it was fetched from.",
		Usage: "step [<count>]",
		Data:  (*monitor).cmdStep,
	})
	command(cmd.CommandDescriptor{
		Name:        "registers",
		Brief:       "Display registers",
		Description: "Display the CPU registers.",
		Usage:       "registers",
		Data:        (*monitor).cmdRegisters,
	})
	command(cmd.CommandDescriptor{
		Name:        "memory",
		Brief:       "Dump memory",
		Description: "Dump memory as seen through the bus, 16 bytes per line.",
		Usage:       "memory <address> [<bytes>]",
		Data:        (*monitor).cmdMemory,
	})
	command(cmd.CommandDescriptor{
		Name:        "write",
		Brief:       "Write memory",
		Description: "Write one or more bytes to consecutive addresses through the bus.",
		Usage:       "write <address> <byte> [<byte>...]",
		Data:        (*monitor).cmdWrite,
	})
	command(cmd.CommandDescriptor{
		Name:  "disassemble",
		Brief: "Disassemble code",
		Description: "Decode instructions without executing them. Without an" +
			" address, disassembly starts at PC.",
		Usage: "disassemble [<address>] [<lines>]",
		Data:  (*monitor).cmdDisassemble,
	})
	command(cmd.CommandDescriptor{
		Name:  "until",
		Brief: "Run until an instruction",
		Description: "Step until the CPU executes an instruction of the named" +
			" kind: halt, ret, call, jp or jr. Gives up after limit steps.",
		Usage: "until <kind> [<limit>]",
		Data:  (*monitor).cmdUntil,
	})
	command(cmd.CommandDescriptor{
		Name:  "call",
		Brief: "Call a subroutine",
		Description: "Push PC, jump to the address and run until the" +
			" subroutine returns.",
		Usage: "call <address>",
		Data:  (*monitor).cmdCall,
	})
	command(cmd.CommandDescriptor{
		Name:        "resume",
		Brief:       "Leave HALT or STOP",
		Description: "Wake a halted CPU so that stepping continues.",
		Usage:       "resume",
		Data:        (*monitor).cmdResume,
	})
	command(cmd.CommandDescriptor{
		Name:        "bus",
		Brief:       "List bus bindings",
		Description: "List the devices attached to the bus, in resolution order.",
		Usage:       "bus",
		Data:        (*monitor).cmdBus,
	})
	command(cmd.CommandDescriptor{
		Name:        "state",
		Brief:       "Dump machine state",
		Description: "Dump the machine config and CPU registers in detail.",
		Usage:       "state",
		Data:        (*monitor).cmdState,
	})
	command(cmd.CommandDescriptor{
		Name:        "save",
		Brief:       "Save a snapshot",
		Description: "Save the CPU and RAM contents to a file.",
		Usage:       "save <filename>",
		Data:        (*monitor).cmdSave,
	})
	command(cmd.CommandDescriptor{
		Name:        "load",
		Brief:       "Load a snapshot",
		Description: "Restore a snapshot written by save.",
		Usage:       "load <filename>",
		Data:        (*monitor).cmdLoad,
	})
	command(cmd.CommandDescriptor{
		Name:        "quit",
		Brief:       "Quit",
		Description: "Leave the monitor.",
		Usage:       "quit",
		Data:        (*monitor).cmdQuit,
	})
}

// monitor is an interactive command loop over a machine.
type monitor struct {
	m       *machine.Machine
	input   *bufio.Scanner
	output  *bufio.Writer
	lastCmd *cmd.Selection
	dumper  *spew.ConfigState
}

func newMonitor(m *machine.Machine) *monitor {
	return &monitor{
		m: m,
		dumper: &spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		},
	}
}

// run reads commands from r until it is exhausted or quit is entered.
// An empty line repeats the previous command.
func (mon *monitor) run(r io.Reader, w io.Writer, interactive bool) {
	mon.input = bufio.NewScanner(r)
	mon.output = bufio.NewWriter(w)
	defer mon.output.Flush()

	for {
		if interactive {
			mon.printf("* ")
			mon.output.Flush()
		}
		if !mon.input.Scan() {
			return
		}
		line := strings.TrimSpace(mon.input.Text())

		var sel cmd.Selection
		if line != "" {
			var err error
			sel, err = commands.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				mon.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				mon.println("Command is ambiguous.")
				continue
			case err != nil:
				mon.printf("ERROR: %v.\n", err)
				continue
			}
		} else if mon.lastCmd != nil {
			sel = *mon.lastCmd
		}
		if sel.Command == nil {
			continue
		}
		mon.lastCmd = &sel

		fn := sel.Command.Data.(func(*monitor, cmd.Selection) error)
		if err := fn(mon, sel); err != nil {
			if errors.Is(err, errQuit) {
				return
			}
			mon.printf("ERROR: %v.\n", err)
		}
	}
}

func (mon *monitor) printf(format string, args ...interface{}) {
	fmt.Fprintf(mon.output, format, args...)
}

func (mon *monitor) println(args ...interface{}) {
	fmt.Fprintln(mon.output, args...)
}

// parseNumber accepts decimal, 0x-prefixed and $-prefixed hex values.
func parseNumber(s string, bits int) (uint64, error) {
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func parseAddress(s string) (uint16, error) {
	v, err := parseNumber(s, 16)
	return uint16(v), err
}

// optional parses args[i] if present, returning def otherwise.
func optional(args []string, i int, def uint64, bits int) (uint64, error) {
	if len(args) <= i {
		return def, nil
	}
	return parseNumber(args[i], bits)
}

func (mon *monitor) cmdHelp(sel cmd.Selection) error {
	if len(sel.Args) == 0 {
		mon.println("gbz80 commands:")
		for _, d := range descriptors {
			if d.Brief != "" {
				mon.printf("    %-15s  %s\n", d.Name, d.Brief)
			}
		}
		return nil
	}

	s, err := commands.Lookup(strings.Join(sel.Args, " "))
	if err != nil {
		return err
	}
	for _, d := range descriptors {
		if d.Name == s.Command.Name {
			mon.printf("Syntax: %s\n\n", d.Usage)
			mon.printf("Description:\n   %s\n", d.Description)
		}
	}
	return nil
}

func (mon *monitor) cmdStep(sel cmd.Selection) error {
	n, err := optional(sel.Args, 0, 1, 32)
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		var pc uint16
		mon.m.Inspect(func(c *cpu.CPU) { pc = c.PC.Read() })
		instruction := mon.m.Step()
		if instruction == nil {
			mon.printf("%04X  ???\n", pc)
			continue
		}
		mon.printf("%04X  %s\n", pc, instruction)
	}
	return mon.cmdRegisters(sel)
}

func (mon *monitor) cmdRegisters(cmd.Selection) error {
	mon.m.Inspect(func(c *cpu.CPU) {
		mon.println(c.String())
		if c.Halted() {
			mon.println("(halted)")
		}
	})
	return nil
}

func (mon *monitor) cmdMemory(sel cmd.Selection) error {
	if len(sel.Args) < 1 {
		return errors.New("address required")
	}
	address, err := parseAddress(sel.Args[0])
	if err != nil {
		return err
	}
	n, err := optional(sel.Args, 1, 64, 16)
	if err != nil {
		return err
	}

	mon.m.Peripheral(func(b *bus.Bus) {
		for row := uint64(0); row < n; row += 16 {
			mon.printf("%04X ", address+uint16(row))
			for col := row; col < row+16 && col < n; col++ {
				mon.printf(" %02X", b.Read(address+uint16(col)))
			}
			mon.println()
		}
	})
	return nil
}

func (mon *monitor) cmdWrite(sel cmd.Selection) error {
	if len(sel.Args) < 2 {
		return errors.New("address and at least one byte required")
	}
	address, err := parseAddress(sel.Args[0])
	if err != nil {
		return err
	}
	data := make([]uint8, 0, len(sel.Args)-1)
	for _, arg := range sel.Args[1:] {
		v, err := parseNumber(arg, 8)
		if err != nil {
			return err
		}
		data = append(data, uint8(v))
	}

	mon.m.Peripheral(func(b *bus.Bus) {
		for i, v := range data {
			b.Write(address+uint16(i), v)
		}
	})
	return nil
}

func (mon *monitor) cmdDisassemble(sel cmd.Selection) error {
	var pc uint16
	mon.m.Inspect(func(c *cpu.CPU) { pc = c.PC.Read() })

	address, err := optional(sel.Args, 0, uint64(pc), 16)
	if err != nil {
		return err
	}
	lines, err := optional(sel.Args, 1, 10, 16)
	if err != nil {
		return err
	}

	mon.m.Inspect(func(c *cpu.CPU) {
		a := uint16(address)
		for i := uint64(0); i < lines; i++ {
			instruction := c.Decode(a)
			if instruction == nil {
				mon.printf("%04X  DB $%02X\n", a, c.Bus().Read(a))
				a++
				continue
			}
			mon.printf("%04X  %s\n", a, instruction)
			a += instruction.Length()
		}
	})
	return nil
}

// untilKinds maps the names accepted by until onto the instruction type
// that stops the run.
var untilKinds = map[string]func(c *cpu.CPU, limit int) (cpu.Instruction, bool){
	"halt": runUntil[*cpu.HALT],
	"ret":  runUntil[*cpu.RET],
	"call": runUntil[*cpu.CALL],
	"jp":   runUntil[*cpu.JP],
	"jr":   runUntil[*cpu.JR],
}

func runUntil[T cpu.Instruction](c *cpu.CPU, limit int) (cpu.Instruction, bool) {
	return cpu.RunUntil[T](c, limit)
}

func (mon *monitor) cmdUntil(sel cmd.Selection) error {
	if len(sel.Args) < 1 {
		return errors.New("instruction kind required")
	}
	fn, ok := untilKinds[strings.ToLower(sel.Args[0])]
	if !ok {
		return fmt.Errorf("unknown instruction kind %q", sel.Args[0])
	}
	limit, err := optional(sel.Args, 1, 100000, 31)
	if err != nil {
		return err
	}

	mon.m.Inspect(func(c *cpu.CPU) {
		instruction, found := fn(c, int(limit))
		if !found {
			mon.printf("No %s within %d steps.\n", sel.Args[0], limit)
			return
		}
		mon.printf("Stopped after %s.\n", instruction)
	})
	return mon.cmdRegisters(sel)
}

func (mon *monitor) cmdCall(sel cmd.Selection) error {
	if len(sel.Args) < 1 {
		return errors.New("address required")
	}
	address, err := parseAddress(sel.Args[0])
	if err != nil {
		return err
	}
	if err := mon.m.CallSubroutine(address); err != nil {
		return err
	}
	return mon.cmdRegisters(sel)
}

func (mon *monitor) cmdResume(cmd.Selection) error {
	mon.m.Resume()
	return nil
}

func (mon *monitor) cmdBus(cmd.Selection) error {
	mon.m.Peripheral(func(b *bus.Bus) {
		reads, writes := b.Bindings()
		mon.println("Reads:")
		for _, binding := range reads {
			mon.printf("    %s\n", binding)
		}
		mon.println("Writes:")
		for _, binding := range writes {
			mon.printf("    %s\n", binding)
		}
	})
	return nil
}

func (mon *monitor) cmdState(cmd.Selection) error {
	mon.printf("%s", mon.dumper.Sdump(mon.m.Config()))
	mon.m.Inspect(func(c *cpu.CPU) {
		mon.printf("%s", mon.dumper.Sdump(c.Registers))
		if c.Ext != nil {
			mon.printf("%s", mon.dumper.Sdump(c.Ext))
		}
		mon.printf("IFF1=%t IFF2=%t pending=%t halted=%t\n", c.IFF1, c.IFF2, c.Pending(), c.Halted())
	})
	return nil
}

func (mon *monitor) cmdSave(sel cmd.Selection) error {
	if len(sel.Args) < 1 {
		return errors.New("filename required")
	}
	return mon.m.SaveState(sel.Args[0])
}

func (mon *monitor) cmdLoad(sel cmd.Selection) error {
	if len(sel.Args) < 1 {
		return errors.New("filename required")
	}
	return mon.m.LoadState(sel.Args[0])
}

func (mon *monitor) cmdQuit(cmd.Selection) error {
	return errQuit
}
