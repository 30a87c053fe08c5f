package machine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thelolagemann/gbz80/internal/bus"
	"github.com/thelolagemann/gbz80/internal/cpu"
	"github.com/thelolagemann/gbz80/internal/io"
	"github.com/thelolagemann/gbz80/internal/ram"
	"github.com/thelolagemann/gbz80/internal/types"
	"github.com/thelolagemann/gbz80/pkg/log"
)

// DividerRate is how often the divider increments, in Hz.
const DividerRate = 16384

// Machine is a CPU together with its bus and devices. Every method takes
// the machine's lock, so a host may step the CPU from one goroutine while
// another touches peripherals through Peripheral.
type Machine struct {
	mu sync.Mutex

	cpu     *cpu.CPU
	bus     *bus.Bus
	ports   *bus.Bus
	regions map[string]types.Device

	config Config
	log    log.Logger
	now    func() time.Time
	epoch  time.Time
}

// Opt is a function that configures a Machine.
type Opt func(m *Machine)

// WithLogger sets the logger handed to the CPU and bus.
func WithLogger(l log.Logger) Opt {
	return func(m *Machine) {
		m.log = l
	}
}

// WithClock replaces the clock the divider is derived from.
func WithClock(now func() time.Time) Opt {
	return func(m *Machine) {
		m.now = now
	}
}

// New builds the machine described by config with program copied to
// config.Load.
func New(config Config, program []byte, opts ...Opt) (*Machine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("machine: invalid config: %w", err)
	}
	variant, _ := config.CPUVariant()

	m := &Machine{
		regions: make(map[string]types.Device),
		config:  config,
		log:     log.NewNullLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.epoch = m.now()

	busOpts := []bus.Opt{bus.WithLogger(m.log)}
	for _, mirror := range config.Mirrors {
		busOpts = append(busOpts, bus.WithMirror(mirror.First, mirror.Last, mirror.Offset))
	}
	for _, s := range config.Reserved {
		busOpts = append(busOpts, bus.WithReserved(s.First, s.Last))
	}
	if config.Divider != nil {
		busOpts = append(busOpts, bus.WithPseudoRegister(*config.Divider, m.divider))
	}
	m.bus = bus.New(busOpts...)

	for _, region := range config.Regions {
		if err := m.attach(region, program); err != nil {
			return nil, err
		}
	}

	cpuOpts := []cpu.Opt{cpu.WithLogger(m.log)}
	if config.Ports {
		m.ports = bus.New(bus.WithLogger(m.log))
		m.ports.Attach("ports", ram.NewRAM(0x0000, 0xFFFF))
		cpuOpts = append(cpuOpts, cpu.WithPorts(m.ports))
	}
	m.cpu = cpu.New(variant, m.bus, cpuOpts...)
	m.cpu.SetProgramCounter(config.PC)
	m.cpu.SetStackPointer(config.SP)

	return m, nil
}

func (m *Machine) attach(region Region, program []byte) error {
	var image []byte
	if region.contains(m.config.Load) {
		offset := int(m.config.Load - region.First)
		if offset+len(program) > region.size() {
			return fmt.Errorf("machine: %d byte program at %04X overflows region %q (%04X-%04X)",
				len(program), m.config.Load, region.Name, region.First, region.Last)
		}
		image = program
	}

	switch region.Kind {
	case KindROM:
		var data []byte
		if image != nil {
			data = make([]byte, int(m.config.Load-region.First)+len(image))
			copy(data[m.config.Load-region.First:], image)
		}
		rom := ram.NewROM(region.First, region.size(), data)
		m.bus.Attach(region.Name, rom)
		m.regions[region.Name] = rom
	case KindRAM:
		mem := ram.NewRAM(region.First, region.Last)
		if image != nil {
			mem.LoadData(m.config.Load, image)
		}
		m.bus.Attach(region.Name, mem)
		m.regions[region.Name] = mem
	case KindRegisters:
		regs := io.New(region.First, region.Last)
		for address := int(region.First); address <= int(region.Last); address++ {
			if m.config.Divider != nil && uint16(address) == *m.config.Divider {
				continue
			}
			regs.Latch(uint16(address), fmt.Sprintf("%s%04X", region.Name, address))
		}
		regs.AttachTo(m.bus, region.Name)
		m.regions[region.Name] = regs
	}
	return nil
}

// divider counts up at DividerRate from the moment the machine was built.
func (m *Machine) divider() uint8 {
	return uint8(m.now().Sub(m.epoch) / (time.Second / DividerRate))
}

// Config returns the config the machine was built from.
func (m *Machine) Config() Config {
	return m.config
}

// Variant returns the variant of the machine's CPU.
func (m *Machine) Variant() cpu.Variant {
	return m.cpu.Variant()
}

// Step executes one instruction.
func (m *Machine) Step() cpu.Instruction {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cpu.Step()
}

// StepN executes up to n instructions, stopping early if the CPU halts,
// and returns the last instruction executed.
func (m *Machine) StepN(n int) cpu.Instruction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var last cpu.Instruction
	for i := 0; i < n && !m.cpu.Halted(); i++ {
		last = m.cpu.Step()
	}
	return last
}

// Steps returns the number of steps taken so far, however they were
// driven: Step, StepN, Run, CallSubroutine or the CPU directly through
// Inspect.
func (m *Machine) Steps() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Steps()
}

// CallSubroutine calls the subroutine at address and returns once it
// has returned. The lock is held throughout.
func (m *Machine) CallSubroutine(address uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.CallSubroutine(address)
}

// Resume wakes a halted CPU.
func (m *Machine) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpu.Resume()
}

// Peripheral runs fn with exclusive access to the memory bus.
func (m *Machine) Peripheral(fn func(b *bus.Bus)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.bus)
}

// Inspect runs fn with exclusive access to the CPU.
func (m *Machine) Inspect(fn func(c *cpu.CPU)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.cpu)
}

// Run steps the CPU in batches of steps every interval until ctx is
// done, and returns ctx's error. A halted CPU is left halted; the host
// decides when to Resume it.
func (m *Machine) Run(ctx context.Context, interval time.Duration, steps int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.StepN(steps)
		}
	}
}

var _ types.Stater = (*Machine)(nil)

// Save snapshots the CPU followed by every RAM and register region.
func (m *Machine) Save(s *types.State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cpu.Save(s)
	m.eachStater(func(st types.Stater) { st.Save(s) })
}

// Load restores a snapshot written by Save on a machine built from the
// same config.
func (m *Machine) Load(s *types.State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cpu.Load(s)
	m.eachStater(func(st types.Stater) { st.Load(s) })
}

// eachStater visits the regions holding state in config order, so Save
// and Load agree on the layout. ROM regions are skipped.
func (m *Machine) eachStater(fn func(st types.Stater)) {
	for _, region := range m.config.Regions {
		if st, ok := m.regions[region.Name].(types.Stater); ok {
			fn(st)
		}
	}
}

// SaveState writes a snapshot to filename.
func (m *Machine) SaveState(filename string) error {
	s := types.NewState()
	m.Save(s)
	if err := s.SaveToFile(filename); err != nil {
		return fmt.Errorf("machine: saving state: %w", err)
	}
	return nil
}

// LoadState restores a snapshot written by SaveState.
func (m *Machine) LoadState(filename string) error {
	s, err := types.StateFromFile(filename)
	if err != nil {
		return fmt.Errorf("machine: loading state: %w", err)
	}

	want := types.NewState()
	m.Save(want)
	if got := len(s.Bytes()); got != len(want.Bytes()) {
		return fmt.Errorf("machine: loading state: %s holds %d bytes, want %d", filename, got, len(want.Bytes()))
	}
	m.Load(s)
	return nil
}
