package machine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/gbz80/internal/bus"
	"github.com/thelolagemann/gbz80/internal/cpu"
)

// cartridge returns a ROM image with code placed at the entry point.
func cartridge(code ...byte) []byte {
	image := make([]byte, 0x0150)
	copy(image[0x0100:], code)
	return image
}

func newGameBoy(t *testing.T, code ...byte) *Machine {
	t.Helper()
	m, err := New(DefaultConfig(cpu.LR35902), cartridge(code...))
	require.NoError(t, err)
	return m
}

func TestMachine_GameBoyMemoryMap(t *testing.T) {
	m := newGameBoy(t,
		0x3E, 0x42, // LD A,$42
		0xEA, 0x00, 0xC0, // LD ($C000),A
		0xFA, 0x00, 0xE0, // LD A,($E000)
		0x47, // LD B,A
		0x76, // HALT
	)

	last := m.StepN(100)
	assert.IsType(t, &cpu.HALT{}, last)
	assert.Equal(t, uint64(5), m.Steps())

	m.Inspect(func(c *cpu.CPU) {
		assert.True(t, c.Halted())
		assert.Equal(t, uint8(0x42), c.B.Read(), "echo RAM mirrors work RAM")
		assert.Equal(t, uint16(0xFFFE), c.SP.Read())
	})

	m.Peripheral(func(b *bus.Bus) {
		b.Write(0x0100, 0x00)
		assert.Equal(t, uint8(0x3E), b.Read(0x0100), "ROM ignores writes")

		b.Write(0xFF40, 0x91)
		assert.Equal(t, uint8(0x91), b.Read(0xFF40), "I/O registers latch writes")

		b.Write(0xFFFF, 0x1F)
		assert.Equal(t, uint8(0x1F), b.Read(0xFFFF))

		b.Write(0xFEA0, 0x12)
		assert.Equal(t, uint8(0), b.Read(0xFEA0), "reserved range discards writes")

		b.Write(0xFDFF, 0x77)
		assert.Equal(t, uint8(0x77), b.Read(0xDDFF))
	})

	m.Resume()
	m.Inspect(func(c *cpu.CPU) { assert.False(t, c.Halted()) })
}

func TestMachine_Divider(t *testing.T) {
	epoch := time.Unix(1000, 0)
	now := epoch
	m, err := New(DefaultConfig(cpu.LR35902), nil, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	tick := time.Second / DividerRate
	m.Peripheral(func(b *bus.Bus) {
		assert.Equal(t, uint8(0), b.Read(DividerAddress))

		now = epoch.Add(10 * tick)
		assert.Equal(t, uint8(10), b.Read(DividerAddress))

		now = epoch.Add(266 * tick)
		assert.Equal(t, uint8(10), b.Read(DividerAddress), "divider wraps at 256")
	})
}

func TestMachine_Z80Ports(t *testing.T) {
	m, err := New(DefaultConfig(cpu.Z80), []byte{
		0x3E, 0x7F, // LD A,$7F
		0xD3, 0x10, // OUT ($10),A
		0x3E, 0x7F, // LD A,$7F
		0xDB, 0x10, // IN A,($10)
		0x76, // HALT
	})
	require.NoError(t, err)
	assert.Equal(t, cpu.Z80, m.Variant())

	m.StepN(2)
	assert.Equal(t, uint8(0x7F), m.ports.Read(0x7F10))

	m.StepN(10)
	m.Inspect(func(c *cpu.CPU) {
		assert.True(t, c.Halted())
		assert.Equal(t, uint8(0x7F), c.A.Read())
	})
}

func TestMachine_CallSubroutine(t *testing.T) {
	image := cartridge()
	copy(image[0x0120:], []byte{0x3E, 0x99, 0xC9}) // LD A,$99; RET
	m, err := New(DefaultConfig(cpu.LR35902), image)
	require.NoError(t, err)

	require.NoError(t, m.CallSubroutine(0x0120))
	assert.Equal(t, uint64(2), m.Steps(), "subroutine steps are counted")
	m.Inspect(func(c *cpu.CPU) {
		assert.Equal(t, uint8(0x99), c.A.Read())
		assert.Equal(t, uint16(0x0100), c.PC.Read())
		assert.Equal(t, uint16(0xFFFE), c.SP.Read())
	})

	z80, err := New(DefaultConfig(cpu.Z80), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, z80.CallSubroutine(0x0000), cpu.ErrUnsupported)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(DefaultConfig(cpu.LR35902), make([]byte, 0x8001))
	assert.ErrorContains(t, err, `overflows region "rom"`)

	c := DefaultConfig(cpu.Z80)
	c.Variant = "6809"
	_, err = New(c, nil)
	assert.ErrorContains(t, err, "machine: invalid config")
}

func TestMachine_LoadIntoRAM(t *testing.T) {
	c := DefaultConfig(cpu.Z80)
	c.Load = 0x8000
	c.PC = 0x8000
	m, err := New(c, []byte{0x06, 0x12, 0x76}) // LD B,$12; HALT
	require.NoError(t, err)

	m.StepN(5)
	m.Inspect(func(c *cpu.CPU) {
		assert.Equal(t, uint8(0x12), c.B.Read())
		assert.Equal(t, uint16(0x8003), c.PC.Read())
	})
}

func TestMachine_Run(t *testing.T) {
	m := newGameBoy(t,
		0xFA, 0x00, 0xC0, // LD A,($C000)
		0x18, 0xFB, // JR -5
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			m.Peripheral(func(b *bus.Bus) { b.Write(0xC000, b.Read(0xC000)+1) })
			time.Sleep(time.Millisecond)
		}
	}()

	err := m.Run(ctx, time.Millisecond, 10)
	wg.Wait()

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, m.Steps(), uint64(0))
	m.Inspect(func(c *cpu.CPU) {
		pc := c.PC.Read()
		assert.True(t, pc == 0x0100 || pc == 0x0103, "PC %04X stays in the loop", pc)
	})
}

func TestMachine_State(t *testing.T) {
	m := newGameBoy(t, 0x3E, 0x42, 0xEA, 0x00, 0xC0, 0x76)
	m.StepN(3)
	m.Peripheral(func(b *bus.Bus) {
		b.Write(0xFF40, 0x91)
		b.Write(0xFFFF, 0x1F)
		b.Write(0xFF80, 0x77)
	})

	file := filepath.Join(t.TempDir(), "state.bin")
	require.NoError(t, m.SaveState(file))

	restored := newGameBoy(t)
	require.NoError(t, restored.LoadState(file))
	restored.Inspect(func(c *cpu.CPU) {
		assert.Equal(t, uint8(0x42), c.A.Read())
		assert.True(t, c.Halted())
	})
	restored.Peripheral(func(b *bus.Bus) {
		assert.Equal(t, uint8(0x42), b.Read(0xC000))
		assert.Equal(t, uint8(0x91), b.Read(0xFF40), "I/O latches are restored")
		assert.Equal(t, uint8(0x1F), b.Read(0xFFFF), "IE is restored")
		assert.Equal(t, uint8(0x77), b.Read(0xFF80))
	})

	short := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(short, []byte{1, 2, 3}, 0644))
	assert.ErrorContains(t, restored.LoadState(short), "holds 3 bytes")

	assert.ErrorIs(t, restored.LoadState(filepath.Join(t.TempDir(), "missing")), os.ErrNotExist)
}
