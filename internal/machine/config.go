// Package machine assembles a CPU, its bus and the devices attached to
// it from a declarative memory map, and serializes access to them.
package machine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/thelolagemann/gbz80/internal/cpu"
	"gopkg.in/yaml.v3"
)

// Region kinds.
const (
	KindROM       = "rom"
	KindRAM       = "ram"
	KindRegisters = "registers"
)

// Region is a device occupying the inclusive range [First, Last].
type Region struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	First uint16 `yaml:"first"`
	Last  uint16 `yaml:"last"`
}

func (r Region) contains(address uint16) bool {
	return address >= r.First && address <= r.Last
}

func (r Region) size() int {
	return int(r.Last) - int(r.First) + 1
}

// Mirror redirects unclaimed accesses in [First, Last] to address-Offset.
type Mirror struct {
	First  uint16 `yaml:"first"`
	Last   uint16 `yaml:"last"`
	Offset uint16 `yaml:"offset"`
}

// Span is an inclusive address range.
type Span struct {
	First uint16 `yaml:"first"`
	Last  uint16 `yaml:"last"`
}

// Config describes a machine: which CPU it runs, where execution starts
// and what is attached to the bus.
type Config struct {
	Variant string `yaml:"variant"`
	PC      uint16 `yaml:"pc"`
	SP      uint16 `yaml:"sp"`
	// Load is the address the program image is copied to. It must fall
	// inside a rom or ram region.
	Load uint16 `yaml:"load"`

	Regions  []Region `yaml:"regions"`
	Mirrors  []Mirror `yaml:"mirrors,omitempty"`
	Reserved []Span   `yaml:"reserved,omitempty"`
	// Divider, when set, is the address of a free-running divider
	// derived from the host clock.
	Divider *uint16 `yaml:"divider,omitempty"`
	// Ports adds a RAM-backed Z80 port space, so OUT followed by IN on
	// the same port reads back what was written.
	Ports bool `yaml:"ports,omitempty"`
}

// DividerAddress is where the console's divider register lives.
const DividerAddress uint16 = 0xFF04

// DefaultConfig returns the standard memory map for variant: the
// console's map for the LR35902, and a flat 64K of RAM for the Z80.
func DefaultConfig(variant cpu.Variant) Config {
	if variant == cpu.Z80 {
		return Config{
			Variant: "z80",
			PC:      0x0000,
			SP:      0xFFFF,
			Load:    0x0000,
			Regions: []Region{
				{Name: "memory", Kind: KindRAM, First: 0x0000, Last: 0xFFFF},
			},
			Ports: true,
		}
	}

	divider := DividerAddress
	return Config{
		Variant: "lr35902",
		PC:      0x0100,
		SP:      0xFFFE,
		Load:    0x0000,
		Regions: []Region{
			{Name: "rom", Kind: KindROM, First: 0x0000, Last: 0x7FFF},
			{Name: "vram", Kind: KindRAM, First: 0x8000, Last: 0x9FFF},
			{Name: "extram", Kind: KindRAM, First: 0xA000, Last: 0xBFFF},
			{Name: "wram", Kind: KindRAM, First: 0xC000, Last: 0xDFFF},
			{Name: "oam", Kind: KindRAM, First: 0xFE00, Last: 0xFE9F},
			{Name: "io", Kind: KindRegisters, First: 0xFF00, Last: 0xFF7F},
			{Name: "hram", Kind: KindRAM, First: 0xFF80, Last: 0xFFFE},
			{Name: "ie", Kind: KindRegisters, First: 0xFFFF, Last: 0xFFFF},
		},
		Mirrors: []Mirror{
			{First: 0xE000, Last: 0xFDFF, Offset: 0x2000},
		},
		Reserved: []Span{
			{First: 0xFEA0, Last: 0xFEFF},
		},
		Divider: &divider,
	}
}

// ParseConfig decodes a YAML config from r. Unknown keys are rejected.
// The result is not validated.
func ParseConfig(r io.Reader) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return c, fmt.Errorf("machine: empty config")
		}
		return c, fmt.Errorf("machine: parsing config: %w", err)
	}
	return c, nil
}

// LoadConfig reads, parses and validates the YAML config in filename.
func LoadConfig(filename string) (Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("machine: reading config: %w", err)
	}
	c, err := ParseConfig(bytes.NewReader(raw))
	if err != nil {
		return c, fmt.Errorf("%s: %w", filename, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// CPUVariant returns the parsed variant.
func (c Config) CPUVariant() (cpu.Variant, error) {
	v, ok := cpu.ParseVariant(c.Variant)
	if !ok {
		return 0, fmt.Errorf("unknown variant %q", c.Variant)
	}
	return v, nil
}

// Validate reports every problem with c, not just the first.
func (c Config) Validate() error {
	var result *multierror.Error

	if _, err := c.CPUVariant(); err != nil {
		result = multierror.Append(result, err)
	}
	if len(c.Regions) == 0 {
		result = multierror.Append(result, errors.New("no regions"))
	}

	names := make(map[string]bool)
	for i, r := range c.Regions {
		if r.Name == "" {
			result = multierror.Append(result, fmt.Errorf("region %d: missing name", i))
		} else if names[r.Name] {
			result = multierror.Append(result, fmt.Errorf("region %q: duplicate name", r.Name))
		}
		names[r.Name] = true

		switch r.Kind {
		case KindROM, KindRAM, KindRegisters:
		default:
			result = multierror.Append(result, fmt.Errorf("region %q: unknown kind %q", r.Name, r.Kind))
		}
		if r.Last < r.First {
			result = multierror.Append(result, fmt.Errorf("region %q: last %04X before first %04X", r.Name, r.Last, r.First))
			continue
		}
		for _, other := range c.Regions[:i] {
			if other.Last >= other.First && r.First <= other.Last && other.First <= r.Last {
				result = multierror.Append(result, fmt.Errorf("region %q overlaps %q", r.Name, other.Name))
			}
		}
	}

	if load, ok := c.region(c.Load); !ok || load.Kind == KindRegisters {
		result = multierror.Append(result, fmt.Errorf("load address %04X is not in a rom or ram region", c.Load))
	}

	for _, m := range c.Mirrors {
		if m.Last < m.First || m.Offset == 0 || m.Offset > m.First {
			result = multierror.Append(result, fmt.Errorf("mirror %04X-%04X: invalid offset %04X", m.First, m.Last, m.Offset))
		}
	}
	for _, s := range c.Reserved {
		if s.Last < s.First {
			result = multierror.Append(result, fmt.Errorf("reserved %04X-%04X: last before first", s.First, s.Last))
		}
	}
	if c.Divider != nil {
		if r, ok := c.region(*c.Divider); ok && r.Kind != KindRegisters {
			result = multierror.Append(result, fmt.Errorf("divider %04X is claimed by %s region %q", *c.Divider, r.Kind, r.Name))
		}
	}

	return result.ErrorOrNil()
}

// region returns the first region containing address.
func (c Config) region(address uint16) (Region, bool) {
	for _, r := range c.Regions {
		if r.contains(address) {
			return r, true
		}
	}
	return Region{}, false
}
