package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/thelolagemann/gbz80/internal/cpu"
	"github.com/thelolagemann/gbz80/internal/machine"
	"github.com/thelolagemann/gbz80/pkg/log"
	"github.com/thelolagemann/gbz80/pkg/utils"
)

func main() {
	configFile := flag.String("config", "", "YAML memory map to build the machine from")
	variantName := flag.String("variant", "lr35902", "The CPU to emulate when no config is given. Can be z80 or lr35902")
	steps := flag.Int("steps", 1000, "The number of instructions to execute in batch mode")
	runFor := flag.Duration("run", 0, "Run on a timer for this long instead of a fixed number of steps")
	interval := flag.Duration("interval", time.Millisecond, "The timer interval when running with -run")
	state := flag.String("state", "", "A snapshot to restore before running")
	level := flag.String("log", "info", "The log level")
	interactive := flag.Bool("monitor", false, "Start the interactive monitor")
	dumpConfig := flag.Bool("dump-config", false, "Print the effective config and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [program]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	logLevel, err := log.ParseLevel(*level)
	if err != nil {
		fatal(err)
	}
	logger := log.NewWithWriter(os.Stderr, logLevel)

	config, err := loadConfig(*configFile, *variantName)
	if err != nil {
		fatal(err)
	}
	if *dumpConfig {
		raw, err := config.Marshal()
		if err != nil {
			fatal(err)
		}
		os.Stdout.Write(raw)
		return
	}

	var program []byte
	if flag.NArg() > 0 {
		program, err = utils.LoadFile(flag.Arg(0))
		if err != nil {
			fatal(err)
		}
		log.WithFields(logger, log.Fields{
			"file":     flag.Arg(0),
			"size":     len(program),
			"checksum": fmt.Sprintf("%016X", utils.Checksum(program)),
		}).Infof("loaded program")
	}

	m, err := machine.New(config, program, machine.WithLogger(logger))
	if err != nil {
		fatal(err)
	}
	if *state != "" {
		if err := m.LoadState(*state); err != nil {
			fatal(err)
		}
	}

	switch {
	case *interactive:
		newMonitor(m).run(os.Stdin, os.Stdout, true)
		return
	case *runFor > 0:
		ctx, cancel := context.WithTimeout(context.Background(), *runFor)
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		err = m.Run(ctx, *interval, *steps)
		stop()
		cancel()
		logger.Infof("stopped after %d steps: %v", m.Steps(), err)
	default:
		last := m.StepN(*steps)
		if last != nil {
			logger.Debugf("last instruction: %s", last)
		}
	}

	m.Inspect(func(c *cpu.CPU) {
		fmt.Println(c.String())
	})
}

// loadConfig reads filename, or falls back to the default map for the
// named variant.
func loadConfig(filename, variantName string) (machine.Config, error) {
	if filename != "" {
		return machine.LoadConfig(filename)
	}
	variant, ok := cpu.ParseVariant(variantName)
	if !ok {
		return machine.Config{}, fmt.Errorf("unknown variant %q", variantName)
	}
	return machine.DefaultConfig(variant), nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "gbz80:", err)
	os.Exit(1)
}
