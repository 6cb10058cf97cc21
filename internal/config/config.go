// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateMachine creates a virtual machine configured by the given options.
// The beep callback is optional.
func CreateMachine(logger *log.Logger, opts options.Machine, beep func()) *machine.Machine {
	cpuOptions := []cpu.Option{
		cpu.WithQuirks(cpu.Quirks{FullJump: opts.FullJump}),
		cpu.WithTrace(opts.Trace),
		cpu.WithDecoupledTimers(opts.RealtimeTimers),
	}
	if opts.Seed != 0 {
		cpuOptions = append(cpuOptions, cpu.WithSeed(opts.Seed))
	}
	if beep != nil {
		cpuOptions = append(cpuOptions, cpu.WithBeep(beep))
	}

	return machine.New(logger,
		machine.WithFont(opts.Font),
		machine.WithCPUOptions(cpuOptions...),
	)
}
