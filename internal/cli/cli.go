// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/chip8vm/internal/options"
)

// ParseFlags parses command line flags and returns program and machine options
func ParseFlags() (options.Program, options.Machine, error) {
	return parseArgs(os.Args[0], os.Args[1:])
}

func parseArgs(name string, arguments []string) (options.Program, options.Machine, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	var opts options.Program
	machineOpts := options.NewMachine()
	var breakpoints string
	readOptionFlags(flags, &opts)
	readMachineOptionFlags(flags, &machineOpts, &breakpoints)

	err := flags.Parse(arguments)
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, options.Machine{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Machine{}, err
	}

	if err := normalizeOptions(&opts, &machineOpts); err != nil {
		return opts, options.Machine{}, err
	}

	machineOpts.Breakpoints, err = parseBreakpoints(breakpoints)
	if err != nil {
		return opts, options.Machine{}, err
	}

	opts.Input = args[0]
	machineOpts.Trace = opts.Trace
	return opts, machineOpts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8vm [options] <ROM file to run>\n\n")
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{msg: "only a single ROM file can be run"}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program, machineOpts *options.Machine) error {
	opts.Frontend = strings.ToLower(opts.Frontend)

	validFrontends := []string{options.FrontendAuto, options.FrontendWindow, options.FrontendTerminal, options.FrontendHeadless}
	valid := false
	for _, frontend := range validFrontends {
		if opts.Frontend == frontend {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
			opts.Frontend, strings.Join(validFrontends, ", "))
	}

	switch {
	case machineOpts.CyclesPerFrame <= 0:
		return fmt.Errorf("cycles per frame must be positive, got %d", machineOpts.CyclesPerFrame)
	case machineOpts.FrameRate < 0:
		return fmt.Errorf("frame rate can not be negative, got %d", machineOpts.FrameRate)
	}

	if opts.Scale <= 0 {
		opts.Scale = 10
	}

	// a headless run without any stop condition would never end on its own
	if opts.Frontend == options.FrontendHeadless {
		machineOpts.StopOnHalt = true
	}
	return nil
}

// parseBreakpoints parses a comma separated list of hex addresses.
// Addresses can be prefixed with $ or 0x.
func parseBreakpoints(list string) ([]uint16, error) {
	if list == "" {
		return nil, nil
	}

	var addresses []uint16
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		item = strings.TrimPrefix(item, "$")
		item = strings.TrimPrefix(strings.ToLower(item), "0x")

		address, err := strconv.ParseUint(item, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("parsing breakpoint '%s': %w", item, err)
		}
		if address > memory.MaxAddress {
			return nil, fmt.Errorf("breakpoint $%04X is outside of memory", address)
		}
		addresses = append(addresses, uint16(address))
	}
	return addresses, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Frontend, "frontend", options.FrontendAuto, "frontend to run the ROM in (auto/window/terminal/headless)")
	flags.StringVar(&opts.Screenshot, "screenshot", "", "write the last frame as PNG to this file on exit")
	flags.IntVar(&opts.Scale, "scale", 10, "pixel scale of the window and screenshot")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, requires -debug")
}

func readMachineOptionFlags(flags *flag.FlagSet, opts *options.Machine, breakpoints *string) {
	flags.IntVar(&opts.CyclesPerFrame, "cycles", opts.CyclesPerFrame, "processor cycles to run per frame")
	flags.IntVar(&opts.FrameRate, "fps", opts.FrameRate, "frames per second, 0 runs unthrottled")
	flags.Uint64Var(&opts.MaxCycles, "max-cycles", 0, "stop after this many cycles, 0 for no limit")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed for the random number generator, 0 picks a random seed")
	flags.StringVar(breakpoints, "break", "", "comma separated list of hex addresses that halt the machine")
	flags.BoolVar(&opts.Font, "font", opts.Font, "load the built-in hex digit font")
	flags.BoolVar(&opts.FullJump, "full-jump", false, "jump with offset across the full address space instead of 8 bits")
	flags.BoolVar(&opts.RealtimeTimers, "realtime-timers", false, "tick timers once per frame instead of once per cycle")
	flags.BoolVar(&opts.StopOnHalt, "exit-on-halt", false, "exit once the machine halted")
}
