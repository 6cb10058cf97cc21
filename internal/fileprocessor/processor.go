// Package fileprocessor handles ROM loading and running a machine in the selected frontend
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/retroenv/chip8vm/internal/config"
	"github.com/retroenv/chip8vm/internal/detector"
	"github.com/retroenv/chip8vm/internal/driver"
	"github.com/retroenv/chip8vm/internal/frontend/terminal"
	"github.com/retroenv/chip8vm/internal/frontend/window"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/screenshot"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile handles the complete workflow of running a ROM file
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, machineOpts options.Machine) error {
	opts.Frontend = detector.New(logger).Detect(opts.Frontend, detector.HostEnvironment())
	// a headless run has no user that could stop a halted machine
	if opts.Frontend == options.FrontendHeadless {
		machineOpts.StopOnHalt = true
	}

	var beep func()
	if opts.Frontend == options.FrontendTerminal {
		beep = terminal.Beep
	}

	m := config.CreateMachine(logger, machineOpts, beep)
	if err := m.LoadFile(opts.Input); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	logger.Debug("ROM loaded", log.String("file", opts.Input))

	runErr := run(ctx, logger, m, opts, machineOpts)

	if opts.Screenshot != "" {
		if err := screenshot.WriteFile(opts.Screenshot, m.FrameBuffer(), opts.Scale); err != nil {
			return errors.Join(runErr, fmt.Errorf("writing screenshot: %w", err))
		}
		logger.Info("Screenshot written", log.String("file", opts.Screenshot))
	}
	return runErr
}

func run(ctx context.Context, logger *log.Logger, m *machine.Machine,
	opts options.Program, machineOpts options.Machine) error {

	switch opts.Frontend {
	case options.FrontendWindow:
		return window.Run(ctx, logger, m, machineOpts, opts.Scale)

	case options.FrontendTerminal:
		return terminal.Run(ctx, logger, m, machineOpts)

	default:
		d := driver.New(logger, m, nil, nil, machineOpts)
		err := d.Run(ctx)

		state := m.State()
		logger.Info("Execution finished",
			log.Int("cycles", int(d.Cycles())),
			log.Int("frames", int(d.Frames())),
			log.Hex("pc", state.PC),
			log.Hex("i", state.I),
			log.String("v", fmt.Sprintf("% X", state.V[:])))
		return err
	}
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("chip8vm", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
