// Package driver runs a virtual machine at a fixed cadence and connects it to
// a display and an input source.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Machine is the virtual machine that the driver advances.
type Machine interface {
	RunCycle() error
	TickTimers()
	Halted() bool
	SetHalted(halted bool)
	DrawReady() bool
	AcknowledgeFrame()
	FrameBuffer() [cpu.DisplaySize]byte
	ProgramCounter() uint16
}

// Display presents frames of the machine.
type Display interface {
	Present(frame [cpu.DisplaySize]byte) error
}

// Input is polled once before every frame to update the key state.
type Input interface {
	Poll() error
}

// Driver owns the execution cadence of a machine.
type Driver struct {
	logger  *log.Logger
	machine Machine
	display Display
	input   Input
	opts    options.Machine

	breakpoints set.Set[uint16]
	cycles      uint64
	frames      uint64
}

// New returns a new driver. Display and input are optional.
func New(logger *log.Logger, machine Machine, display Display, input Input, opts options.Machine) *Driver {
	breakpoints := set.New[uint16]()
	for _, address := range opts.Breakpoints {
		breakpoints.Add(address)
	}

	return &Driver{
		logger:      logger,
		machine:     machine,
		display:     display,
		input:       input,
		opts:        opts,
		breakpoints: breakpoints,
	}
}

// Run advances the machine one frame per tick of the configured frame rate
// until the context is canceled or a stop condition is met.
func (d *Driver) Run(ctx context.Context) error {
	var ticks <-chan time.Time
	if d.opts.FrameRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(d.opts.FrameRate))
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		if ticks != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticks:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		done, err := d.Frame()
		if err != nil || done {
			return err
		}
	}
}

// Frame polls the input, runs the configured number of cycles unless the
// machine is halted and presents the framebuffer if it changed.
// It returns true once a stop condition is met.
func (d *Driver) Frame() (bool, error) {
	if d.input != nil {
		if err := d.input.Poll(); err != nil {
			return true, err
		}
	}

	limitReached := d.runCycles()

	if d.opts.RealtimeTimers && !d.machine.Halted() {
		d.machine.TickTimers()
	}

	if err := d.present(); err != nil {
		return true, err
	}
	d.frames++

	if limitReached {
		d.logger.Info("Cycle limit reached", log.Int("cycles", int(d.cycles)))
		return true, nil
	}
	if d.machine.Halted() && d.opts.StopOnHalt {
		d.logger.Info("Machine halted",
			log.Hex("pc", d.machine.ProgramCounter()),
			log.Int("cycles", int(d.cycles)))
		return true, nil
	}
	return false, nil
}

// Cycles returns the number of executed cycles.
func (d *Driver) Cycles() uint64 {
	return d.cycles
}

// Frames returns the number of processed frames.
func (d *Driver) Frames() uint64 {
	return d.frames
}

// runCycles runs up to one frame worth of cycles and returns whether the
// cycle limit was reached.
func (d *Driver) runCycles() bool {
	for range d.opts.CyclesPerFrame {
		if d.machine.Halted() {
			return false
		}

		pc := d.machine.ProgramCounter()
		if d.breakpoints.Contains(pc) {
			d.logger.Info("Breakpoint reached", log.Hex("pc", pc))
			d.machine.SetHalted(true)
			return false
		}

		// errors are logged by the processor, the halted flag carries them
		_ = d.machine.RunCycle()
		d.cycles++

		if d.opts.MaxCycles > 0 && d.cycles >= d.opts.MaxCycles {
			return true
		}
	}
	return false
}

func (d *Driver) present() error {
	if !d.machine.DrawReady() {
		return nil
	}

	if d.display != nil {
		if err := d.display.Present(d.machine.FrameBuffer()); err != nil {
			return fmt.Errorf("presenting frame: %w", err)
		}
	}
	d.machine.AcknowledgeFrame()
	return nil
}
