// Package machine combines the address space and the instruction processor
// into a CHIP-8 virtual machine.
package machine

import (
	"errors"
	"fmt"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/loader"
	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/retrogolib/log"
)

// ErrNoROM is returned when a cycle is requested before a ROM was loaded.
var ErrNoROM = errors.New("no ROM loaded")

// Machine owns the memory and the processor that executes from it.
type Machine struct {
	logger *log.Logger
	mem    *memory.Memory
	cpu    *cpu.CPU
	loader *loader.Loader

	cpuOptions []cpu.Option
	font       bool
	loaded     bool
}

// Option configures a machine.
type Option func(*Machine)

// WithFont copies the built-in hex digit glyphs to the start of memory on
// every load, so that Fx29 addresses valid sprites.
func WithFont(enabled bool) Option {
	return func(m *Machine) {
		m.font = enabled
	}
}

// WithCPUOptions passes options through to the processor.
func WithCPUOptions(options ...cpu.Option) Option {
	return func(m *Machine) {
		m.cpuOptions = append(m.cpuOptions, options...)
	}
}

// New returns a new machine without a loaded ROM.
func New(logger *log.Logger, options ...Option) *Machine {
	m := &Machine{
		logger: logger,
		mem:    memory.New(),
		loader: loader.New(),
	}
	for _, option := range options {
		option(m)
	}

	m.cpu = cpu.New(logger, m.mem, m.cpuOptions...)
	return m
}

// Reset clears memory and processor state. The loaded ROM is discarded.
func (m *Machine) Reset() {
	m.cpu.Reset()
	m.mem.Reset()
	m.loaded = false
}

// Load resets the machine and copies the ROM image to the program start.
// No partial state persists if the image does not fit.
func (m *Machine) Load(rom []byte) error {
	m.Reset()

	if err := m.mem.Load(memory.ProgramStart, rom); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	if m.font {
		if err := m.mem.Load(FontAddress, font[:]); err != nil {
			return fmt.Errorf("loading font: %w", err)
		}
	}

	m.loaded = true
	m.logger.Debug("ROM loaded", log.Int("size", len(rom)))
	return nil
}

// LoadFile reads a ROM file from disk and loads it.
func (m *Machine) LoadFile(path string) error {
	rom, err := m.loader.Load(path)
	if err != nil {
		return err
	}
	return m.Load(rom)
}

// Loaded returns whether a ROM is loaded.
func (m *Machine) Loaded() bool {
	return m.loaded
}

// RunCycle executes a single processor cycle. Running a machine without a
// loaded ROM halts it.
func (m *Machine) RunCycle() error {
	if !m.loaded {
		m.cpu.SetHalted(true)
		return ErrNoROM
	}
	return m.cpu.RunCycle()
}

// TickTimers ticks the processor timers, used when timers are decoupled from
// the instruction rate.
func (m *Machine) TickTimers() {
	m.cpu.TickTimers()
}

// Halted returns whether the machine stopped.
func (m *Machine) Halted() bool {
	return m.cpu.Halted()
}

// SetHalted stops or resumes the machine.
func (m *Machine) SetHalted(halted bool) {
	m.cpu.SetHalted(halted)
}

// DrawReady returns whether a new frame is ready to be presented.
func (m *Machine) DrawReady() bool {
	return m.cpu.DrawReady()
}

// AcknowledgeFrame clears the draw ready flag after a frame was presented.
func (m *Machine) AcknowledgeFrame() {
	m.cpu.SetDrawReady(false)
}

// FrameBuffer returns a snapshot of the framebuffer.
func (m *Machine) FrameBuffer() [cpu.DisplaySize]byte {
	return m.cpu.FrameBuffer()
}

// SetKey sets the held state of a key.
func (m *Machine) SetKey(index int, held bool) error {
	return m.cpu.SetKey(index, held)
}

// ProgramCounter returns the address of the next instruction.
func (m *Machine) ProgramCounter() uint16 {
	return m.cpu.ProgramCounter()
}

// State returns a snapshot of the processor registers.
func (m *Machine) State() cpu.State {
	return m.cpu.State()
}
