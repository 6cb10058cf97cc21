// Package cpu implements the CHIP-8 instruction processor.
//
// The processor owns the register file, the call stack, both countdown
// timers, the monochrome framebuffer and the key state table. It holds a
// non owning reference to the address space that is shared with the
// enclosing machine.
//
// Every call to RunCycle performs exactly one fetch-decode-execute step and
// returns to the caller, including while the processor waits for a key
// press. The caller owns the execution cadence.
package cpu

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// Processor constants.
const (
	RegisterCount = 16
	StackSize     = 16
	KeyCount      = 16

	DisplayWidth  = 64
	DisplayHeight = 32
	DisplaySize   = DisplayWidth * DisplayHeight

	// ProgramStart is the program counter value after a reset.
	ProgramStart = 0x200

	// FlagRegister is the index of VF, the carry, borrow and collision flag.
	FlagRegister = 0xF

	// opcodeSize is the size of CHIP-8 instructions in bytes.
	opcodeSize = 2

	// fontGlyphSize is the number of bytes per built-in hex digit glyph.
	fontGlyphSize = 5
)

var (
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrInvalidKey     = errors.New("invalid key index")
)

// Memory is the address space the processor executes from.
type Memory interface {
	Read(address uint16) (byte, error)
	Write(address uint16, value byte) error
}

// Randomizer is the source of random bytes for the RND instruction.
// *rand.Rand from math/rand/v2 satisfies it.
type Randomizer interface {
	IntN(n int) int
}

// Quirks selects between interpreter behaviors that differ across
// implementations.
type Quirks struct {
	// FullJump makes Bnnn jump to (nnn + V0) across the whole 12 bit address
	// space. When unset the target is truncated to 8 bits.
	FullJump bool
}

// Option configures a processor.
type Option func(*CPU)

// WithRandom sets the random byte source used by Cxkk.
func WithRandom(random Randomizer) Option {
	return func(c *CPU) {
		c.random = random
	}
}

// WithSeed seeds a PCG random source used by Cxkk.
func WithSeed(seed uint64) Option {
	return func(c *CPU) {
		c.random = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithBeep sets the callback that is invoked when the sound timer expires.
func WithBeep(beep func()) Option {
	return func(c *CPU) {
		c.beep = beep
	}
}

// WithQuirks sets the interpreter quirks.
func WithQuirks(quirks Quirks) Option {
	return func(c *CPU) {
		c.quirks = quirks
	}
}

// WithTrace enables logging of every executed instruction at debug level.
func WithTrace(trace bool) Option {
	return func(c *CPU) {
		c.trace = trace
	}
}

// WithDecoupledTimers stops RunCycle from ticking the timers. The caller is
// then expected to call TickTimers at its own rate, usually 60Hz.
func WithDecoupledTimers(decoupled bool) Option {
	return func(c *CPU) {
		c.decoupledTimers = decoupled
	}
}

// CPU is the CHIP-8 instruction processor. It is not safe for concurrent use.
type CPU struct {
	logger *log.Logger
	mem    Memory
	random Randomizer
	beep   func()

	quirks          Quirks
	trace           bool
	decoupledTimers bool

	v      [RegisterCount]byte
	i      uint16
	pc     uint16
	sp     uint8
	stack  [StackSize]uint16
	opcode uint16

	delayTimer byte
	soundTimer byte

	display [DisplaySize]byte
	keys    [KeyCount]bool

	halted    bool
	drawReady bool
}

// State is a snapshot of the architectural registers.
type State struct {
	V          [RegisterCount]byte
	I          uint16
	PC         uint16
	SP         uint8
	Stack      [StackSize]uint16
	Opcode     uint16
	DelayTimer byte
	SoundTimer byte
}

// New returns a new processor executing from the given memory.
// The processor is reset before it is returned.
func New(logger *log.Logger, mem Memory, options ...Option) *CPU {
	c := &CPU{
		logger: logger,
		mem:    mem,
	}
	for _, option := range options {
		option(c)
	}
	if c.random == nil {
		seed := uint64(time.Now().UnixNano())
		c.random = rand.New(rand.NewPCG(seed, seed>>1))
	}

	c.Reset()
	return c
}

// Reset clears all registers, the stack, the key state, the framebuffer and
// both timers and points the program counter to the program start.
func (c *CPU) Reset() {
	clear(c.v[:])
	clear(c.stack[:])
	clear(c.keys[:])
	clear(c.display[:])

	c.i = 0
	c.pc = ProgramStart
	c.sp = 0
	c.opcode = 0
	c.delayTimer = 0
	c.soundTimer = 0
	c.halted = false
	c.drawReady = false
}

// RunCycle fetches, decodes and executes a single instruction and then ticks
// both timers, unless timers are decoupled.
//
// An unknown opcode, a stack overflow or underflow and any access outside of
// the address space halt the processor. The error that caused the halt is
// returned, but the halted flag is the authoritative signal for the caller.
func (c *CPU) RunCycle() error {
	err := c.step()
	if err != nil {
		c.halt(err)
	}

	if !c.decoupledTimers {
		c.TickTimers()
	}
	return err
}

// TickTimers decrements the delay and sound timers if they are positive.
// The beep callback is invoked when the sound timer runs out.
func (c *CPU) TickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}

	if c.soundTimer > 0 {
		if c.soundTimer == 1 {
			c.logger.Debug("Beep")
			if c.beep != nil {
				c.beep()
			}
		}
		c.soundTimer--
	}
}

// Halted returns whether the processor stopped itself or was stopped
// externally.
func (c *CPU) Halted() bool {
	return c.halted
}

// SetHalted sets or clears the halted flag.
func (c *CPU) SetHalted(halted bool) {
	c.halted = halted
}

// DrawReady returns whether the framebuffer changed since the last
// acknowledged frame.
func (c *CPU) DrawReady() bool {
	return c.drawReady
}

// SetDrawReady sets the draw ready flag, callers use it to acknowledge a
// consumed frame.
func (c *CPU) SetDrawReady(ready bool) {
	c.drawReady = ready
}

// FrameBuffer returns a copy of the framebuffer. Pixel (x, y) is stored at
// index y*DisplayWidth+x and is either 0 or 1.
func (c *CPU) FrameBuffer() [DisplaySize]byte {
	return c.display
}

// SetKey sets the held state of the key with the given index.
func (c *CPU) SetKey(index int, held bool) error {
	if index < 0 || index >= KeyCount {
		return fmt.Errorf("setting key %d: %w", index, ErrInvalidKey)
	}
	c.keys[index] = held
	return nil
}

// Key returns whether the key with the given index is held.
func (c *CPU) Key(index int) bool {
	if index < 0 || index >= KeyCount {
		return false
	}
	return c.keys[index]
}

// ProgramCounter returns the address of the next instruction to fetch.
func (c *CPU) ProgramCounter() uint16 {
	return c.pc
}

// State returns a snapshot of the architectural registers.
func (c *CPU) State() State {
	return State{
		V:          c.v,
		I:          c.i,
		PC:         c.pc,
		SP:         c.sp,
		Stack:      c.stack,
		Opcode:     c.opcode,
		DelayTimer: c.delayTimer,
		SoundTimer: c.soundTimer,
	}
}

func (c *CPU) halt(err error) {
	c.logger.Error("Processor halted",
		log.Hex("pc", c.pc),
		log.Hex("opcode", c.opcode),
		log.Err(err))
	c.halted = true
}
