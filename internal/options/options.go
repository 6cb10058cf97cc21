// Package options contains the program options.
package options

// Frontend names.
const (
	FrontendAuto     = "auto"
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"
	FrontendHeadless = "headless"
)

// Parameters contains file path options.
type Parameters struct {
	Input      string // ROM file to run
	Screenshot string // PNG file to write the last frame to on exit
}

// Flags contains behavior options.
type Flags struct {
	Frontend string
	Scale    int
	Debug    bool
	Quiet    bool
	Trace    bool
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
}

// Machine defines options to control the virtual machine and its cadence.
type Machine struct {
	CyclesPerFrame int      // processor cycles executed per frame
	FrameRate      int      // frames per second, 0 runs unthrottled
	MaxCycles      uint64   // stop after this many cycles, 0 for no limit
	Breakpoints    []uint16 // addresses that halt the machine before execution
	Seed           uint64   // random seed, 0 picks a time based seed

	Font           bool // load the built-in hex digit font
	FullJump       bool // Bnnn jumps across the full address space
	RealtimeTimers bool // tick timers once per frame instead of once per cycle
	StopOnHalt     bool // stop running once the machine halted
	Trace          bool // log every executed instruction
}

// NewMachine returns a new machine options instance with default options.
func NewMachine() Machine {
	return Machine{
		CyclesPerFrame: 10,
		FrameRate:      60,
		Font:           true,
	}
}
