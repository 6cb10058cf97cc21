package config

import (
	"testing"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(false, false))
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}

func TestCreateMachine(t *testing.T) {
	opts := options.NewMachine()
	opts.FullJump = true
	opts.RealtimeTimers = true
	opts.Seed = 1

	var beeps int
	m := CreateMachine(log.NewTestLogger(t), opts, func() { beeps++ })

	// V0=$10, ST=V0, jump with offset to $310
	assert.NoError(t, m.Load([]byte{0x60, 0x10, 0xF0, 0x18, 0xB3, 0x00}))
	for range 3 {
		assert.NoError(t, m.RunCycle())
	}
	assert.Equal(t, uint16(0x310), m.ProgramCounter())

	// timers only advance on explicit ticks
	assert.Equal(t, byte(0x10), m.State().SoundTimer)
	for range 0x10 {
		m.TickTimers()
	}
	assert.Equal(t, 1, beeps)
}
