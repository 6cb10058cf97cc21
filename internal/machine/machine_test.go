package machine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/loader"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestMachine_RunWithoutROM(t *testing.T) {
	m := New(log.NewTestLogger(t))

	err := m.RunCycle()
	assert.True(t, errors.Is(err, ErrNoROM))
	assert.True(t, m.Halted())
	assert.False(t, m.Loaded())
}

func TestMachine_LoadResetsState(t *testing.T) {
	m := New(log.NewTestLogger(t))

	assert.NoError(t, m.Load([]byte{0x60, 0x42, 0x12, 0x02}))
	assert.NoError(t, m.RunCycle())
	assert.Equal(t, byte(0x42), m.State().V[0])
	m.SetHalted(true)

	assert.NoError(t, m.Load([]byte{0x00, 0xE0}))
	assert.True(t, m.Loaded())
	assert.False(t, m.Halted())
	assert.Equal(t, cpu.State{PC: cpu.ProgramStart}, m.State())

	// the second ROM must not leave the jump of the first one behind
	assert.NoError(t, m.RunCycle())
	err := m.RunCycle()
	assert.True(t, errors.Is(err, cpu.ErrUnknownOpcode))
	assert.True(t, m.Halted())
}

func TestMachine_LoadTooLarge(t *testing.T) {
	m := New(log.NewTestLogger(t))

	err := m.Load(make([]byte, 0x1000))
	assert.Error(t, err)
	assert.False(t, m.Loaded())
}

func TestMachine_LoadFile(t *testing.T) {
	m := New(log.NewTestLogger(t))

	path := filepath.Join(t.TempDir(), "test.ch8")
	assert.NoError(t, os.WriteFile(path, []byte{0x61, 0x05}, 0600))

	assert.NoError(t, m.LoadFile(path))
	assert.NoError(t, m.RunCycle())
	assert.Equal(t, byte(5), m.State().V[1])

	err := m.LoadFile(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.ch8")
	assert.NoError(t, os.WriteFile(empty, nil, 0600))
	err = m.LoadFile(empty)
	assert.True(t, errors.Is(err, loader.ErrEmptyROM))
}

func TestMachine_Font(t *testing.T) {
	// I = glyph of digit 8, draw it at 0,0
	rom := []byte{0x60, 0x08, 0xF0, 0x29, 0x61, 0x00, 0xD1, 0x15}

	m := New(log.NewTestLogger(t), WithFont(true))
	assert.NoError(t, m.Load(rom))
	for range 4 {
		assert.NoError(t, m.RunCycle())
	}

	fb := m.FrameBuffer()
	for row, data := range font[8*5 : 9*5] {
		for column := range 8 {
			want := (data >> (7 - column)) & 1
			assert.Equal(t, want, fb[row*cpu.DisplayWidth+column])
		}
	}

	assert.True(t, m.DrawReady())
	m.AcknowledgeFrame()
	assert.False(t, m.DrawReady())
}

func TestMachine_Keys(t *testing.T) {
	m := New(log.NewTestLogger(t))
	assert.NoError(t, m.Load([]byte{0xF4, 0x0A}))

	assert.NoError(t, m.RunCycle())
	assert.Equal(t, uint16(cpu.ProgramStart), m.ProgramCounter())

	assert.NoError(t, m.SetKey(9, true))
	assert.NoError(t, m.RunCycle())
	assert.Equal(t, byte(9), m.State().V[4])
	assert.Error(t, m.SetKey(16, true))
}

func TestMachine_TickTimers(t *testing.T) {
	var beeps int
	m := New(log.NewTestLogger(t), WithCPUOptions(cpu.WithDecoupledTimers(true), cpu.WithBeep(func() { beeps++ })))
	assert.NoError(t, m.Load([]byte{0x60, 0x01, 0xF0, 0x18, 0x12, 0x04}))

	for range 3 {
		assert.NoError(t, m.RunCycle())
	}
	assert.Equal(t, 0, beeps)

	m.TickTimers()
	assert.Equal(t, 1, beeps)
}
