package terminal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/retrogolib/assert"
)

type fakeKeypad struct {
	keys [cpu.KeyCount]bool
}

func (k *fakeKeypad) SetKey(index int, held bool) error {
	k.keys[index] = held
	return nil
}

func TestTerminal_Present(t *testing.T) {
	var frame [cpu.DisplaySize]byte
	frame[0] = 1                  // top only
	frame[cpu.DisplayWidth+1] = 1 // bottom only
	frame[2] = 1                  // both
	frame[cpu.DisplayWidth+2] = 1
	frame[cpu.DisplaySize-1] = 1 // bottom half of the last line

	var out bytes.Buffer
	term := New(&out, &fakeKeypad{}, nil)
	assert.NoError(t, term.Present(frame))

	output := out.String()
	assert.True(t, strings.HasPrefix(output, escHome))

	lines := strings.Split(strings.TrimPrefix(output, escHome), "\r\n")
	assert.Equal(t, rows+1, len(lines))
	assert.Equal(t, "", lines[rows])

	first := []rune(lines[0])
	assert.Equal(t, cpu.DisplayWidth, len(first))
	assert.Equal(t, '▀', first[0])
	assert.Equal(t, '▄', first[1])
	assert.Equal(t, '█', first[2])
	assert.Equal(t, ' ', first[3])

	last := []rune(lines[rows-1])
	assert.Equal(t, '▄', last[cpu.DisplayWidth-1])
}

func TestTerminal_PollHoldsKeys(t *testing.T) {
	input := make(chan byte, 4)
	keypad := &fakeKeypad{}
	term := New(&bytes.Buffer{}, keypad, input)

	// 'w' is keypad key 5, 'V' key F
	input <- 'w'
	input <- 'V'
	input <- 'p'
	assert.NoError(t, term.Poll())
	assert.True(t, keypad.keys[0x5])
	assert.True(t, keypad.keys[0xF])
	assert.False(t, keypad.keys[0x0])

	for range holdFrames - 1 {
		assert.NoError(t, term.Poll())
	}
	assert.True(t, keypad.keys[0x5])

	assert.NoError(t, term.Poll())
	assert.False(t, keypad.keys[0x5])
	assert.False(t, keypad.keys[0xF])
}

func TestTerminal_PollQuit(t *testing.T) {
	tests := []struct {
		name string
		key  byte
	}{
		{"ctrl-c", keyCtrlC},
		{"escape", keyEscape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := make(chan byte, 1)
			input <- tt.key

			term := New(&bytes.Buffer{}, &fakeKeypad{}, input)
			assert.True(t, errors.Is(term.Poll(), ErrQuit))
		})
	}
}

func TestReadInput(t *testing.T) {
	input := make(chan byte, 8)
	readInput(strings.NewReader("1q"), input)

	assert.Equal(t, byte('1'), <-input)
	assert.Equal(t, byte('q'), <-input)
	assert.Equal(t, 0, len(input))
}
