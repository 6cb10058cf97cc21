package window

import (
	"testing"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/keymap"
	"github.com/retroenv/retrogolib/assert"
)

func TestKeysCoverLayout(t *testing.T) {
	assert.Equal(t, cpu.KeyCount, len(keys))
	for _, r := range keymap.Layout {
		_, ok := keys[r]
		assert.True(t, ok)
	}
}

func TestFillPixels(t *testing.T) {
	var frame [cpu.DisplaySize]byte
	frame[1] = 1

	pixels := make([]byte, cpu.DisplaySize*4)
	fillPixels(pixels, frame)

	assert.Equal(t, [4]byte{0, 0, 0, 0xFF}, [4]byte(pixels[0:4]))
	assert.Equal(t, [4]byte{0xFF, 0xFF, 0xFF, 0xFF}, [4]byte(pixels[4:8]))

	frame[1] = 0
	fillPixels(pixels, frame)
	assert.Equal(t, [4]byte{0, 0, 0, 0xFF}, [4]byte(pixels[4:8]))
}
