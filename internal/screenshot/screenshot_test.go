package screenshot

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/retrogolib/assert"
)

func testFrame() [cpu.DisplaySize]byte {
	var frame [cpu.DisplaySize]byte
	frame[0] = 1
	frame[cpu.DisplayWidth+5] = 1
	frame[cpu.DisplaySize-1] = 1
	return frame
}

func TestImage(t *testing.T) {
	img := Image(testFrame())

	assert.Equal(t, cpu.DisplayWidth, img.Bounds().Dx())
	assert.Equal(t, cpu.DisplayHeight, img.Bounds().Dy())
	assert.Equal(t, uint8(0xFF), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0xFF), img.GrayAt(5, 1).Y)
	assert.Equal(t, uint8(0), img.GrayAt(4, 1).Y)
	assert.Equal(t, uint8(0xFF), img.GrayAt(cpu.DisplayWidth-1, cpu.DisplayHeight-1).Y)
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name  string
		scale int
	}{
		{"native", 1},
		{"scaled", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.NoError(t, Write(&buf, testFrame(), tt.scale))

			img, err := png.Decode(&buf)
			assert.NoError(t, err)
			assert.Equal(t, cpu.DisplayWidth*tt.scale, img.Bounds().Dx())
			assert.Equal(t, cpu.DisplayHeight*tt.scale, img.Bounds().Dy())

			// every cell covers a scale x scale block
			x, y := 5*tt.scale, 1*tt.scale
			r, _, _, _ := img.At(x+tt.scale-1, y+tt.scale-1).RGBA()
			assert.Equal(t, uint32(0xFFFF), r)
			r, _, _, _ = img.At(x-1, y).RGBA()
			assert.Equal(t, uint32(0), r)
		})
	}
}

func TestWriteInvalidScale(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, testFrame(), 0))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	assert.NoError(t, WriteFile(path, testFrame(), 2))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, cpu.DisplayWidth*2, img.Bounds().Dx())
}
