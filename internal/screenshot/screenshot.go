// Package screenshot renders a framebuffer to PNG images.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/retroenv/chip8vm/internal/cpu"
	"golang.org/x/image/draw"
)

// Image converts a framebuffer to a grayscale image with one pixel per
// display cell.
func Image(frame [cpu.DisplaySize]byte) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cpu.DisplayWidth, cpu.DisplayHeight))
	for i, pixel := range frame {
		if pixel != 0 {
			img.Pix[i] = 0xFF
		}
	}
	return img
}

// Write encodes the framebuffer as PNG, enlarged by the given integer scale.
func Write(w io.Writer, frame [cpu.DisplaySize]byte, scale int) error {
	if scale < 1 {
		return fmt.Errorf("invalid scale %d", scale)
	}

	var img image.Image = Image(frame)
	if scale > 1 {
		scaled := image.NewGray(image.Rect(0, 0, cpu.DisplayWidth*scale, cpu.DisplayHeight*scale))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = scaled
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// WriteFile writes the framebuffer as PNG file.
func WriteFile(path string, frame [cpu.DisplaySize]byte, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file '%s': %w", path, err)
	}

	if err := Write(f, frame, scale); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing file '%s': %w", path, err)
	}
	return nil
}
