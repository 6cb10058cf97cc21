// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/chip8vm/internal/memory"
)

var (
	ErrEmptyROM    = errors.New("ROM is empty")
	ErrROMTooLarge = errors.New("ROM does not fit into memory")
)

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a raw ROM image from the given file.
// CHIP-8 ROMs have no header, the file content is copied to memory as is.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	rom, err := l.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", path, err)
	}
	return rom, nil
}

// LoadFromReader reads a raw ROM image and validates its size.
func (l *Loader) LoadFromReader(reader io.Reader) ([]byte, error) {
	// read one byte more than allowed to detect oversized images
	rom, err := io.ReadAll(io.LimitReader(reader, memory.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}

	switch {
	case len(rom) == 0:
		return nil, ErrEmptyROM
	case len(rom) > memory.MaxProgramSize:
		return nil, fmt.Errorf("%w: maximum size is %d bytes", ErrROMTooLarge, memory.MaxProgramSize)
	}
	return rom, nil
}
