// Package memory provides the 4KB address space of the CHIP-8 machine.
package memory

import (
	"errors"
	"fmt"
)

// Memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x1FF: Interpreter and font data (512 bytes)
//	0x200-0xFFF: User program space (3584 bytes)
const (
	// Size is the number of addressable bytes.
	Size = 0x1000

	// ProgramStart is the address that ROM images are loaded to and
	// where execution begins after a reset.
	ProgramStart = 0x200

	// MaxAddress is the highest valid address.
	MaxAddress = Size - 1

	// MaxProgramSize is the largest ROM image that fits behind ProgramStart.
	MaxProgramSize = Size - ProgramStart
)

// ErrOutOfBounds is returned for any access outside of the address space.
var ErrOutOfBounds = errors.New("address out of bounds")

// Memory is a fixed size byte addressable store. It is never resized.
type Memory struct {
	data [Size]byte
}

// New returns a new zeroed memory.
func New() *Memory {
	return &Memory{}
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() int {
	return len(m.data)
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if int(address) >= len(m.data) {
		return 0, fmt.Errorf("reading address $%04X: %w", address, ErrOutOfBounds)
	}
	return m.data[address], nil
}

// ReadWord returns the big-endian 16 bit word at the given address.
func (m *Memory) ReadWord(address uint16) (uint16, error) {
	if int(address)+1 >= len(m.data) {
		return 0, fmt.Errorf("reading word at address $%04X: %w", address, ErrOutOfBounds)
	}
	return uint16(m.data[address])<<8 | uint16(m.data[address+1]), nil
}

// Write sets the byte at the given address.
func (m *Memory) Write(address uint16, value byte) error {
	if int(address) >= len(m.data) {
		return fmt.Errorf("writing address $%04X: %w", address, ErrOutOfBounds)
	}
	m.data[address] = value
	return nil
}

// Load copies data into memory starting at the given offset.
// Nothing is written if the data does not fit.
func (m *Memory) Load(offset uint16, data []byte) error {
	if int(offset)+len(data) > len(m.data) {
		return fmt.Errorf("loading %d bytes at offset $%04X: %w", len(data), offset, ErrOutOfBounds)
	}
	copy(m.data[offset:], data)
	return nil
}

// Reset zeroes every cell.
func (m *Memory) Reset() {
	clear(m.data[:])
}
