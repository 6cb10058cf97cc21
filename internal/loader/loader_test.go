package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/retrogolib/assert"
)

func TestLoad(t *testing.T) {
	t.Run("load ROM file", func(t *testing.T) {
		data := []byte{0x12, 0x34, 0x56, 0x78}
		tmpFile := createTempFile(t, data)

		rom, err := New().Load(tmpFile)
		assert.NoError(t, err)
		assert.Equal(t, len(data), len(rom))
		assert.Equal(t, data[0], rom[0])
		assert.Equal(t, data[3], rom[3])
	})

	t.Run("load largest possible ROM", func(t *testing.T) {
		tmpFile := createTempFile(t, make([]byte, memory.MaxProgramSize))

		rom, err := New().Load(tmpFile)
		assert.NoError(t, err)
		assert.Equal(t, memory.MaxProgramSize, len(rom))
	})

	t.Run("error on non-existent file", func(t *testing.T) {
		_, err := New().Load("/nonexistent/file.ch8")
		assert.Error(t, err)
	})

	t.Run("error on empty file", func(t *testing.T) {
		tmpFile := createTempFile(t, nil)

		_, err := New().Load(tmpFile)
		assert.True(t, errors.Is(err, ErrEmptyROM))
	})

	t.Run("error on oversized file", func(t *testing.T) {
		tmpFile := createTempFile(t, make([]byte, memory.MaxProgramSize+1))

		_, err := New().Load(tmpFile)
		assert.True(t, errors.Is(err, ErrROMTooLarge))
	})
}

func TestLoadFromReader(t *testing.T) {
	rom, err := New().LoadFromReader(bytes.NewReader([]byte{0x00, 0xE0}))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(rom))
}

func createTempFile(t *testing.T, data []byte) string {
	t.Helper()
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test.ch8")
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}
