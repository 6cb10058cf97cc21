package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestWriteListing(t *testing.T) {
	rom := []byte{0x00, 0xE0, 0x12, 0x00, 0xAB}

	tests := []struct {
		name     string
		options  optionFlags
		expected []string
	}{
		{
			name: "all comments",
			expected: []string{
				"  cls                      ; $0200 00 E0",
				"  jp $200                  ; $0202 12 00",
				"  db $AB                   ; $0204 AB",
			},
		},
		{
			name:    "no comments",
			options: optionFlags{noHexComments: true, noOffsets: true},
			expected: []string{
				"  cls",
				"  jp $200",
				"  db $AB",
			},
		},
		{
			name:    "offsets only",
			options: optionFlags{noHexComments: true},
			expected: []string{
				"  cls                      ; $0200",
				"  jp $200                  ; $0202",
				"  db $AB                   ; $0204",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.NoError(t, writeListing(&buf, rom, tt.options))

			lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
			assert.Equal(t, len(tt.expected), len(lines))
			for i, line := range lines {
				assert.Equal(t, tt.expected[i], line)
			}
		})
	}
}
