// Package terminal implements a text frontend that renders the display with
// block characters and reads the keypad from a raw mode terminal.
package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/driver"
	"github.com/retroenv/chip8vm/internal/keymap"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// ErrQuit is returned by Poll when the user requested to quit.
var ErrQuit = errors.New("quit requested")

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b

	// terminals only report key presses, a pressed key is held for this
	// many frames.
	holdFrames = 6

	rows = cpu.DisplayHeight / 2

	escHome       = "\x1b[H"
	escClear      = "\x1b[2J"
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
)

// Keypad receives the key state.
type Keypad interface {
	SetKey(index int, held bool) error
}

// Machine is the virtual machine shown in the terminal.
type Machine interface {
	driver.Machine
	Keypad
}

// Terminal implements driver.Display and driver.Input.
type Terminal struct {
	out    io.Writer
	keypad Keypad
	input  <-chan byte
	held   [cpu.KeyCount]int
	buf    bytes.Buffer
}

// New returns a terminal that writes frames to out and reads key presses
// from the input channel.
func New(out io.Writer, keypad Keypad, input <-chan byte) *Terminal {
	return &Terminal{
		out:    out,
		keypad: keypad,
		input:  input,
	}
}

// Run switches stdin to raw mode and runs the machine until the context is
// canceled, the user quits or a stop condition of the driver is met.
func Run(ctx context.Context, logger *log.Logger, machine Machine, opts options.Machine) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("stdin is not a terminal")
	}

	if width, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil &&
		(width < cpu.DisplayWidth || height < rows) {
		logger.Warn("Terminal is smaller than the display",
			log.Int("width", width), log.Int("height", height))
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, state)
	}()

	input := make(chan byte, 64)
	go readInput(os.Stdin, input)

	t := New(os.Stdout, machine, input)
	fmt.Fprint(os.Stdout, escClear+escHideCursor)
	defer fmt.Fprint(os.Stdout, escShowCursor+"\r\n")

	err = driver.New(logger, machine, t, t, opts).Run(ctx)
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}

// Beep rings the terminal bell.
func Beep() {
	_, _ = os.Stdout.WriteString("\a")
}

// Poll implements driver.Input.
func (t *Terminal) Poll() error {
	for {
		var b byte
		select {
		case b = <-t.input:
		default:
			return t.updateKeys()
		}

		switch b {
		case keyCtrlC, keyEscape:
			return ErrQuit
		}
		if index, ok := keymap.Index(rune(b)); ok {
			t.held[index] = holdFrames
		}
	}
}

func (t *Terminal) updateKeys() error {
	for index, frames := range t.held {
		if err := t.keypad.SetKey(index, frames > 0); err != nil {
			return fmt.Errorf("setting key %X: %w", index, err)
		}
		if frames > 0 {
			t.held[index]--
		}
	}
	return nil
}

// Present implements driver.Display. Two display rows share one text line.
func (t *Terminal) Present(frame [cpu.DisplaySize]byte) error {
	t.buf.Reset()
	t.buf.WriteString(escHome)
	render(&t.buf, frame)

	if _, err := t.out.Write(t.buf.Bytes()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func render(buf *bytes.Buffer, frame [cpu.DisplaySize]byte) {
	for row := range rows {
		top := frame[row*2*cpu.DisplayWidth:]
		bottom := frame[(row*2+1)*cpu.DisplayWidth:]

		for x := range cpu.DisplayWidth {
			switch {
			case top[x] != 0 && bottom[x] != 0:
				buf.WriteRune('█')
			case top[x] != 0:
				buf.WriteRune('▀')
			case bottom[x] != 0:
				buf.WriteRune('▄')
			default:
				buf.WriteByte(' ')
			}
		}
		buf.WriteString("\r\n")
	}
}

// readInput forwards bytes from r to the channel until reading fails.
func readInput(r io.Reader, input chan<- byte) {
	data := make([]byte, 16)
	for {
		n, err := r.Read(data)
		for _, b := range data[:n] {
			input <- b
		}
		if err != nil {
			return
		}
	}
}
