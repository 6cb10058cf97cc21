// Package window implements a desktop window frontend based on ebiten.
package window

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/driver"
	"github.com/retroenv/chip8vm/internal/keymap"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

const title = "chip8vm"

// Machine is the virtual machine shown in the window.
type Machine interface {
	driver.Machine
	SetKey(index int, held bool) error
}

// keys maps the host keys of the keypad layout to ebiten keys.
var keys = map[rune]ebiten.Key{
	'1': ebiten.Key1, '2': ebiten.Key2, '3': ebiten.Key3, '4': ebiten.Key4,
	'q': ebiten.KeyQ, 'w': ebiten.KeyW, 'e': ebiten.KeyE, 'r': ebiten.KeyR,
	'a': ebiten.KeyA, 's': ebiten.KeyS, 'd': ebiten.KeyD, 'f': ebiten.KeyF,
	'z': ebiten.KeyZ, 'x': ebiten.KeyX, 'c': ebiten.KeyC, 'v': ebiten.KeyV,
}

// Game implements ebiten.Game. Every tick advances the machine by one frame.
type Game struct {
	ctx     context.Context
	machine Machine
	driver  *driver.Driver
	keypad  [cpu.KeyCount]ebiten.Key
	pixels  []byte
}

// New returns a new window frontend for the machine.
func New(ctx context.Context, logger *log.Logger, machine Machine, opts options.Machine) *Game {
	g := &Game{
		ctx:     ctx,
		machine: machine,
		pixels:  make([]byte, cpu.DisplaySize*4),
	}
	for index, r := range keymap.Keys() {
		g.keypad[index] = keys[r]
	}
	fillPixels(g.pixels, machine.FrameBuffer())

	g.driver = driver.New(logger, machine, g, g, opts)
	return g
}

// Run opens the window and runs the machine until the window is closed,
// Escape is pressed or a stop condition of the driver is met.
func Run(ctx context.Context, logger *log.Logger, machine Machine, opts options.Machine, scale int) error {
	g := New(ctx, logger, machine, opts)

	ebiten.SetWindowSize(cpu.DisplayWidth*scale, cpu.DisplayHeight*scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	if opts.FrameRate > 0 {
		ebiten.SetTPS(opts.FrameRate)
	} else {
		ebiten.SetTPS(ebiten.SyncWithFPS)
	}

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return ctx.Err()
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	done, err := g.driver.Frame()
	if err != nil {
		return err
	}
	if done {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.WritePixels(g.pixels)
}

// Layout implements ebiten.Game. The logical screen is the display
// resolution, ebiten scales it to the window size.
func (g *Game) Layout(_, _ int) (int, int) {
	return cpu.DisplayWidth, cpu.DisplayHeight
}

// Poll implements driver.Input and copies the host keyboard state to the keypad.
func (g *Game) Poll() error {
	for index, key := range g.keypad {
		if err := g.machine.SetKey(index, ebiten.IsKeyPressed(key)); err != nil {
			return fmt.Errorf("setting key %X: %w", index, err)
		}
	}
	return nil
}

// Present implements driver.Display.
func (g *Game) Present(frame [cpu.DisplaySize]byte) error {
	fillPixels(g.pixels, frame)
	return nil
}

// fillPixels converts a framebuffer to RGBA pixels.
func fillPixels(pixels []byte, frame [cpu.DisplaySize]byte) {
	for i, pixel := range frame {
		var c byte
		if pixel != 0 {
			c = 0xFF
		}
		offset := i * 4
		pixels[offset] = c
		pixels[offset+1] = c
		pixels[offset+2] = c
		pixels[offset+3] = 0xFF
	}
}
