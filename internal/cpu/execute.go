package cpu

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// step fetches the instruction at pc, advances pc past it and executes it.
// All skips and jumps therefore operate on the post-fetch program counter.
func (c *CPU) step() error {
	hi, err := c.mem.Read(c.pc)
	if err != nil {
		return fmt.Errorf("fetching opcode: %w", err)
	}
	lo, err := c.mem.Read(c.pc + 1)
	if err != nil {
		return fmt.Errorf("fetching opcode: %w", err)
	}
	c.opcode = uint16(hi)<<8 | uint16(lo)

	if c.trace {
		c.logger.Debug("Executing",
			log.Hex("pc", c.pc),
			log.Hex("opcode", c.opcode),
			log.String("instruction", Disassemble(c.opcode)))
	}

	c.pc += opcodeSize
	return c.execute()
}

// execute dispatches the current opcode on its high nibble.
func (c *CPU) execute() error {
	switch c.opcode & 0xF000 {
	case 0x0000:
		return c.executeSystem()

	case 0x1000: // 1nnn - JP addr
		c.pc = c.nnn()

	case 0x2000: // 2nnn - CALL addr
		return c.call()

	case 0x3000: // 3xkk - SE Vx, byte
		c.skipIf(c.v[c.x()] == c.kk())

	case 0x4000: // 4xkk - SNE Vx, byte
		c.skipIf(c.v[c.x()] != c.kk())

	case 0x5000: // 5xy0 - SE Vx, Vy
		c.skipIf(c.v[c.x()] == c.v[c.y()])

	case 0x6000: // 6xkk - LD Vx, byte
		c.v[c.x()] = c.kk()

	case 0x7000: // 7xkk - ADD Vx, byte
		c.v[c.x()] += c.kk()

	case 0x8000:
		return c.executeArithmetic()

	case 0x9000: // 9xy0 - SNE Vx, Vy
		c.skipIf(c.v[c.x()] != c.v[c.y()])

	case 0xA000: // Annn - LD I, addr
		c.i = c.nnn()

	case 0xB000: // Bnnn - JP V0, addr
		c.jumpOffset()

	case 0xC000: // Cxkk - RND Vx, byte
		c.v[c.x()] = byte(c.random.IntN(256)) & c.kk()

	case 0xD000: // Dxyn - DRW Vx, Vy, nibble
		return c.draw()

	case 0xE000:
		return c.executeKey()

	case 0xF000:
		return c.executeMisc()
	}
	return nil
}

// executeSystem handles the 0x0 family, selected by the low byte.
func (c *CPU) executeSystem() error {
	switch c.kk() {
	case 0xE0: // CLS
		clear(c.display[:])
		return nil

	case 0xEE: // RET
		return c.ret()

	default:
		return c.unknownOpcode()
	}
}

// executeArithmetic handles the 0x8 family, selected by the low nibble.
func (c *CPU) executeArithmetic() error {
	x, y := c.x(), c.y()
	vx, vy := c.v[x], c.v[y]

	switch c.n() {
	case 0x0: // LD Vx, Vy
		c.v[x] = vy

	case 0x1: // OR Vx, Vy
		c.v[x] = vx | vy

	case 0x2: // AND Vx, Vy
		c.v[x] = vx & vy

	case 0x3: // XOR Vx, Vy
		c.v[x] = vx ^ vy

	case 0x4: // ADD Vx, Vy
		sum := uint16(vx) + uint16(vy)
		c.v[FlagRegister] = boolToByte(sum > 0xFF)
		c.v[x] = byte(sum)

	case 0x5: // SUB Vx, Vy
		c.v[FlagRegister] = boolToByte(vy <= vx)
		c.v[x] = vx - vy

	case 0x6: // SHR Vx
		c.v[FlagRegister] = vx & 0x01
		c.v[x] = vx >> 1

	case 0x7: // SUBN Vx, Vy
		c.v[FlagRegister] = boolToByte(vy > vx)
		c.v[x] = vy - vx

	case 0xE: // SHL Vx
		c.v[FlagRegister] = vx >> 7
		c.v[x] = vx << 1

	default:
		return c.unknownOpcode()
	}
	return nil
}

// executeKey handles the 0xE family.
func (c *CPU) executeKey() error {
	switch c.kk() {
	case 0x9E: // SKP Vx
		held, err := c.keyHeld(c.v[c.x()])
		if err != nil {
			return err
		}
		c.skipIf(held)

	case 0xA1: // SKNP Vx
		held, err := c.keyHeld(c.v[c.x()])
		if err != nil {
			return err
		}
		c.skipIf(!held)

	default:
		return c.unknownOpcode()
	}
	return nil
}

// executeMisc handles the 0xF family, selected by the low byte.
func (c *CPU) executeMisc() error {
	x := c.x()

	switch c.kk() {
	case 0x07: // LD Vx, DT
		c.v[x] = c.delayTimer

	case 0x0A: // LD Vx, K
		c.waitForKey()

	case 0x15: // LD DT, Vx
		c.delayTimer = c.v[x]

	case 0x18: // LD ST, Vx
		c.soundTimer = c.v[x]

	case 0x1E: // ADD I, Vx
		c.i = (c.i + uint16(c.v[x])) & 0x0FFF

	case 0x29: // LD F, Vx
		c.i = uint16(c.v[x]) * fontGlyphSize

	case 0x33: // LD B, Vx
		return c.storeBCD()

	case 0x55: // LD [I], Vx
		return c.storeRegisters()

	case 0x65: // LD Vx, [I]
		return c.loadRegisters()

	default:
		return c.unknownOpcode()
	}
	return nil
}

func (c *CPU) call() error {
	if int(c.sp)+1 >= StackSize {
		return fmt.Errorf("calling $%03X: %w", c.nnn(), ErrStackOverflow)
	}
	c.sp++
	c.stack[c.sp] = c.pc
	c.pc = c.nnn()
	return nil
}

func (c *CPU) ret() error {
	if c.sp == 0 {
		return ErrStackUnderflow
	}
	c.pc = c.stack[c.sp]
	c.sp--
	return nil
}

// jumpOffset implements Bnnn. Without the FullJump quirk the target is
// truncated to 8 bits.
func (c *CPU) jumpOffset() {
	target := c.nnn() + uint16(c.v[0])
	if c.quirks.FullJump {
		c.pc = target & 0x0FFF
		return
	}
	c.pc = target & 0x00FF
}

func (c *CPU) skipIf(condition bool) {
	if condition {
		c.pc += opcodeSize
	}
}

func (c *CPU) keyHeld(index byte) (bool, error) {
	if int(index) >= KeyCount {
		return false, fmt.Errorf("checking key %d: %w", index, ErrInvalidKey)
	}
	return c.keys[index], nil
}

// waitForKey rewinds pc so that the same instruction is decoded again on the
// next cycle, unless a key is held. The lowest held key index wins.
func (c *CPU) waitForKey() {
	c.pc -= opcodeSize

	for index, held := range c.keys {
		if held {
			c.v[c.x()] = byte(index)
			c.pc += opcodeSize
			return
		}
	}
}

// draw XORs an n byte sprite read from I onto the framebuffer at (Vx, Vy).
// Pixels outside of the display are dropped, they do not wrap around.
// VF is set if any set pixel was turned off.
func (c *CPU) draw() error {
	height := int(c.n())
	sprite := make([]byte, height)
	for row := range height {
		b, err := c.mem.Read(c.i + uint16(row))
		if err != nil {
			return fmt.Errorf("reading sprite: %w", err)
		}
		sprite[row] = b
	}

	originX := int(c.v[c.x()])
	originY := int(c.v[c.y()])
	var collision byte

	for row, data := range sprite {
		py := originY + row
		if py >= DisplayHeight {
			break
		}

		for column := range 8 {
			if data&(0x80>>column) == 0 {
				continue
			}
			px := originX + column
			if px >= DisplayWidth {
				break
			}

			index := py*DisplayWidth + px
			collision |= c.display[index]
			c.display[index] ^= 1
		}
	}

	c.v[FlagRegister] = collision
	c.drawReady = true
	return nil
}

// storeBCD writes the hundreds, tens and ones digits of Vx to I, I+1 and I+2.
func (c *CPU) storeBCD() error {
	value := c.v[c.x()]
	digits := [3]byte{value / 100, value / 10 % 10, value % 10}

	for offset, digit := range digits {
		if err := c.mem.Write(c.i+uint16(offset), digit); err != nil {
			return fmt.Errorf("storing BCD: %w", err)
		}
	}
	return nil
}

// storeRegisters copies V0 through Vx to memory starting at I.
func (c *CPU) storeRegisters() error {
	for index := range int(c.x()) + 1 {
		if err := c.mem.Write(c.i+uint16(index), c.v[index]); err != nil {
			return fmt.Errorf("storing registers: %w", err)
		}
	}
	return nil
}

// loadRegisters fills V0 through Vx from memory starting at I.
func (c *CPU) loadRegisters() error {
	for index := range int(c.x()) + 1 {
		value, err := c.mem.Read(c.i + uint16(index))
		if err != nil {
			return fmt.Errorf("loading registers: %w", err)
		}
		c.v[index] = value
	}
	return nil
}

func (c *CPU) unknownOpcode() error {
	return fmt.Errorf("opcode $%04X: %w", c.opcode, ErrUnknownOpcode)
}

// x returns the X register nibble of the current opcode.
func (c *CPU) x() uint16 {
	return (c.opcode & 0x0F00) >> 8
}

// y returns the Y register nibble of the current opcode.
func (c *CPU) y() uint16 {
	return (c.opcode & 0x00F0) >> 4
}

func (c *CPU) n() uint16 {
	return c.opcode & 0x000F
}

func (c *CPU) kk() byte {
	return byte(c.opcode)
}

func (c *CPU) nnn() uint16 {
	return c.opcode & 0x0FFF
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
