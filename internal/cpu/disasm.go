package cpu

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Disassemble returns the assembly representation of an opcode, for example
// "drw V0, V1, $5". Opcodes that are not part of the instruction set are
// returned as a data word.
func Disassemble(opcode uint16) string {
	ins := lookupInstruction(opcode)
	if ins == nil {
		return fmt.Sprintf("dw $%04X", opcode)
	}

	if params := formatParams(ins.Name, opcode); params != "" {
		return fmt.Sprintf("%s %s", ins.Name, params)
	}
	return ins.Name
}

// lookupInstruction finds the instruction whose mask and value match the opcode.
func lookupInstruction(opcode uint16) *chip8.Instruction {
	firstNibble := (opcode & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction
		}
	}
	return nil
}

// formatParams formats the parameters of an instruction.
func formatParams(name string, opcode uint16) string {
	x := (opcode & 0x0F00) >> 8
	y := (opcode & 0x00F0) >> 4

	switch name {
	case chip8.Cls.Name, chip8.Ret.Name:
		return ""
	case chip8.Jp.Name:
		if opcode&0xF000 == 0xB000 {
			return fmt.Sprintf("V0, $%03X", opcode&0x0FFF)
		}
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case chip8.Call.Name:
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case chip8.Se.Name, chip8.Sne.Name:
		if opcode&0xF000 == 0x3000 || opcode&0xF000 == 0x4000 {
			return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
		}
		return fmt.Sprintf("V%X, V%X", x, y)
	case chip8.Ld.Name:
		return formatLoadParams(opcode, x, y)
	case chip8.Add.Name:
		switch opcode & 0xF000 {
		case 0x7000:
			return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
		case 0xF000:
			return fmt.Sprintf("I, V%X", x)
		}
		return fmt.Sprintf("V%X, V%X", x, y)
	case chip8.Or.Name, chip8.And.Name, chip8.Xor.Name, chip8.Sub.Name, chip8.Subn.Name:
		return fmt.Sprintf("V%X, V%X", x, y)
	case chip8.Shr.Name, chip8.Shl.Name, chip8.Skp.Name, chip8.Sknp.Name:
		return fmt.Sprintf("V%X", x)
	case chip8.Rnd.Name:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case chip8.Drw.Name:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, opcode&0x000F)
	}
	return ""
}

// formatLoadParams formats the many variants of the ld instruction.
func formatLoadParams(opcode, x, y uint16) string {
	switch opcode & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xA000:
		return fmt.Sprintf("I, $%03X", opcode&0x0FFF)
	}

	switch opcode & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}
