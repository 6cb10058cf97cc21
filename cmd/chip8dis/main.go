// Package main implements a CHIP-8 ROM disassembler
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/loader"
	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type optionFlags struct {
	input  string
	output string
	quiet  bool

	noHexComments bool
	noOffsets     bool
}

func main() {
	options := readArguments()

	if !options.quiet {
		printBanner(options)
	}

	if err := disasmFile(options); err != nil {
		fmt.Println(fmt.Errorf("disassembling failed: %w", err))
		os.Exit(1)
	}
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	options := optionFlags{}

	flags.BoolVar(&options.noHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&options.noOffsets, "nooffsets", false, "do not output addresses in comments")
	flags.StringVar(&options.output, "o", "", "name of the output .asm file, printed on console if no name given")
	flags.BoolVar(&options.quiet, "q", false, "perform operations quietly")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if err != nil || len(args) == 0 {
		printBanner(options)
		fmt.Printf("usage: chip8dis [options] <file to disassemble>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	options.input = args[0]

	return options
}

func printBanner(options optionFlags) {
	if !options.quiet {
		fmt.Println("[------------------------------------]")
		fmt.Println("[ chip8dis - CHIP-8 ROM disassembler ]")
		fmt.Printf("[------------------------------------]\n\n")
		fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
	}
}

func disasmFile(options optionFlags) error {
	rom, err := loader.New().Load(options.input)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var outputFile io.WriteCloser
	if options.output == "" {
		outputFile = os.Stdout
	} else {
		outputFile, err = os.Create(options.output)
		if err != nil {
			return fmt.Errorf("creating file '%s': %w", options.output, err)
		}
	}
	if err = writeListing(outputFile, rom, options); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("processing file: %w", err)
	}
	if err = outputFile.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	return nil
}

// writeListing writes one line per instruction word starting at the program
// start address. A trailing odd byte is written as data byte.
func writeListing(w io.Writer, rom []byte, options optionFlags) error {
	for offset := 0; offset < len(rom); offset += 2 {
		address := memory.ProgramStart + offset

		var line, hex string
		if offset+1 < len(rom) {
			opcode := uint16(rom[offset])<<8 | uint16(rom[offset+1])
			line = cpu.Disassemble(opcode)
			hex = fmt.Sprintf("%02X %02X", rom[offset], rom[offset+1])
		} else {
			line = fmt.Sprintf("db $%02X", rom[offset])
			hex = fmt.Sprintf("%02X", rom[offset])
		}

		if err := writeLine(w, line, address, hex, options); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, line string, address int, hex string, options optionFlags) error {
	var comment string
	switch {
	case !options.noOffsets && !options.noHexComments:
		comment = fmt.Sprintf("$%04X %s", address, hex)
	case !options.noOffsets:
		comment = fmt.Sprintf("$%04X", address)
	case !options.noHexComments:
		comment = hex
	}

	var err error
	if comment == "" {
		_, err = fmt.Fprintf(w, "  %s\n", line)
	} else {
		_, err = fmt.Fprintf(w, "  %-24s ; %s\n", line, comment)
	}
	return err
}
