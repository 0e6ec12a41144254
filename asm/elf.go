// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"debug/elf"
	"fmt"
)

// ReadMarkers validates a linked unit as a 32-bit big-endian PowerPC ELF
// file, and returns its entry address and the address of the exit symbol.
func ReadMarkers(path string, exitSymbol string) (entry, exit uint32, err error) {
	file, err := elf.Open(path)
	if err != nil {
		return
	}
	defer func() { _ = file.Close() }()

	if file.Class != elf.ELFCLASS32 {
		err = fmt.Errorf("%w: %v", ErrElfClass, file.Class)
		return
	}

	if file.Data != elf.ELFDATA2MSB {
		err = fmt.Errorf("%w: %v", ErrElfData, file.Data)
		return
	}

	if file.Machine != elf.EM_PPC {
		err = fmt.Errorf("%w: %v", ErrElfMachine, file.Machine)
		return
	}

	entry = uint32(file.Entry)

	syms, err := file.Symbols()
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrSymbolMissing(exitSymbol), err)
		return
	}

	for _, sym := range syms {
		if sym.Name == exitSymbol {
			exit = uint32(sym.Value)
			return
		}
	}

	err = ErrSymbolMissing(exitSymbol)
	return
}
