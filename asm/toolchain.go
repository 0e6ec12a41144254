// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

//go:generate go tool stringer -linecomment -type=Stage

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
)

// Stage of the snippet to binary pipeline.
type Stage int

const (
	STAGE_BUILD      = Stage(0) // build
	STAGE_SUBSTITUTE = Stage(1) // substitute
	STAGE_AS         = Stage(2) // as
	STAGE_LD         = Stage(3) // ld
	STAGE_ELF        = Stage(4) // elf
)

// File names of a unit inside its directory.
const (
	UNIT_SOURCE = "unit.s"
	UNIT_OBJECT = "unit.o"
	UNIT_ELF    = "unit.elf"
)

// Defaults of the GNU cross toolchain.
const (
	DEFAULT_AS        = "powerpc-linux-gnu-as"
	DEFAULT_LD        = "powerpc-linux-gnu-ld"
	DEFAULT_TEXT_BASE = uint32(0x10000)
)

var DefaultAsFlags = []string{"-a32", "-mbig", "-mregnames"}

// Unit is an assembled, linked snippet. The binary itself is opaque; only
// its location and the entry and exit marker addresses are known.
type Unit struct {
	Path   string // Path of the linked ELF file.
	Entry  uint32 // Address of the entry symbol.
	Exit   uint32 // Address of the exit marker.
	Source Source // Source the unit was built from.
}

// Assembler turns wrapped source into a Unit inside dir.
type Assembler interface {
	Assemble(ctx context.Context, src Source, dir string) (*Unit, error)
}

// Toolchain drives an external GNU assembler and linker.
type Toolchain struct {
	Verbose  bool     // If set, logs each tool invocation.
	As       string   // Assembler executable. Empty selects DEFAULT_AS.
	Ld       string   // Linker executable. Empty selects DEFAULT_LD.
	AsFlags  []string // Assembler flags. nil selects DefaultAsFlags.
	LdFlags  []string // Extra linker flags.
	TextBase uint32   // Text section base. 0 selects DEFAULT_TEXT_BASE.
	Env      []string // Extra environment, "KEY=value".
}

var _ Assembler = (*Toolchain)(nil)

// Tool diagnostics name the source line as "unit.s:LINE:".
var reToolLine = regexp.MustCompile(regexp.QuoteMeta(UNIT_SOURCE) + `:(\d+):`)

// toolLine finds the first snippet line named by the tool output.
func toolLine(src Source, output []byte) int {
	for _, m := range reToolLine.FindAllSubmatch(output, -1) {
		lineno, err := strconv.Atoi(string(m[1]))
		if err != nil {
			continue
		}
		if line := src.SnippetLineOf(lineno); line > 0 {
			return line
		}
	}
	return 0
}

func (tc *Toolchain) run(ctx context.Context, stage Stage, dir string, src Source, tool string, args ...string) (err error) {
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), tc.Env...)

	if tc.Verbose {
		log.Printf("asm: %v %v", tool, args)
	}

	output, err := cmd.CombinedOutput()
	if err == nil {
		return
	}

	if ctx.Err() != nil {
		err = ctx.Err()
		return
	}

	err = &AssemblyError{
		Stage:  stage,
		Line:   toolLine(src, output),
		Output: string(output),
		Err:    fmt.Errorf("%w: %v: %v", ErrToolFailed, filepath.Base(tool), err),
	}
	return
}

// Assemble writes the source into dir, assembles and links it, then reads
// the entry and exit marker addresses from the linked ELF.
func (tc *Toolchain) Assemble(ctx context.Context, src Source, dir string) (unit *Unit, err error) {
	as := tc.As
	if len(as) == 0 {
		as = DEFAULT_AS
	}
	ld := tc.Ld
	if len(ld) == 0 {
		ld = DEFAULT_LD
	}
	asFlags := tc.AsFlags
	if asFlags == nil {
		asFlags = DefaultAsFlags
	}
	textBase := tc.TextBase
	if textBase == 0 {
		textBase = DEFAULT_TEXT_BASE
	}

	err = os.WriteFile(filepath.Join(dir, UNIT_SOURCE), []byte(src.Text), 0o644)
	if err != nil {
		return
	}

	args := append([]string{}, asFlags...)
	args = append(args, "-o", UNIT_OBJECT, UNIT_SOURCE)
	err = tc.run(ctx, STAGE_AS, dir, src, as, args...)
	if err != nil {
		return
	}

	args = append([]string{}, tc.LdFlags...)
	args = append(args,
		"-e", src.Entry,
		"-Ttext", fmt.Sprintf("%#x", textBase),
		"-o", UNIT_ELF,
		UNIT_OBJECT)
	err = tc.run(ctx, STAGE_LD, dir, src, ld, args...)
	if err != nil {
		return
	}

	path := filepath.Join(dir, UNIT_ELF)
	entry, exit, err := ReadMarkers(path, src.Exit)
	if err != nil {
		err = &AssemblyError{Stage: STAGE_ELF, Err: err}
		return
	}

	unit = &Unit{
		Path:   path,
		Entry:  entry,
		Exit:   exit,
		Source: src,
	}

	if tc.Verbose {
		log.Printf("asm: %v: entry %#08x, exit %#08x", path, entry, exit)
	}

	return
}
