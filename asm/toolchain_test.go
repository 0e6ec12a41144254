package asm

import (
	"context"
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testELF describes a symbol-only ELF file.
type testELF struct {
	Class   elf.Class
	Data    elf.Data
	Machine elf.Machine
	Entry   uint32
	Symbols map[string]uint32
}

// writeTestELF writes a minimal ELF file with a symbol table and no
// segments.
func writeTestELF(path string, te testELF) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() { _ = file.Close() }()

	var order binary.ByteOrder = binary.BigEndian
	if te.Data == elf.ELFDATA2LSB {
		order = binary.LittleEndian
	}

	ident := [elf.EI_NIDENT]byte{0x7f, 'E', 'L', 'F', byte(te.Class), byte(te.Data), byte(elf.EV_CURRENT)}

	if te.Class == elf.ELFCLASS64 {
		hdr := elf.Header64{
			Ident:     ident,
			Type:      uint16(elf.ET_EXEC),
			Machine:   uint16(te.Machine),
			Version:   uint32(elf.EV_CURRENT),
			Entry:     uint64(te.Entry),
			Ehsize:    64,
			Shentsize: 64,
		}
		err = binary.Write(file, order, &hdr)
		return
	}

	names := slices.Sorted(maps.Keys(te.Symbols))

	strtab := []byte{0}
	syms := []elf.Sym32{{}}
	for _, name := range names {
		syms = append(syms, elf.Sym32{
			Name:  uint32(len(strtab)),
			Value: te.Symbols[name],
			Info:  elf.ST_INFO(elf.STB_GLOBAL, elf.STT_NOTYPE),
			Shndx: uint16(elf.SHN_ABS),
		})
		strtab = append(strtab, []byte(name+"\x00")...)
	}

	shstrtab := []byte("\x00.symtab\x00.strtab\x00.shstrtab\x00")

	const hdrSize = 52
	symOff := uint32(hdrSize)
	symSize := uint32(len(syms) * 16)
	strOff := symOff + symSize
	shstrOff := strOff + uint32(len(strtab))
	shOff := shstrOff + uint32(len(shstrtab))
	shOff = (shOff + 3) &^ 3

	hdr := elf.Header32{
		Ident:     ident,
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(te.Machine),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     te.Entry,
		Shoff:     shOff,
		Ehsize:    hdrSize,
		Shentsize: 40,
		Shnum:     4,
		Shstrndx:  3,
	}

	sections := []elf.Section32{
		{},
		{Name: 1, Type: uint32(elf.SHT_SYMTAB), Off: symOff, Size: symSize, Link: 2, Info: 1, Addralign: 4, Entsize: 16},
		{Name: 9, Type: uint32(elf.SHT_STRTAB), Off: strOff, Size: uint32(len(strtab)), Addralign: 1},
		{Name: 17, Type: uint32(elf.SHT_STRTAB), Off: shstrOff, Size: uint32(len(shstrtab)), Addralign: 1},
	}

	pad := make([]byte, shOff-(shstrOff+uint32(len(shstrtab))))

	for _, item := range []any{&hdr, syms, strtab, shstrtab, pad, sections} {
		err = binary.Write(file, order, item)
		if err != nil {
			return
		}
	}

	return
}

func ppcELF(entry, exit uint32) testELF {
	return testELF{
		Class:   elf.ELFCLASS32,
		Data:    elf.ELFDATA2MSB,
		Machine: elf.EM_PPC,
		Entry:   entry,
		Symbols: map[string]uint32{
			ENTRY_SYMBOL: entry,
			EXIT_SYMBOL:  exit,
		},
	}
}

func TestReadMarkers(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.elf")
	require.NoError(t, writeTestELF(good, ppcELF(0x10000, 0x1009c)))

	entry, exit, err := ReadMarkers(good, EXIT_SYMBOL)
	require.NoError(t, err)
	assert.Equal(uint32(0x10000), entry)
	assert.Equal(uint32(0x1009c), exit)

	_, _, err = ReadMarkers(good, "no_such_symbol")
	var missing ErrSymbolMissing
	assert.True(errors.As(err, &missing))
	assert.Equal(ErrSymbolMissing("no_such_symbol"), missing)

	table := []struct {
		Name string
		Mod  func(te *testELF)
		Err  error
	}{
		{Name: "class", Mod: func(te *testELF) { te.Class = elf.ELFCLASS64 }, Err: ErrElfClass},
		{Name: "data", Mod: func(te *testELF) { te.Data = elf.ELFDATA2LSB }, Err: ErrElfData},
		{Name: "machine", Mod: func(te *testELF) { te.Machine = elf.EM_ARM }, Err: ErrElfMachine},
	}

	for _, entry := range table {
		te := ppcELF(0x10000, 0x10010)
		entry.Mod(&te)
		path := filepath.Join(dir, entry.Name+".elf")
		require.NoError(t, writeTestELF(path, te))

		_, _, err := ReadMarkers(path, EXIT_SYMBOL)
		assert.ErrorIs(err, entry.Err, entry.Name)
	}

	notElf := filepath.Join(dir, "not.elf")
	require.NoError(t, os.WriteFile(notElf, []byte("not an elf file"), 0o644))
	_, _, err = ReadMarkers(notElf, EXIT_SYMBOL)
	assert.Error(err)
}

// TestHelperProcess is not a real test. It stands in for the assembler and
// linker when run as a child of the toolchain tests.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "helper: no tool")
		os.Exit(2)
	}

	tool, args := args[0], args[1:]
	_ = os.WriteFile(tool+".args", []byte(strings.Join(args, " ")), 0o644)

	output := ""
	if n := slices.Index(args, "-o"); n >= 0 && n+1 < len(args) {
		output = args[n+1]
	}

	switch tool {
	case "as":
		if line := os.Getenv("HELPER_AS_FAIL_LINE"); len(line) > 0 {
			fmt.Fprintf(os.Stderr, "unit.s: Assembler messages:\nunit.s:%v: Error: unrecognized opcode: `frob'\n", line)
			os.Exit(1)
		}
		_ = os.WriteFile(output, []byte("object"), 0o644)
	case "ld":
		if os.Getenv("HELPER_LD_FAIL") == "1" {
			fmt.Fprintln(os.Stderr, "ld: unit.o: file format not recognized")
			os.Exit(1)
		}
		te := ppcELF(0x10000, 0x10040)
		if os.Getenv("HELPER_LD_NO_EXIT") == "1" {
			delete(te.Symbols, EXIT_SYMBOL)
		}
		err := writeTestELF(output, te)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "helper: unknown tool %v\n", tool)
		os.Exit(2)
	}
}

func helperToolchain(env ...string) *Toolchain {
	return &Toolchain{
		As:       os.Args[0],
		Ld:       os.Args[0],
		AsFlags:  []string{"-test.run=TestHelperProcess", "--", "as"},
		LdFlags:  []string{"-test.run=TestHelperProcess", "--", "ld"},
		TextBase: 0x20000,
		Env:      append([]string{"GO_WANT_HELPER_PROCESS=1"}, env...),
	}
}

func TestToolchainAssemble(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	src, err := (&Builder{}).Build("lis r3, 0x1234\nori r3, r3, 0x5678")
	require.NoError(t, err)

	unit, err := helperToolchain().Assemble(context.Background(), src, dir)
	require.NoError(t, err)

	assert.Equal(filepath.Join(dir, UNIT_ELF), unit.Path)
	assert.Equal(uint32(0x10000), unit.Entry)
	assert.Equal(uint32(0x10040), unit.Exit)
	assert.Equal(src, unit.Source)

	text, err := os.ReadFile(filepath.Join(dir, UNIT_SOURCE))
	require.NoError(t, err)
	assert.Equal(src.Text, string(text))

	asArgs, err := os.ReadFile(filepath.Join(dir, "as.args"))
	require.NoError(t, err)
	assert.Equal("-o unit.o unit.s", string(asArgs))

	ldArgs, err := os.ReadFile(filepath.Join(dir, "ld.args"))
	require.NoError(t, err)
	assert.Equal("-e _start -Ttext 0x20000 -o unit.elf unit.o", string(ldArgs))
}

func TestToolchainAssemblerError(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	src, err := (&Builder{}).Build("nop\nfrob r3\nnop")
	require.NoError(t, err)

	line := strconv.Itoa(src.SnippetLine + 1)
	_, err = helperToolchain("HELPER_AS_FAIL_LINE="+line).Assemble(context.Background(), src, dir)
	assert.ErrorIs(err, ErrToolFailed)

	var asmErr *AssemblyError
	require.True(t, errors.As(err, &asmErr))
	assert.Equal(STAGE_AS, asmErr.Stage)
	assert.Equal(2, asmErr.Line)
	assert.Contains(asmErr.Output, "unrecognized opcode")
	assert.Contains(asmErr.Error(), "line 2")
}

func TestToolchainLinkerError(t *testing.T) {
	assert := assert.New(t)

	src, err := (&Builder{}).Build("nop")
	require.NoError(t, err)

	_, err = helperToolchain("HELPER_LD_FAIL=1").Assemble(context.Background(), src, t.TempDir())
	var asmErr *AssemblyError
	require.True(t, errors.As(err, &asmErr))
	assert.Equal(STAGE_LD, asmErr.Stage)
	assert.Equal(0, asmErr.Line)
	assert.Contains(asmErr.Output, "file format not recognized")

	_, err = helperToolchain("HELPER_LD_NO_EXIT=1").Assemble(context.Background(), src, t.TempDir())
	require.True(t, errors.As(err, &asmErr))
	assert.Equal(STAGE_ELF, asmErr.Stage)
	var missing ErrSymbolMissing
	assert.True(errors.As(err, &missing))
}

func TestToolchainMissingTool(t *testing.T) {
	src, err := (&Builder{}).Build("nop")
	require.NoError(t, err)

	tc := &Toolchain{As: filepath.Join(t.TempDir(), "no-such-as")}
	_, err = tc.Assemble(context.Background(), src, t.TempDir())

	var asmErr *AssemblyError
	require.True(t, errors.As(err, &asmErr))
	assert.Equal(t, STAGE_AS, asmErr.Stage)
	assert.ErrorIs(t, err, ErrToolFailed)
}

func TestToolchainBinutils(t *testing.T) {
	for _, tool := range []string{DEFAULT_AS, DEFAULT_LD} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%v not installed", tool)
		}
	}

	assert := assert.New(t)

	src, err := (&Builder{}).Build("lis r3, 0x1234\nori r3, r3, 0x5678")
	require.NoError(t, err)

	unit, err := (&Toolchain{}).Assemble(context.Background(), src, t.TempDir())
	require.NoError(t, err)
	assert.Equal(DEFAULT_TEXT_BASE, unit.Entry)
	assert.Greater(unit.Exit, unit.Entry)
	assert.Zero(unit.Exit % 4)

	src, err = (&Builder{}).Build("nop\nnot_an_opcode r3\n")
	require.NoError(t, err)
	_, err = (&Toolchain{}).Assemble(context.Background(), src, t.TempDir())
	var asmErr *AssemblyError
	require.True(t, errors.As(err, &asmErr))
	assert.Equal(STAGE_AS, asmErr.Stage)
	assert.Equal(2, asmErr.Line)
}
