// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"fmt"
	"log"
	"regexp"
	"strings"
)

// Symbols owned by the harness frame.
const (
	ENTRY_SYMBOL   = "_start"            // Program entry.
	EXIT_SYMBOL    = "__ppcdiff_exit"    // Exit marker; backends halt here.
	STACK_SYMBOL   = "__ppcdiff_stack"   // Initial r1.
	SCRATCH_SYMBOL = "__ppcdiff_scratch" // Start of the scratch window.
)

const (
	SCRATCH_MIN     = 16  // Smallest scratch window, in bytes on each side of r1.
	SCRATCH_DEFAULT = 256 // Default scratch window.
)

var reservedSymbols = map[string]bool{
	ENTRY_SYMBOL:   true,
	EXIT_SYMBOL:    true,
	STACK_SYMBOL:   true,
	SCRATCH_SYMBOL: true,
}

// Source is snippet text wrapped in the harness frame, ready for the
// external assembler.
type Source struct {
	Text         string // Complete assembly source.
	Entry        string // Entry symbol.
	Exit         string // Exit marker symbol.
	SnippetLine  int    // Line of Text holding the first snippet line.
	SnippetLines int    // Number of snippet lines.
}

// SnippetLineOf maps a line of Text back to a 1-based snippet line, or 0
// if the line belongs to the frame.
func (src Source) SnippetLineOf(lineno int) int {
	if lineno < src.SnippetLine || lineno >= src.SnippetLine+src.SnippetLines {
		return 0
	}
	return lineno - src.SnippetLine + 1
}

// Builder wraps snippets in the execution frame.
//
// The prologue zeroes r0, r2..r31, CR, XER, LR and CTR, and points r1 at the
// middle of a zeroed scratch window: Scratch bytes below r1, and Scratch
// bytes plus one word above it, so a word access at r1+Scratch still lands
// in the window. The epilogue is the exit marker: a global label branching
// to itself.
//
// The frame names registers by bare number, so it assembles with or without
// -mregnames.
type Builder struct {
	Verbose bool // If set, logs the generated source.
	Scratch int  // Bytes below and above r1. 0 selects SCRATCH_DEFAULT.
}

// Label definitions and symbol-defining directives.
var (
	reLabel     = regexp.MustCompile(`^([A-Za-z_.$][A-Za-z0-9_.$]*)\s*:`)
	reAssign    = regexp.MustCompile(`^([A-Za-z_.$][A-Za-z0-9_.$]*)\s*=([^=]|$)`)
	reDirective = regexp.MustCompile(`^\.(set|equ|equiv|eqv|globl|global|weak|type|size|comm|lcomm)\s+([A-Za-z_.$][A-Za-z0-9_.$]*)`)
)

// definedSymbols returns the symbols a statement defines or declares.
func definedSymbols(stmt string) (names []string) {
	for {
		stmt = strings.TrimSpace(stmt)
		m := reLabel.FindStringSubmatch(stmt)
		if m == nil {
			break
		}
		names = append(names, m[1])
		stmt = stmt[len(m[0]):]
	}

	if m := reDirective.FindStringSubmatch(stmt); m != nil {
		names = append(names, m[2])
	} else if m := reAssign.FindStringSubmatch(stmt); m != nil {
		names = append(names, m[1])
	}

	return
}

// checkSnippet rejects snippets that define frame symbols.
func checkSnippet(lines []string) (err error) {
	for n, line := range lines {
		text, _, _ := strings.Cut(line, "#")
		for _, stmt := range strings.Split(text, ";") {
			for _, name := range definedSymbols(stmt) {
				if reservedSymbols[name] {
					err = &AssemblyError{
						Stage: STAGE_BUILD,
						Line:  n + 1,
						Err:   fmt.Errorf("%w: %v", ErrSymbolReserved, name),
					}
					return
				}
			}
		}
	}
	return
}

// snippetLines splits a snippet into lines of any length. A final newline
// does not start another line, and CRLF endings are accepted.
func snippetLines(snippet string) (lines []string) {
	snippet = strings.TrimSuffix(snippet, "\n")
	if len(snippet) == 0 {
		return
	}
	lines = strings.Split(snippet, "\n")
	for n, line := range lines {
		lines[n] = strings.TrimSuffix(line, "\r")
	}
	return
}

func (b *Builder) scratch() (size int, err error) {
	size = b.Scratch
	if size == 0 {
		size = SCRATCH_DEFAULT
	}
	if size < SCRATCH_MIN {
		err = &AssemblyError{Stage: STAGE_BUILD, Err: ErrScratchSize}
	}
	return
}

// Build wraps a snippet. Mnemonics are not validated; labels and branches
// are left for the assembler to resolve.
func (b *Builder) Build(snippet string) (src Source, err error) {
	scratch, err := b.scratch()
	if err != nil {
		return
	}

	lines := snippetLines(snippet)

	err = checkSnippet(lines)
	if err != nil {
		return
	}

	var text []string
	emit := func(format string, args ...any) {
		text = append(text, fmt.Sprintf(format, args...))
	}

	emit("# ppcdiff frame: prologue")
	emit("\t.text")
	emit("\t.align 2")
	emit("\t.globl %v", ENTRY_SYMBOL)
	emit("\t.type %v, @function", ENTRY_SYMBOL)
	emit("%v:", ENTRY_SYMBOL)
	emit("\tli 0, 0")
	emit("\tmtcrf 0xff, 0")
	emit("\tmtxer 0")
	emit("\tmtlr 0")
	emit("\tmtctr 0")
	for r := 2; r < 32; r++ {
		emit("\tli %d, 0", r)
	}
	emit("\tlis 1, %v@ha", STACK_SYMBOL)
	emit("\taddi 1, 1, %v@l", STACK_SYMBOL)
	emit("# ppcdiff frame: snippet")

	src.SnippetLine = len(text) + 1
	src.SnippetLines = len(lines)
	text = append(text, lines...)

	emit("# ppcdiff frame: epilogue")
	emit("\t.text")
	emit("\t.globl %v", EXIT_SYMBOL)
	emit("%v:", EXIT_SYMBOL)
	emit("\tb %v", EXIT_SYMBOL)
	emit("\t.size %v, . - %v", ENTRY_SYMBOL, ENTRY_SYMBOL)
	emit("")
	emit("\t.bss")
	emit("\t.align 4")
	emit("\t.globl %v", SCRATCH_SYMBOL)
	emit("%v:", SCRATCH_SYMBOL)
	emit("\t.space %d", scratch)
	emit("\t.globl %v", STACK_SYMBOL)
	emit("%v:", STACK_SYMBOL)
	emit("\t.space %d", scratch+4)
	emit("")

	src.Text = strings.Join(text, "\n")
	src.Entry = ENTRY_SYMBOL
	src.Exit = EXIT_SYMBOL

	if b.Verbose {
		log.Printf("asm: frame with %d snippet lines, scratch %d bytes", src.SnippetLines, scratch)
	}

	return
}
