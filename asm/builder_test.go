package asm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFrame(t *testing.T) {
	assert := assert.New(t)

	snippet := "lis r3, 0x1234\nori r3, r3, 0x5678"

	b := &Builder{}
	src, err := b.Build(snippet)
	require.NoError(t, err)

	assert.Equal(ENTRY_SYMBOL, src.Entry)
	assert.Equal(EXIT_SYMBOL, src.Exit)
	assert.Equal(2, src.SnippetLines)

	lines := strings.Split(src.Text, "\n")
	assert.Equal("lis r3, 0x1234", lines[src.SnippetLine-1])
	assert.Equal("ori r3, r3, 0x5678", lines[src.SnippetLine])

	prologue := strings.Join(lines[:src.SnippetLine-1], "\n")
	for _, want := range []string{
		"_start:",
		"\tli 0, 0\n",
		"\tmtcrf 0xff, 0\n",
		"\tmtxer 0\n",
		"\tmtlr 0\n",
		"\tmtctr 0\n",
		"\tli 31, 0\n",
		"\tlis 1, __ppcdiff_stack@ha\n",
		"\taddi 1, 1, __ppcdiff_stack@l",
	} {
		assert.Contains(prologue, want)
	}
	assert.NotContains(prologue, "\tli 1, 0")
	assert.NotContains(src.Text, "%r")

	epilogue := strings.Join(lines[src.SnippetLine+1:], "\n")
	assert.Contains(epilogue, ".globl __ppcdiff_exit")
	assert.Contains(epilogue, "__ppcdiff_exit:\n\tb __ppcdiff_exit")
	assert.Contains(epilogue, "__ppcdiff_scratch:\n\t.space 256")
	assert.Contains(epilogue, "__ppcdiff_stack:\n\t.space 260")
}

func TestBuildSnippetLineOf(t *testing.T) {
	assert := assert.New(t)

	b := &Builder{}
	src, err := b.Build("nop\nnop\nnop")
	require.NoError(t, err)

	assert.Equal(0, src.SnippetLineOf(1))
	assert.Equal(1, src.SnippetLineOf(src.SnippetLine))
	assert.Equal(3, src.SnippetLineOf(src.SnippetLine+2))
	assert.Equal(0, src.SnippetLineOf(src.SnippetLine+3))
}

func TestBuildScratch(t *testing.T) {
	assert := assert.New(t)

	b := &Builder{Scratch: 16}
	src, err := b.Build("stw r3, -16(r1)\nstw r3, 16(r1)")
	require.NoError(t, err)
	assert.Contains(src.Text, "__ppcdiff_scratch:\n\t.space 16\n")
	assert.Contains(src.Text, "__ppcdiff_stack:\n\t.space 20\n")

	b = &Builder{Scratch: 8}
	_, err = b.Build("nop")
	assert.ErrorIs(err, ErrScratchSize)
}

func TestBuildReserved(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		Snippet string
		Line    int
		Fails   bool
	}{
		{Snippet: "_start: nop", Line: 1, Fails: true},
		{Snippet: "nop\n  __ppcdiff_exit:", Line: 2, Fails: true},
		{Snippet: "nop\nnop\n.globl _start", Line: 3, Fails: true},
		{Snippet: ".set __ppcdiff_stack, 4", Line: 1, Fails: true},
		{Snippet: "nop; .equ _start, 0", Line: 1, Fails: true},
		{Snippet: "nop\n__ppcdiff_exit = .", Line: 2, Fails: true},
		{Snippet: "x: _start=0x100", Line: 1, Fails: true},
		{Snippet: "limit = 4\nli r3, limit", Fails: false},
		{Snippet: "loop: b loop", Fails: false},
		{Snippet: "b _start", Fails: false},
		{Snippet: "nop # _start:", Fails: false},
		{Snippet: "start: b __ppcdiff_exit", Fails: false},
	}

	b := &Builder{}
	for _, entry := range table {
		_, err := b.Build(entry.Snippet)
		if !entry.Fails {
			assert.NoError(err, entry.Snippet)
			continue
		}

		assert.ErrorIs(err, ErrSymbolReserved, entry.Snippet)
		var asmErr *AssemblyError
		if assert.True(errors.As(err, &asmErr), entry.Snippet) {
			assert.Equal(STAGE_BUILD, asmErr.Stage)
			assert.Equal(entry.Line, asmErr.Line, entry.Snippet)
		}
	}
}

func TestBuildUnvalidatedMnemonics(t *testing.T) {
	b := &Builder{}
	src, err := b.Build("frobnicate r3, r4")
	require.NoError(t, err)
	assert.Contains(t, src.Text, "frobnicate r3, r4")
}

func TestBuildLongLines(t *testing.T) {
	assert := assert.New(t)

	long := "\t.ascii \"" + strings.Repeat("A", 70000) + "\""
	snippet := "li r3, 1\r\n" + long + "\nli r4, 2\n"

	b := &Builder{}
	src, err := b.Build(snippet)
	require.NoError(t, err)
	assert.Equal(3, src.SnippetLines)

	lines := strings.Split(src.Text, "\n")
	assert.Equal("li r3, 1", lines[src.SnippetLine-1])
	assert.Equal(long, lines[src.SnippetLine])
	assert.Equal("li r4, 2", lines[src.SnippetLine+1])

	src, err = b.Build("")
	require.NoError(t, err)
	assert.Equal(0, src.SnippetLines)
}
