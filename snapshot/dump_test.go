package snapshot

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/ppcdiff/arch"
)

func TestFormatParse(t *testing.T) {
	assert := assert.New(t)

	snap, err := fullBuilder().SetPC(0x100040).Build()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, Format(buf, snap))
	assert.True(strings.HasPrefix(buf.String(), "r0 0x00000000\nr1 0x01010101\n"))
	assert.Contains(buf.String(), "pc 0x00100040\n")

	parsed, err := Parse(buf)
	require.NoError(t, err)
	assert.True(snap.Equal(parsed))
	pc, ok := parsed.PC()
	assert.True(ok)
	assert.Equal(uint32(0x100040), pc)
}

func TestParseForgiving(t *testing.T) {
	assert := assert.New(t)

	var lines []string
	lines = append(lines, "# emitted by a reference model", "")
	for reg := range arch.Regs() {
		lines = append(lines, strings.ToUpper(reg.String())+"   0")
	}
	lines = append(lines,
		"msr 0x2000   # not compared",
		"nip 4096",
		"r3 0b1", // duplicate
	)

	_, err := Parse(strings.NewReader(strings.Join(lines, "\n")))
	assert.ErrorIs(err, ErrDumpDuplicate)

	var syntax *ErrSyntax
	assert.True(errors.As(err, &syntax))
	assert.Equal(len(lines), syntax.LineNo)

	lines = lines[:len(lines)-1]
	snap, err := Parse(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	pc, ok := snap.PC()
	assert.True(ok)
	assert.Equal(uint32(4096), pc)
}

func TestParseErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse(strings.NewReader("r3 0x100000000\n"))
	assert.ErrorIs(err, ErrDumpValue)

	_, err = Parse(strings.NewReader("r3\n"))
	assert.ErrorIs(err, ErrDumpLine)

	_, err = Parse(strings.NewReader("r3 1 2\n"))
	assert.ErrorIs(err, ErrDumpLine)

	_, err = Parse(strings.NewReader("fault\n"))
	assert.ErrorIs(err, ErrDumpFault)

	_, err = Parse(strings.NewReader("r3 1\n"))
	assert.ErrorIs(err, ErrIncomplete)
	var syntax *ErrSyntax
	assert.False(errors.As(err, &syntax))
}

func TestParseFault(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse(strings.NewReader("r0 0\nfault Trap illegal instruction at 0x100008\n"))

	var fault *ReportedFault
	require.True(t, errors.As(err, &fault))
	assert.Equal("trap", fault.Reason)
	assert.Equal("illegal instruction at 0x100008", fault.Text)
	assert.Equal("backend reported trap: illegal instruction at 0x100008", err.Error())
}
