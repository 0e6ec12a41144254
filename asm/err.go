package asm

import (
	"errors"
	"strings"

	"github.com/ezrec/ppcdiff/translate"
)

var f = translate.From

var (
	// Frame errors
	ErrSymbolReserved = errors.New(f("symbol is reserved by the harness frame"))
	ErrScratchSize    = errors.New(f("scratch window too small"))

	// Substitution errors
	ErrParamMissing   = errors.New(f("no such parameter"))
	ErrParamDuplicate = errors.New(f("parameter duplicated"))
	ErrParamWidth     = errors.New(f("parameter width not in 1..32"))
	ErrParamRange     = errors.New(f("parameter value does not fit its width"))
	ErrParamFormat    = errors.New(f("unknown parameter format"))
	ErrParamName      = errors.New(f("invalid parameter name"))
	ErrExpressionOpen = errors.New(f("unterminated $("))

	// Toolchain errors
	ErrToolFailed = errors.New(f("tool failed"))
	ErrElfClass   = errors.New(f("not a 32-bit ELF file"))
	ErrElfData    = errors.New(f("not a big-endian ELF file"))
	ErrElfMachine = errors.New(f("not a PowerPC ELF file"))
)

type ErrSymbolMissing string

func (es ErrSymbolMissing) Error() string {
	return f("symbol %v missing", string(es))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid 32-bit expression", string(err))
}

// AssemblyError reports a failure to turn a snippet into a binary. Line is
// the 1-based snippet line when known, 0 otherwise. Output holds the tool
// messages, if any.
type AssemblyError struct {
	Stage  Stage
	Line   int
	Output string
	Err    error
}

func (err *AssemblyError) Error() string {
	var msg string
	if err.Line > 0 {
		msg = f("assembly (%v) line %d: %v", err.Stage, err.Line, err.Err)
	} else {
		msg = f("assembly (%v): %v", err.Stage, err.Err)
	}
	if output := strings.TrimSpace(err.Output); len(output) > 0 {
		msg += "\n" + output
	}
	return msg
}

func (err *AssemblyError) Unwrap() error {
	return err.Err
}
