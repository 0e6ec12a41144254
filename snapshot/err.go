package snapshot

import (
	"errors"
	"strings"

	"github.com/ezrec/ppcdiff/arch"
	"github.com/ezrec/ppcdiff/translate"
)

var f = translate.From

var (
	ErrIncomplete    = errors.New(f("incomplete snapshot"))
	ErrDumpLine      = errors.New(f("expected 'name value'"))
	ErrDumpValue     = errors.New(f("value is not a 32-bit integer"))
	ErrDumpDuplicate = errors.New(f("register listed twice"))
	ErrDumpFault     = errors.New(f("fault needs a reason"))
)

// ErrRegisterMissing lists the registers a backend did not report.
type ErrRegisterMissing []arch.Reg

func (err ErrRegisterMissing) Error() string {
	names := make([]string, len(err))
	for n, reg := range err {
		names[n] = reg.String()
	}
	return f("missing registers: %v", strings.Join(names, " "))
}

func (err ErrRegisterMissing) Unwrap() error {
	return ErrIncomplete
}

// ErrSyntax locates a malformed line of a state dump.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ReportedFault is a fault a backend wrote into its state dump instead of
// (or in addition to) the registers.
type ReportedFault struct {
	Reason string // First word after 'fault'.
	Text   string // Remainder of the line.
}

func (err *ReportedFault) Error() string {
	if len(err.Text) == 0 {
		return f("backend reported %v", err.Reason)
	}
	return f("backend reported %v: %v", err.Reason, err.Text)
}
