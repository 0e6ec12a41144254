package selector

import (
	"errors"

	"github.com/ezrec/ppcdiff/translate"
)

var f = translate.From

var (
	ErrFieldUnknown   = errors.New(f("unknown field"))
	ErrRegisterBounds = errors.New(f("register number not in 0..31"))
	ErrRangeSyntax    = errors.New(f("range is not INT-INT"))
	ErrRangeBounds    = errors.New(f("range bit not in 0..31"))
	ErrRangeOrder     = errors.New(f("range start after end"))
	ErrBitOrder       = errors.New(f("bit order is not msb0 or lsb0"))
)

// ParseError names the selector token that could not be parsed.
type ParseError struct {
	Token string
	Err   error
}

func (err *ParseError) Error() string {
	return f("field '%v': %v", err.Token, err.Err)
}

func (err *ParseError) Unwrap() error {
	return err.Err
}
