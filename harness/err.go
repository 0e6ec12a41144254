package harness

//go:generate go tool stringer -linecomment -type=ErrorKind

import (
	"errors"

	"github.com/ezrec/ppcdiff/asm"
	"github.com/ezrec/ppcdiff/backend"
	"github.com/ezrec/ppcdiff/compare"
	"github.com/ezrec/ppcdiff/config"
	"github.com/ezrec/ppcdiff/selector"
	"github.com/ezrec/ppcdiff/translate"
	"github.com/ezrec/ppcdiff/workspace"
)

var f = translate.From

var (
	ErrNoCases = errors.New(f("no test cases"))
)

// ErrorKind is the class of an evaluation outcome.
type ErrorKind int

const (
	KIND_NONE      = ErrorKind(0) // none
	KIND_MISMATCH  = ErrorKind(1) // mismatch
	KIND_ASSEMBLY  = ErrorKind(2) // assembly
	KIND_SELECTOR  = ErrorKind(3) // selector
	KIND_EXECUTION = ErrorKind(4) // execution
	KIND_TIMEOUT   = ErrorKind(5) // timeout
	KIND_WORKSPACE = ErrorKind(6) // workspace
	KIND_CONFIG    = ErrorKind(7) // config
	KIND_OTHER     = ErrorKind(8) // other
)

// Kind classifies an error returned by the harness.
func Kind(err error) ErrorKind {
	if err == nil {
		return KIND_NONE
	}

	var mismatch *compare.MismatchError
	var assembly *asm.AssemblyError
	var parse *selector.ParseError
	var timeout *backend.TimeoutError
	var fault *backend.ExecutionFault
	var ws *workspace.Error
	var cfg *config.Error

	switch {
	case errors.As(err, &mismatch):
		return KIND_MISMATCH
	case errors.As(err, &parse):
		return KIND_SELECTOR
	case errors.As(err, &assembly):
		return KIND_ASSEMBLY
	case errors.As(err, &timeout):
		return KIND_TIMEOUT
	case errors.As(err, &fault):
		return KIND_EXECUTION
	case errors.As(err, &ws):
		return KIND_WORKSPACE
	case errors.As(err, &cfg):
		return KIND_CONFIG
	}

	return KIND_OTHER
}
