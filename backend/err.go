package backend

import (
	"errors"
	"time"

	"github.com/ezrec/ppcdiff/translate"
)

var f = translate.From

var (
	ErrExitStatus = errors.New(f("backend exited abnormally"))
	ErrNoState    = errors.New(f("backend produced no state"))
	ErrNoPath     = errors.New(f("backend executable not set"))
)

// ErrHaltAddress is a backend that stopped away from the exit marker.
type ErrHaltAddress struct {
	PC   uint32
	Exit uint32
}

func (err ErrHaltAddress) Error() string {
	return f("halted at %#08x, exit marker is %#08x", err.PC, err.Exit)
}

// TimeoutError is a backend run that exceeded its time bound.
type TimeoutError struct {
	Role    Role
	Backend string
	Limit   time.Duration
}

func (err *TimeoutError) Error() string {
	return f("%v backend %v: timed out after %v", err.Role, err.Backend, err.Limit)
}

// ExecutionFault is a backend run that failed for any reason but time.
type ExecutionFault struct {
	Role    Role
	Backend string
	Reason  Reason
	Err     error
}

func (err *ExecutionFault) Error() string {
	return f("%v backend %v: %v: %v", err.Role, err.Backend, err.Reason, err.Err)
}

func (err *ExecutionFault) Unwrap() error {
	return err.Err
}
