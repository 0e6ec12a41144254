package workspace

import (
	"errors"

	"github.com/ezrec/ppcdiff/translate"
)

var f = translate.From

var (
	ErrBusy     = errors.New(f("workspace is claimed by another run"))
	ErrReleased = errors.New(f("workspace already released"))
	ErrNotDir   = errors.New(f("workspace is not a directory"))
)

// Error is a workspace that could not be claimed or released.
type Error struct {
	Path string
	Err  error
}

func (err *Error) Error() string {
	return f("workspace %v: %v", err.Path, err.Err)
}

func (err *Error) Unwrap() error {
	return err.Err
}
