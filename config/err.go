package config

import (
	"errors"

	"github.com/ezrec/ppcdiff/translate"
)

var f = translate.From

var (
	ErrTimeout        = errors.New(f("timeout must be positive"))
	ErrScratch        = errors.New(f("scratch window too small"))
	ErrJobs           = errors.New(f("jobs must be at least 1"))
	ErrBackendMissing = errors.New(f("backend command not set"))
	ErrTextBase       = errors.New(f("text base must be word aligned"))
)

// ErrSetting is a global of the configuration file with an unusable value.
type ErrSetting string

func (err ErrSetting) Error() string {
	return f("setting '%v' has the wrong type or value", string(err))
}

// Error is an invalid or unreadable configuration.
type Error struct {
	Path string
	Err  error
}

func (err *Error) Error() string {
	if len(err.Path) == 0 {
		return f("config: %v", err.Err)
	}
	return f("config %v: %v", err.Path, err.Err)
}

func (err *Error) Unwrap() error {
	return err.Err
}
