// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config loads ppcdiff configuration files.
//
// A configuration file is a Starlark program. Its globals set the harness
// options, and the predeclared builtins build the toolchain and backend
// descriptions:
//
//	timeout = "5s"
//	scratch = 256
//	cr_bit_order = "msb0"
//	assembler = toolchain(assembler = "powerpc-linux-gnu-as", text_base = 0x10000)
//	reference = backend("qemu", ["qemu-ppc", "-g", "1234", "{elf}"])
//	dut = backend("model", ["ppcmodel", "--elf", "{elf}", "--state", "{state}"],
//	              env = {"MODEL_TRACE": "0"})
package config

import (
	"fmt"
	"log"
	"runtime"
	"slices"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/ppcdiff/asm"
	"github.com/ezrec/ppcdiff/selector"
)

// Toolchain describes the external assembler and linker. Empty fields
// select the asm package defaults.
type Toolchain struct {
	As       string
	Ld       string
	AsFlags  []string
	LdFlags  []string
	TextBase uint32
	Env      []string
}

// Backend describes an external execution backend.
type Backend struct {
	Name    string
	Command []string // Program and arguments, with placeholders.
	Env     []string
}

// Config is the complete harness configuration.
type Config struct {
	Timeout   time.Duration     // Bound on each backend run.
	Scratch   int               // Scratch bytes on each side of r1.
	CROrder   selector.BitOrder // Numbering of cr:a-b ranges.
	Workdir   string            // Workspace root; empty uses temporary directories.
	Keep      bool              // Keep temporary workspaces.
	Jobs      int               // Concurrent evaluations.
	Assembler Toolchain
	Reference Backend
	DUT       Backend
}

const DEFAULT_TIMEOUT = 10 * time.Second

// DefaultConfig returns the configuration used when no file is given.
// Backends have no default and must be configured.
func DefaultConfig() *Config {
	return &Config{
		Timeout: DEFAULT_TIMEOUT,
		Scratch: asm.SCRATCH_DEFAULT,
		CROrder: selector.ORDER_MSB0,
		Jobs:    runtime.NumCPU(),
	}
}

// Validate checks that the configuration can drive an evaluation.
func (c *Config) Validate() (err error) {
	switch {
	case c.Timeout <= 0:
		err = ErrTimeout
	case c.Scratch < asm.SCRATCH_MIN:
		err = ErrScratch
	case c.Jobs < 1:
		err = ErrJobs
	case c.Assembler.TextBase%4 != 0:
		err = ErrTextBase
	case len(c.Reference.Command) == 0:
		err = fmt.Errorf("%w: reference", ErrBackendMissing)
	case len(c.DUT.Command) == 0:
		err = fmt.Errorf("%w: dut", ErrBackendMissing)
	}
	if err != nil {
		err = &Error{Err: err}
	}
	return
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Assembler.AsFlags = slices.Clone(c.Assembler.AsFlags)
	clone.Assembler.LdFlags = slices.Clone(c.Assembler.LdFlags)
	clone.Assembler.Env = slices.Clone(c.Assembler.Env)
	clone.Reference.Command = slices.Clone(c.Reference.Command)
	clone.Reference.Env = slices.Clone(c.Reference.Env)
	clone.DUT.Command = slices.Clone(c.DUT.Command)
	clone.DUT.Env = slices.Clone(c.DUT.Env)
	return &clone
}

// Load reads a configuration file over DefaultConfig. The result is not
// validated.
func Load(path string) (cfg *Config, err error) {
	return LoadSource(path, nil)
}

// LoadSource evaluates a configuration program. src is as for
// starlark.ExecFileOptions: nil reads filename, otherwise a string or
// []byte holds the program text.
func LoadSource(filename string, src any) (cfg *Config, err error) {
	thread := &starlark.Thread{
		Name: "config",
		Print: func(_ *starlark.Thread, msg string) {
			log.Printf("config: %v", msg)
		},
	}

	opts := syntax.FileOptions{
		TopLevelControl: true,
		GlobalReassign:  true,
	}

	globals, err := starlark.ExecFileOptions(&opts, thread, filename, src, predeclared)
	if err != nil {
		err = &Error{Path: filename, Err: err}
		return
	}

	cfg = DefaultConfig()
	err = cfg.apply(globals)
	if err != nil {
		cfg = nil
		err = &Error{Path: filename, Err: err}
		return
	}

	return
}

// apply copies the known globals into the configuration.
func (c *Config) apply(globals starlark.StringDict) (err error) {
	for _, name := range globals.Keys() {
		value := globals[name]
		ok := true

		switch name {
		case "timeout":
			var text string
			text, ok = starlark.AsString(value)
			if ok {
				c.Timeout, err = time.ParseDuration(text)
				ok = err == nil
			}
		case "scratch":
			var n int64
			n, ok = asInt(value)
			c.Scratch = int(n)
		case "cr_bit_order":
			var text string
			text, ok = starlark.AsString(value)
			if ok {
				c.CROrder, err = selector.ParseBitOrder(text)
				ok = err == nil
			}
		case "workdir":
			c.Workdir, ok = starlark.AsString(value)
		case "keep":
			var b starlark.Bool
			b, ok = value.(starlark.Bool)
			c.Keep = bool(b)
		case "jobs":
			var n int64
			n, ok = asInt(value)
			c.Jobs = int(n)
		case "assembler":
			c.Assembler, ok = asToolchain(value)
		case "reference":
			c.Reference, ok = asBackend(value)
		case "dut":
			c.DUT, ok = asBackend(value)
		}

		if !ok {
			err = ErrSetting(name)
			return
		}
	}

	return
}
