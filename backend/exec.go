// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ezrec/ppcdiff/asm"
	"github.com/ezrec/ppcdiff/snapshot"
)

// Files an Exec backend leaves in its directory.
const (
	STATE_FILE = "state.txt"
	LOG_FILE   = "run.log"
)

// Exec is a backend implemented by an external program, run once per unit.
//
// Arguments may hold the placeholders {elf}, {entry}, {exit}, {state} and
// {dir}. The program writes the state at the exit marker as a state dump to
// {state}, or to its standard output if no argument names {state}. Anything
// else it prints goes to run.log. A program that exits with an error after
// dumping a fault line reports that fault rather than a crash.
type Exec struct {
	Verbose bool
	Label   string   // Backend name. Empty uses the program base name.
	Path    string   // Program to run.
	Args    []string // Arguments, with placeholders.
	Env     []string // Extra environment, "KEY=value".
}

var _ Backend = (*Exec)(nil)

// WAIT_DELAY bounds the wait for output of a killed process group.
const WAIT_DELAY = time.Second

func (ex *Exec) Name() string {
	if len(ex.Label) > 0 {
		return ex.Label
	}
	return filepath.Base(ex.Path)
}

// expand fills the argument placeholders.
func (ex *Exec) expand(unit *asm.Unit, dir string) (args []string, stateArg bool) {
	r := strings.NewReplacer(
		"{elf}", unit.Path,
		"{entry}", fmt.Sprintf("%#x", unit.Entry),
		"{exit}", fmt.Sprintf("%#x", unit.Exit),
		"{state}", filepath.Join(dir, STATE_FILE),
		"{dir}", dir,
	)

	args = make([]string, len(ex.Args))
	for n, arg := range ex.Args {
		stateArg = stateArg || strings.Contains(arg, "{state}")
		args[n] = r.Replace(arg)
	}

	return
}

// Run executes the program and reads back its state dump.
func (ex *Exec) Run(ctx context.Context, unit *asm.Unit, dir string) (snap *snapshot.Snapshot, err error) {
	if len(ex.Path) == 0 {
		err = &ExecutionFault{Reason: REASON_CONFIG, Err: ErrNoPath}
		return
	}

	args, stateArg := ex.expand(unit, dir)
	statePath := filepath.Join(dir, STATE_FILE)

	err = os.Remove(statePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return
	}

	runLog, err := os.Create(filepath.Join(dir, LOG_FILE))
	if err != nil {
		return
	}
	defer func() { _ = runLog.Close() }()

	cmd := exec.CommandContext(ctx, ex.Path, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), ex.Env...)
	cmd.Stderr = runLog
	cmd.WaitDelay = WAIT_DELAY
	setProcessGroup(cmd)

	stdout := &bytes.Buffer{}
	if stateArg {
		cmd.Stdout = runLog
	} else {
		cmd.Stdout = stdout
	}

	if ex.Verbose {
		log.Printf("backend: %v: %v %v", ex.Name(), ex.Path, args)
	}

	err = cmd.Run()
	if ctx.Err() != nil {
		err = ctx.Err()
		return
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			err = &ExecutionFault{Reason: REASON_CONFIG, Err: err}
			return
		}
		if rf := reportedFault(stateArg, statePath, stdout.Bytes()); rf != nil {
			err = rf
			return
		}
		err = &ExecutionFault{
			Reason: REASON_CRASH,
			Err:    fmt.Errorf("%w: %v", ErrExitStatus, exitErr),
		}
		return
	}

	if !stateArg {
		if stdout.Len() == 0 {
			err = &ExecutionFault{Reason: REASON_CONFIG, Err: ErrNoState}
			return
		}
		err = os.WriteFile(statePath, stdout.Bytes(), 0o644)
		if err != nil {
			return
		}
	}

	state, err := os.Open(statePath)
	if errors.Is(err, os.ErrNotExist) {
		err = &ExecutionFault{Reason: REASON_CONFIG, Err: ErrNoState}
		return
	}
	if err != nil {
		return
	}
	defer func() { _ = state.Close() }()

	snap, err = snapshot.Parse(state)
	if err != nil {
		snap = nil
		return
	}

	if pc, ok := snap.PC(); ok && pc != unit.Exit {
		snap = nil
		err = &ExecutionFault{
			Reason: REASON_HALT,
			Err:    ErrHaltAddress{PC: pc, Exit: unit.Exit},
		}
		return
	}

	return
}

// reportedFault returns the fault a failed run wrote to its dump, if any.
func reportedFault(stateArg bool, statePath string, stdout []byte) (rf *snapshot.ReportedFault) {
	dump := stdout
	if stateArg {
		var err error
		dump, err = os.ReadFile(statePath)
		if err != nil {
			return
		}
	}

	_, err := snapshot.Parse(bytes.NewReader(dump))
	errors.As(err, &rf)
	return
}

// Command builds an Exec from a command line: the program followed by its
// arguments.
func Command(label string, argv ...string) (ex *Exec) {
	ex = &Exec{Label: label}
	if len(argv) > 0 {
		ex.Path = argv[0]
		ex.Args = slices.Clone(argv[1:])
	}
	return
}
