// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package backend

//go:generate go tool stringer -linecomment -type=Role
//go:generate go tool stringer -linecomment -type=Reason

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ezrec/ppcdiff/asm"
	"github.com/ezrec/ppcdiff/snapshot"
)

// Role of a backend in a differential run.
type Role int

const (
	ROLE_REFERENCE = Role(0) // reference
	ROLE_DUT       = Role(1) // dut
)

// Reason classifies an execution fault.
type Reason int

const (
	REASON_CRASH  = Reason(0) // crash
	REASON_TRAP   = Reason(1) // trap
	REASON_HALT   = Reason(2) // halt
	REASON_CONFIG = Reason(3) // config
)

// ParseReason maps a reason name to a Reason. Unknown names are traps:
// the backend stopped on something the architecture defines.
func ParseReason(name string) (reason Reason, ok bool) {
	for r := REASON_CRASH; r <= REASON_CONFIG; r++ {
		if r.String() == name {
			reason = r
			ok = true
			return
		}
	}
	reason = REASON_TRAP
	return
}

// Backend executes a unit and reports the state at its exit marker. dir is
// a directory owned by this run.
type Backend interface {
	Name() string
	Run(ctx context.Context, unit *asm.Unit, dir string) (*snapshot.Snapshot, error)
}

// Adapter runs a backend in a role, under a time bound.
type Adapter struct {
	Verbose bool
	Role    Role
	Backend Backend
	Timeout time.Duration // 0 is unbounded.
}

var errTimeout = errors.New("adapter timeout")

type result struct {
	snap *snapshot.Snapshot
	err  error
}

// Run executes the unit. When the time bound expires, Run returns a
// *TimeoutError at once, without waiting for a backend that ignores its
// context. Every other failure is an *ExecutionFault.
func (a *Adapter) Run(ctx context.Context, unit *asm.Unit, dir string) (snap *snapshot.Snapshot, err error) {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, a.Timeout, errTimeout)
		defer cancel()
	}

	if a.Verbose {
		log.Printf("backend: %v %v: %v", a.Role, a.Backend.Name(), unit.Path)
	}

	done := make(chan result, 1)
	go func() {
		snap, err := a.Backend.Run(ctx, unit, dir)
		done <- result{snap: snap, err: err}
	}()

	select {
	case <-ctx.Done():
		err = a.interrupted(ctx)
	case res := <-done:
		if ctx.Err() != nil {
			err = a.interrupted(ctx)
			break
		}
		snap, err = res.snap, a.classify(res.snap, res.err)
		if err != nil {
			snap = nil
		}
	}

	if a.Verbose && err != nil {
		log.Printf("backend: %v", err)
	}

	return
}

func (a *Adapter) interrupted(ctx context.Context) error {
	if context.Cause(ctx) == errTimeout {
		return &TimeoutError{
			Role:    a.Role,
			Backend: a.Backend.Name(),
			Limit:   a.Timeout,
		}
	}
	return ctx.Err()
}

func (a *Adapter) fault(reason Reason, err error) *ExecutionFault {
	return &ExecutionFault{
		Role:    a.Role,
		Backend: a.Backend.Name(),
		Reason:  reason,
		Err:     err,
	}
}

func (a *Adapter) classify(snap *snapshot.Snapshot, err error) error {
	if err == nil {
		if snap == nil {
			return a.fault(REASON_CONFIG, ErrNoState)
		}
		return nil
	}

	var ef *ExecutionFault
	if errors.As(err, &ef) {
		return a.fault(ef.Reason, ef.Err)
	}

	var rf *snapshot.ReportedFault
	if errors.As(err, &rf) {
		reason, _ := ParseReason(rf.Reason)
		return a.fault(reason, err)
	}

	var se *snapshot.ErrSyntax
	if errors.Is(err, snapshot.ErrIncomplete) || errors.As(err, &se) {
		return a.fault(REASON_CONFIG, err)
	}

	return a.fault(REASON_CRASH, err)
}
