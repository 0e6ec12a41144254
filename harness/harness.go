// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package harness runs differential conformance cases: a snippet is wrapped,
// assembled once, executed on a reference and a device-under-test backend,
// and the selected architectural fields of both final states are compared.
package harness

import (
	"context"
	"log"
	"time"

	"github.com/ezrec/ppcdiff/asm"
	"github.com/ezrec/ppcdiff/backend"
	"github.com/ezrec/ppcdiff/compare"
	"github.com/ezrec/ppcdiff/config"
	"github.com/ezrec/ppcdiff/selector"
	"github.com/ezrec/ppcdiff/snapshot"
	"github.com/ezrec/ppcdiff/workspace"
)

// Harness evaluates cases. It holds no per-case state, and is safe for
// concurrent use.
type Harness struct {
	verbose   bool
	builder   asm.Builder
	assembler asm.Assembler
	parser    selector.Parser
	reference backend.Adapter
	dut       backend.Adapter
	workdir   string
	keep      bool
}

// Option configures a Harness.
type Option func(h *Harness)

// WithVerbose logs the progress of each evaluation.
func WithVerbose(verbose bool) Option {
	return func(h *Harness) {
		h.verbose = verbose
		h.builder.Verbose = verbose
		h.reference.Verbose = verbose
		h.dut.Verbose = verbose
	}
}

// WithTimeout bounds each backend run.
func WithTimeout(timeout time.Duration) Option {
	return func(h *Harness) {
		h.reference.Timeout = timeout
		h.dut.Timeout = timeout
	}
}

// WithScratch sets the scratch bytes on each side of the initial r1.
func WithScratch(scratch int) Option {
	return func(h *Harness) {
		h.builder.Scratch = scratch
	}
}

// WithBitOrder sets the numbering of cr: range selectors.
func WithBitOrder(order selector.BitOrder) Option {
	return func(h *Harness) {
		h.parser.Order = order
	}
}

// WithWorkdir places the workspaces of EvaluateAll under dir.
func WithWorkdir(dir string) Option {
	return func(h *Harness) {
		h.workdir = dir
	}
}

// WithKeep keeps temporary workspaces after evaluation.
func WithKeep(keep bool) Option {
	return func(h *Harness) {
		h.keep = keep
	}
}

// New builds a harness from an assembler and the two backends.
func New(assembler asm.Assembler, reference, dut backend.Backend, opts ...Option) (h *Harness) {
	h = &Harness{
		assembler: assembler,
		reference: backend.Adapter{Role: backend.ROLE_REFERENCE, Backend: reference, Timeout: config.DEFAULT_TIMEOUT},
		dut:       backend.Adapter{Role: backend.ROLE_DUT, Backend: dut, Timeout: config.DEFAULT_TIMEOUT},
	}

	for _, opt := range opts {
		opt(h)
	}

	return
}

// FromConfig builds a harness driving the configured GNU toolchain and
// external backends. Options are applied after the configuration.
func FromConfig(cfg *config.Config, opts ...Option) (h *Harness, err error) {
	err = cfg.Validate()
	if err != nil {
		return
	}

	tc := &asm.Toolchain{
		As:       cfg.Assembler.As,
		Ld:       cfg.Assembler.Ld,
		AsFlags:  cfg.Assembler.AsFlags,
		LdFlags:  cfg.Assembler.LdFlags,
		TextBase: cfg.Assembler.TextBase,
		Env:      cfg.Assembler.Env,
	}

	ref := backend.Command(cfg.Reference.Name, cfg.Reference.Command...)
	ref.Env = cfg.Reference.Env

	dut := backend.Command(cfg.DUT.Name, cfg.DUT.Command...)
	dut.Env = cfg.DUT.Env

	opts = append([]Option{
		WithTimeout(cfg.Timeout),
		WithScratch(cfg.Scratch),
		WithBitOrder(cfg.CROrder),
		WithWorkdir(cfg.Workdir),
		WithKeep(cfg.Keep),
	}, opts...)

	h = New(tc, ref, dut, opts...)

	tc.Verbose = h.verbose
	ref.Verbose = h.verbose
	dut.Verbose = h.verbose

	return
}

// Names returns the names of the reference and DUT backends.
func (h *Harness) Names() (reference, dut string) {
	return h.reference.Backend.Name(), h.dut.Backend.Name()
}

type outcome struct {
	role backend.Role
	snap *snapshot.Snapshot
	err  error
}

// Evaluate runs one snippet on both backends and compares the selected
// fields. An empty workspacePath claims a temporary workspace.
//
// Selectors are compiled before anything runs. The two backends run
// concurrently; the first error from either is returned at once. A
// mismatch is a failing Verdict, not an error.
func (h *Harness) Evaluate(ctx context.Context, snippet string, selectors []string, workspacePath string) (verdict compare.Verdict, err error) {
	fields, err := h.parser.Compile(selectors)
	if err != nil {
		return
	}

	ws, err := workspace.Claim(workspacePath)
	if err != nil {
		return
	}
	ws.Verbose = h.verbose
	ws.Keep = h.keep
	defer func() {
		rerr := ws.Release()
		if err == nil {
			err = rerr
		}
	}()

	if h.verbose {
		log.Printf("harness: workspace %v", ws.Path())
	}

	src, err := h.builder.Build(snippet)
	if err != nil {
		return
	}

	unit, err := h.assembler.Assemble(ctx, src, ws.Unit())
	if err != nil {
		return
	}

	adapters := []*backend.Adapter{&h.reference, &h.dut}
	dirs := make([]string, len(adapters))
	for n, a := range adapters {
		dirs[n], err = ws.Sub(a.Role.String())
		if err != nil {
			return
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan outcome, len(adapters))
	for n, a := range adapters {
		go func() {
			snap, err := a.Run(ctx, unit, dirs[n])
			results <- outcome{role: a.Role, snap: snap, err: err}
		}()
	}

	snaps := map[backend.Role]*snapshot.Snapshot{}
	for range adapters {
		out := <-results
		if out.err != nil {
			err = out.err
			return
		}
		snaps[out.role] = out.snap
	}

	ref, dut := snaps[backend.ROLE_REFERENCE], snaps[backend.ROLE_DUT]
	verdict = compare.Compare(ref, dut, fields)

	if h.verbose {
		log.Printf("harness: %v", verdict)
		if !verdict.Pass() {
			log.Printf("harness: full state (-%v +%v):\n%v", backend.ROLE_REFERENCE, backend.ROLE_DUT, compare.Explain(ref, dut))
		}
	}

	return
}
