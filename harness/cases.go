// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package harness

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/ppcdiff/asm"
	"github.com/ezrec/ppcdiff/compare"
)

// Case is one differential test case.
type Case struct {
	Name      string      // Label for reports.
	Snippet   string      // Snippet text, or a template when Params is set.
	Params    []asm.Param // Operands substituted into the snippet.
	Selectors []string    // Fields to compare.
	Workspace string      // Workspace path; empty picks one.
}

// Result is the outcome of a Case.
type Result struct {
	Case    Case
	Verdict compare.Verdict
	Err     error
}

// Kind classifies the result; a failing verdict is a mismatch.
func (r Result) Kind() ErrorKind {
	if r.Err == nil && !r.Verdict.Pass() {
		return KIND_MISMATCH
	}
	return Kind(r.Err)
}

// EvaluateCase substitutes the case parameters, if any, and evaluates it.
func (h *Harness) EvaluateCase(ctx context.Context, c Case) (result Result) {
	result.Case = c

	snippet := c.Snippet
	if len(c.Params) > 0 {
		snippet, result.Err = asm.Substitute(c.Snippet, c.Params...)
		if result.Err != nil {
			return
		}
	}

	result.Verdict, result.Err = h.Evaluate(ctx, snippet, c.Selectors, c.Workspace)
	return
}

// EvaluateAll evaluates cases with at most jobs running at once, and returns
// their results in input order. Each case owns its workspace: cases without
// one get a numbered directory under the harness workdir, or a temporary
// directory. The error is only set if ctx ends early.
func (h *Harness) EvaluateAll(ctx context.Context, cases []Case, jobs int) (results []Result, err error) {
	if len(cases) == 0 {
		err = ErrNoCases
		return
	}
	if jobs < 1 {
		jobs = 1
	}

	results = make([]Result, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for n, c := range cases {
		if len(c.Workspace) == 0 && len(h.workdir) > 0 {
			c.Workspace = filepath.Join(h.workdir, fmt.Sprintf("case-%04d", n))
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				results[n] = Result{Case: c, Err: ctx.Err()}
				return ctx.Err()
			}
			results[n] = h.EvaluateCase(ctx, c)
			if h.verbose {
				log.Printf("harness: case %d %v: %v", n, c.Name, results[n].Kind())
			}
			return nil
		})
	}

	err = g.Wait()
	return
}
