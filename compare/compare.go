// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package compare evaluates compiled selectors against a reference and a DUT
// snapshot and reports every divergent field.
package compare

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/ezrec/ppcdiff/selector"
	"github.com/ezrec/ppcdiff/snapshot"
)

// Mismatch is one field whose values differ. Expected is the reference
// value, Actual the DUT value, both right aligned at Width bits.
type Mismatch struct {
	Field    string
	Width    uint
	Expected uint32
	Actual   uint32
}

// hex formats a value with enough digits for its width.
func hex(value uint32, width uint) string {
	digits := max(1, int((width+3)/4))
	return fmt.Sprintf("%#0*x", digits, value)
}

func (m Mismatch) String() string {
	if m.Width == 1 {
		return f("%v: expected %d, actual %d", m.Field, m.Expected, m.Actual)
	}
	return f("%v: expected %v, actual %v", m.Field, hex(m.Expected, m.Width), hex(m.Actual, m.Width))
}

// Verdict is the result of one comparison. It passes when Mismatches is
// empty.
type Verdict struct {
	Mismatches []Mismatch // In selector order.
}

// Pass returns true if every selected field matched.
func (v Verdict) Pass() bool {
	return len(v.Mismatches) == 0
}

// Err returns nil for a passing verdict, or a *MismatchError.
func (v Verdict) Err() error {
	if v.Pass() {
		return nil
	}
	return &MismatchError{Mismatches: v.Mismatches}
}

func (v Verdict) String() string {
	if v.Pass() {
		return "PASS"
	}

	lines := []string{"FAIL"}
	for _, m := range v.Mismatches {
		lines = append(lines, "  "+m.String())
	}
	return strings.Join(lines, "\n")
}

// Compare extracts every field from both snapshots. All fields are
// evaluated; equality is exact at the field width.
func Compare(ref, dut *snapshot.Snapshot, fields []selector.Field) (verdict Verdict) {
	for _, field := range fields {
		expected := field.Extract(ref)
		actual := field.Extract(dut)
		if expected == actual {
			continue
		}

		verdict.Mismatches = append(verdict.Mismatches, Mismatch{
			Field:    field.Token,
			Width:    field.Width(),
			Expected: expected,
			Actual:   actual,
		})
	}

	return
}

// Explain renders every register difference between the two snapshots,
// selected or not, as a (-reference +dut) diff. It returns the empty string
// for identical register files.
func Explain(ref, dut *snapshot.Snapshot) string {
	hexed := func(snap *snapshot.Snapshot) map[string]string {
		values := make(map[string]string)
		for name, value := range snap.Map() {
			values[name] = hex(value, 32)
		}
		return values
	}

	return cmp.Diff(hexed(ref), hexed(dut))
}
