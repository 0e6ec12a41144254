// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package snapshot holds the terminal architectural state of one backend run.
//
// A Snapshot always contains the 32 GPRs, CR, XER, LR and CTR. It can only be
// created through a Builder, which refuses to build a partial snapshot, and
// it is never modified after creation.
package snapshot

import (
	"fmt"
	"iter"
	"strings"

	"github.com/ezrec/ppcdiff/arch"
	"github.com/ezrec/ppcdiff/internal"
)

// Snapshot is an immutable register file capture.
type Snapshot struct {
	regs  [arch.REG_COUNT]uint32
	pc    uint32
	hasPC bool
}

// Builder collects register values for a Snapshot.
type Builder struct {
	regs  [arch.REG_COUNT]uint32
	set   [arch.REG_COUNT]bool
	pc    uint32
	hasPC bool
}

// Set records a register value. Invalid registers are ignored.
func (b *Builder) Set(reg arch.Reg, value uint32) *Builder {
	if reg.Valid() {
		b.regs[reg] = value
		b.set[reg] = true
	}
	return b
}

// Has returns true if the register was set.
func (b *Builder) Has(reg arch.Reg) bool {
	return reg.Valid() && b.set[reg]
}

// SetPC records the address the backend halted at.
func (b *Builder) SetPC(pc uint32) *Builder {
	b.pc = pc
	b.hasPC = true
	return b
}

// Build returns the snapshot, or ErrRegisterMissing naming every register
// that was never set.
func (b *Builder) Build() (snap *Snapshot, err error) {
	var missing ErrRegisterMissing
	for reg := range arch.Regs() {
		if !b.set[reg] {
			missing = append(missing, reg)
		}
	}
	if len(missing) > 0 {
		err = missing
		return
	}

	snap = &Snapshot{
		regs:  b.regs,
		pc:    b.pc,
		hasPC: b.hasPC,
	}
	return
}

// New builds a snapshot from a complete register map.
func New(values map[arch.Reg]uint32) (snap *Snapshot, err error) {
	b := &Builder{}
	for reg, value := range values {
		b.Set(reg, value)
	}
	return b.Build()
}

// Value returns the value of a register. Invalid registers read as 0.
func (s *Snapshot) Value(reg arch.Reg) uint32 {
	if !reg.Valid() {
		return 0
	}
	return s.regs[reg]
}

// GPR returns general purpose register n.
func (s *Snapshot) GPR(n int) uint32 {
	reg, ok := arch.GPR(n)
	if !ok {
		return 0
	}
	return s.regs[reg]
}

// CR returns the condition register.
func (s *Snapshot) CR() uint32 { return s.regs[arch.REG_CR] }

// XER returns the fixed-point exception register.
func (s *Snapshot) XER() uint32 { return s.regs[arch.REG_XER] }

// LR returns the link register.
func (s *Snapshot) LR() uint32 { return s.regs[arch.REG_LR] }

// CTR returns the count register.
func (s *Snapshot) CTR() uint32 { return s.regs[arch.REG_CTR] }

// PC returns the halt address, if the backend reported one.
func (s *Snapshot) PC() (pc uint32, ok bool) {
	return s.pc, s.hasPC
}

// With returns a copy of the snapshot with one register replaced.
func (s *Snapshot) With(reg arch.Reg, value uint32) *Snapshot {
	dup := *s
	if reg.Valid() {
		dup.regs[reg] = value
	}
	return &dup
}

func (s *Snapshot) gprs() iter.Seq2[arch.Reg, uint32] {
	return func(yield func(arch.Reg, uint32) bool) {
		for n := range arch.GPR_COUNT {
			if !yield(arch.REG_R0+arch.Reg(n), s.regs[arch.REG_R0+arch.Reg(n)]) {
				return
			}
		}
	}
}

func (s *Snapshot) sprs() iter.Seq2[arch.Reg, uint32] {
	return func(yield func(arch.Reg, uint32) bool) {
		for _, reg := range []arch.Reg{arch.REG_CR, arch.REG_XER, arch.REG_LR, arch.REG_CTR} {
			if !yield(reg, s.regs[reg]) {
				return
			}
		}
	}
}

// Fields iterates over every register in canonical order: r0..r31, cr,
// xer, lr, ctr.
func (s *Snapshot) Fields() iter.Seq2[arch.Reg, uint32] {
	return internal.IterSeq2Concat(s.gprs(), s.sprs())
}

// Map returns the registers keyed by canonical name.
func (s *Snapshot) Map() (values map[string]uint32) {
	values = make(map[string]uint32, arch.REG_COUNT)
	for reg, value := range s.Fields() {
		values[reg.String()] = value
	}
	return
}

// Equal compares the register contents of two snapshots. The halt address
// is not compared.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.regs == other.regs
}

// String returns the register file in a compact multi-line form.
func (s *Snapshot) String() string {
	var sb strings.Builder
	for reg, value := range s.Fields() {
		fmt.Fprintf(&sb, "%-3v %04X_%04X", reg, value>>16, value&0xffff)
		if reg.IsGPR() && reg%4 != 3 {
			sb.WriteString("  ")
		} else {
			sb.WriteString("\n")
		}
	}
	if s.hasPC {
		fmt.Fprintf(&sb, "pc  %04X_%04X\n", s.pc>>16, s.pc&0xffff)
	}
	return sb.String()
}

// Diff returns the names of the registers whose values differ, in
// canonical order.
func (s *Snapshot) Diff(other *Snapshot) (names []string) {
	theirs := other.Map()
	for reg, value := range s.Fields() {
		if theirs[reg.String()] != value {
			names = append(names, reg.String())
		}
	}
	return
}
