// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package selector compiles field tokens such as "r3", "cr", "cr:29-31",
// "so", "ov", "ca" and "tbc" into accessors over a snapshot.
//
// Grammar (case-insensitive, surrounding whitespace ignored):
//
//	FIELD    := REGNAME | "cr" | "cr:" RANGE | FLAGNAME
//	RANGE    := INT "-" INT   ; 0 <= INT <= 31, first <= second
//	REGNAME  := "r" INT       ; 0 <= INT <= 31
//	FLAGNAME := "so" | "ov" | "ca" | "tbc"
package selector

import (
	"fmt"

	"github.com/ezrec/ppcdiff/arch"
	"github.com/ezrec/ppcdiff/snapshot"
)

// Kind is the selector variant.
type Kind int

//go:generate go tool stringer -linecomment -type=Kind
const (
	KIND_REGISTER = Kind(0) // register
	KIND_FLAG     = Kind(1) // flag
	KIND_CR       = Kind(2) // cr
	KIND_CR_RANGE = Kind(3) // cr-range
)

// Flag is a named XER field.
type Flag int

//go:generate go tool stringer -linecomment -type=Flag
const (
	FLAG_SO  = Flag(0) // so
	FLAG_OV  = Flag(1) // ov
	FLAG_CA  = Flag(2) // ca
	FLAG_TBC = Flag(3) // tbc
)

// Architectural bit range of each XER flag.
var flagBits = [...]struct{ start, end uint }{
	FLAG_SO:  {arch.XER_BIT_SO, arch.XER_BIT_SO},
	FLAG_OV:  {arch.XER_BIT_OV, arch.XER_BIT_OV},
	FLAG_CA:  {arch.XER_BIT_CA, arch.XER_BIT_CA},
	FLAG_TBC: {arch.XER_BIT_TBC, arch.XER_BIT_TBC_E},
}

// Selector is a compiled field accessor. Selectors are comparable; two
// parses of the same token are equal.
type Selector struct {
	Kind  Kind
	Reg   arch.Reg // Register, for KIND_REGISTER.
	Flag  Flag     // Flag, for KIND_FLAG.
	Start uint     // First CR bit, for KIND_CR_RANGE.
	End   uint     // Last CR bit, for KIND_CR_RANGE.
}

// WholeRegister selects a full GPR.
func WholeRegister(reg arch.Reg) Selector {
	return Selector{Kind: KIND_REGISTER, Reg: reg}
}

// NamedFlag selects an XER flag.
func NamedFlag(flag Flag) Selector {
	return Selector{Kind: KIND_FLAG, Reg: arch.REG_XER, Flag: flag}
}

// WholeCR selects the full condition register.
func WholeCR() Selector {
	return Selector{Kind: KIND_CR, Reg: arch.REG_CR}
}

// CRBitRange selects CR bits start..end, inclusive, in architectural
// numbering.
func CRBitRange(start, end uint) (sel Selector, err error) {
	if start >= arch.REG_BITS || end >= arch.REG_BITS {
		err = ErrRangeBounds
		return
	}
	if start > end {
		err = ErrRangeOrder
		return
	}

	sel = Selector{Kind: KIND_CR_RANGE, Reg: arch.REG_CR, Start: start, End: end}
	return
}

// bits returns the register and the inclusive architectural bit range the
// selector covers.
func (sel Selector) bits() (reg arch.Reg, start, end uint) {
	switch sel.Kind {
	case KIND_FLAG:
		r := flagBits[sel.Flag]
		return arch.REG_XER, r.start, r.end
	case KIND_CR:
		return arch.REG_CR, 0, arch.REG_BITS - 1
	case KIND_CR_RANGE:
		return arch.REG_CR, sel.Start, sel.End
	default:
		return sel.Reg, 0, arch.REG_BITS - 1
	}
}

// Width returns the field width in bits.
func (sel Selector) Width() uint {
	_, start, end := sel.bits()
	return end - start + 1
}

// Extract reads the field from a snapshot, right aligned.
func (sel Selector) Extract(snap *snapshot.Snapshot) uint32 {
	reg, start, end := sel.bits()
	return arch.Bits(snap.Value(reg), start, end)
}

// Insert returns a copy of the snapshot with the field replaced by the low
// Width() bits of value.
func (sel Selector) Insert(snap *snapshot.Snapshot, value uint32) *snapshot.Snapshot {
	reg, start, end := sel.bits()
	return snap.With(reg, arch.SetBits(snap.Value(reg), start, end, value))
}

// String returns the canonical token, in architectural bit numbering.
func (sel Selector) String() string {
	switch sel.Kind {
	case KIND_FLAG:
		return sel.Flag.String()
	case KIND_CR:
		return "cr"
	case KIND_CR_RANGE:
		return fmt.Sprintf("cr:%d-%d", sel.Start, sel.End)
	default:
		return sel.Reg.String()
	}
}
