// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package selector

import (
	"strconv"
	"strings"

	"github.com/ezrec/ppcdiff/arch"
)

// BitOrder is the numbering used by "cr:" range tokens.
type BitOrder int

//go:generate go tool stringer -linecomment -type=BitOrder
const (
	ORDER_MSB0 = BitOrder(0) // msb0
	ORDER_LSB0 = BitOrder(1) // lsb0
)

// ParseBitOrder parses "msb0" or "lsb0". The empty string is msb0.
func ParseBitOrder(text string) (order BitOrder, err error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "msb0":
		order = ORDER_MSB0
	case "lsb0":
		order = ORDER_LSB0
	default:
		err = ErrBitOrder
	}
	return
}

var flagMap = map[string]Flag{
	"so":  FLAG_SO,
	"ov":  FLAG_OV,
	"ca":  FLAG_CA,
	"tbc": FLAG_TBC,
}

// Parser parses field tokens. The zero value uses architectural (msb0)
// bit numbering.
type Parser struct {
	Order BitOrder // Numbering of cr: ranges.
}

// Field is a compiled selector together with the token that produced it.
type Field struct {
	Token string // Normalized token, used in diagnostics.
	Selector
}

// Parse parses a token with the default Parser.
func Parse(token string) (Selector, error) {
	return Parser{}.Parse(token)
}

// Compile parses tokens with the default Parser.
func Compile(tokens []string) ([]Field, error) {
	return Parser{}.Compile(tokens)
}

// number parses an INT of the grammar. Only decimal digits are accepted.
func number(text string) (value uint, ok bool) {
	if len(text) == 0 || len(text) > 3 {
		return
	}
	for _, c := range text {
		if c < '0' || c > '9' {
			return
		}
	}
	v, err := strconv.ParseUint(text, 10, 16)
	if err != nil {
		return
	}
	return uint(v), true
}

func (p Parser) crRange(text string) (sel Selector, err error) {
	lo, hi, ok := strings.Cut(text, "-")
	if !ok {
		err = ErrRangeSyntax
		return
	}
	start, ok := number(lo)
	if !ok {
		err = ErrRangeSyntax
		return
	}
	end, ok := number(hi)
	if !ok {
		err = ErrRangeSyntax
		return
	}

	sel, err = CRBitRange(start, end)
	if err != nil {
		return
	}

	if p.Order == ORDER_LSB0 {
		last := uint(arch.REG_BITS - 1)
		sel.Start, sel.End = last-end, last-start
	}

	return
}

// Parse compiles a single token. It is deterministic and has no side
// effects; errors are *ParseError values naming the token.
func (p Parser) Parse(token string) (sel Selector, err error) {
	text := strings.ToLower(strings.TrimSpace(token))

	defer func() {
		if err != nil {
			err = &ParseError{Token: token, Err: err}
		}
	}()

	if text == "cr" {
		sel = WholeCR()
		return
	}

	if rest, ok := strings.CutPrefix(text, "cr:"); ok {
		sel, err = p.crRange(rest)
		return
	}

	if flag, ok := flagMap[text]; ok {
		sel = NamedFlag(flag)
		return
	}

	if rest, ok := strings.CutPrefix(text, "r"); ok {
		n, ok := number(rest)
		if !ok {
			err = ErrFieldUnknown
			return
		}
		reg, ok := arch.GPR(int(n))
		if !ok {
			err = ErrRegisterBounds
			return
		}
		sel = WholeRegister(reg)
		return
	}

	err = ErrFieldUnknown
	return
}

// Compile parses every token, each distinct token once, and returns the
// fields in input order. Tokens that normalize to an already listed token
// are dropped. The first bad token aborts compilation.
func (p Parser) Compile(tokens []string) (fields []Field, err error) {
	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		norm := strings.ToLower(strings.TrimSpace(token))
		if seen[norm] {
			continue
		}

		var sel Selector
		sel, err = p.Parse(token)
		if err != nil {
			fields = nil
			return
		}
		seen[norm] = true

		fields = append(fields, Field{Token: norm, Selector: sel})
	}

	return
}
