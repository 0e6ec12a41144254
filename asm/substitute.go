// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Param is a bounded-width integer operand substituted into a template.
type Param struct {
	Name   string // Placeholder name.
	Value  int64  // Operand value.
	Width  uint   // Width in bits, 1..32.
	Signed bool   // Two's complement range if set, unsigned otherwise.
}

var reParamName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Bounds returns the inclusive value range allowed by the width.
func (p Param) Bounds() (lo, hi int64) {
	if p.Signed {
		return -(int64(1) << (p.Width - 1)), (int64(1) << (p.Width - 1)) - 1
	}
	return 0, (int64(1) << p.Width) - 1
}

// Check validates the name, width and value of the parameter.
func (p Param) Check() (err error) {
	if !reParamName.MatchString(p.Name) {
		err = ErrParamName
		return
	}
	if p.Width < 1 || p.Width > 32 {
		err = ErrParamWidth
		return
	}
	lo, hi := p.Bounds()
	if p.Value < lo || p.Value > hi {
		err = ErrParamRange
		return
	}
	return
}

// Format renders the value in one of the placeholder formats:
// "" (decimal if signed, 0x-hex otherwise), "#x", "x" or "d".
func (p Param) Format(format string) (text string, err error) {
	switch format {
	case "":
		if p.Signed {
			text = strconv.FormatInt(p.Value, 10)
		} else {
			text = fmt.Sprintf("%#x", p.Value)
		}
	case "#x":
		text = fmt.Sprintf("%#x", p.Value)
	case "x":
		text = fmt.Sprintf("%x", p.Value)
	case "d":
		text = strconv.FormatInt(p.Value, 10)
	default:
		err = ErrParamFormat
	}
	return
}

// paramError wraps a parameter error for the substitution stage.
func paramError(name string, err error) error {
	return &AssemblyError{
		Stage: STAGE_SUBSTITUTE,
		Err:   fmt.Errorf("%w: %v", err, name),
	}
}

// parenEval evaluates a $(...) expression with the parameters predeclared.
func parenEval(expr string, params map[string]Param) (value int64, err error) {
	thread := starlark.Thread{Name: "substitute"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for name, p := range params {
		pred[name] = starlark.MakeInt64(p.Value)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok || value < -(int64(1)<<31) || value > (int64(1)<<32)-1 {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// expandExpressions replaces every $(...) in text. Parentheses inside the
// expression nest.
func expandExpressions(text string, params map[string]Param) (out string, err error) {
	var sb strings.Builder
	for {
		start := strings.Index(text, "$(")
		if start < 0 {
			sb.WriteString(text)
			break
		}
		sb.WriteString(text[:start])

		depth := 0
		end := -1
		for n := start + 1; n < len(text) && end < 0; n++ {
			switch text[n] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					end = n
				}
			}
		}
		if end < 0 {
			err = ErrExpressionOpen
			return
		}

		var value int64
		value, err = parenEval(text[start+2:end], params)
		if err != nil {
			return
		}
		if value < 0 {
			sb.WriteString(strconv.FormatInt(value, 10))
		} else {
			fmt.Fprintf(&sb, "%#x", value)
		}

		text = text[end+1:]
	}

	out = sb.String()
	return
}

var rePlaceholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(?::([^{}]*))?\}`)

// Substitute fills a snippet template. Every parameter is range checked
// against its width before any text is produced. $(expr) is evaluated as a
// Starlark integer expression with the parameters predeclared, then
// {name} and {name:format} placeholders are replaced. The result is handed
// to the assembler unmodified.
func Substitute(template string, params ...Param) (text string, err error) {
	byName := make(map[string]Param, len(params))
	for _, p := range params {
		if _, dup := byName[p.Name]; dup {
			err = paramError(p.Name, ErrParamDuplicate)
			return
		}
		if perr := p.Check(); perr != nil {
			err = paramError(p.Name, perr)
			return
		}
		byName[p.Name] = p
	}

	text, err = expandExpressions(template, byName)
	if err != nil {
		err = &AssemblyError{Stage: STAGE_SUBSTITUTE, Err: err}
		return
	}

	text = rePlaceholder.ReplaceAllStringFunc(text, func(match string) string {
		if err != nil {
			return match
		}
		m := rePlaceholder.FindStringSubmatch(match)
		p, ok := byName[m[1]]
		if !ok {
			err = paramError(m[1], ErrParamMissing)
			return match
		}
		value, ferr := p.Format(m[2])
		if ferr != nil {
			err = paramError(m[1], ferr)
			return match
		}
		return value
	})
	if err != nil {
		text = ""
	}

	return
}
