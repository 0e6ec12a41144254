// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ezrec/ppcdiff/asm"
)

// paramList collects repeated -p name=value:width[:s] flags.
type paramList []asm.Param

func (pl *paramList) String() string {
	if pl == nil {
		return ""
	}
	parts := make([]string, len(*pl))
	for n, p := range *pl {
		parts[n] = fmt.Sprintf("%v=%v:%v", p.Name, p.Value, p.Width)
		if p.Signed {
			parts[n] += ":s"
		}
	}
	return strings.Join(parts, ",")
}

func (pl *paramList) Set(text string) (err error) {
	name, rest, ok := strings.Cut(text, "=")
	if !ok {
		err = fmt.Errorf("%v: expected name=value:width[:s]", text)
		return
	}

	fields := strings.Split(rest, ":")
	if len(fields) < 2 || len(fields) > 3 {
		err = fmt.Errorf("%v: expected name=value:width[:s]", text)
		return
	}

	p := asm.Param{Name: strings.TrimSpace(name)}

	p.Value, err = strconv.ParseInt(fields[0], 0, 64)
	if err != nil {
		return
	}

	width, err := strconv.ParseUint(fields[1], 10, 8)
	if err != nil {
		return
	}
	p.Width = uint(width)

	if len(fields) == 3 {
		switch fields[2] {
		case "s":
			p.Signed = true
		case "u":
		default:
			err = fmt.Errorf("%v: signedness must be 's' or 'u'", text)
			return
		}
	}

	err = p.Check()
	if err != nil {
		err = fmt.Errorf("%v: %w", text, err)
		return
	}

	*pl = append(*pl, p)
	return
}

// fieldList splits comma separated field selectors.
func fieldList(text string) (fields []string) {
	for _, field := range strings.Split(text, ",") {
		field = strings.TrimSpace(field)
		if len(field) > 0 {
			fields = append(fields, field)
		}
	}
	return
}
