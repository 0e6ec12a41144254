// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ezrec/ppcdiff/arch"
)

// Names accepted for the halt address.
var pcNames = map[string]bool{
	"pc":  true,
	"nip": true,
	"cia": true,
}

// Parse reads a state dump: one 'name value' pair per line, '#' comments,
// values in any Go integer literal syntax. Unknown names are skipped.
//
// A line 'fault REASON [TEXT...]' makes Parse return a *ReportedFault once
// the whole dump has been read.
func Parse(input io.Reader) (snap *Snapshot, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var fault *ReportedFault

	defer func() {
		if err != nil && lineno > 0 {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	b := &Builder{}
	seen := map[string]bool{}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		text_comment := strings.Split(text, "#")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		if len(words) == 0 {
			continue
		}

		name := strings.ToLower(words[0])

		if name == "fault" {
			if len(words) < 2 {
				err = ErrDumpFault
				return
			}
			fault = &ReportedFault{
				Reason: strings.ToLower(words[1]),
				Text:   strings.Join(words[2:], " "),
			}
			continue
		}

		if len(words) != 2 {
			err = ErrDumpLine
			return
		}

		if seen[name] {
			err = ErrDumpDuplicate
			return
		}
		seen[name] = true

		var value uint64
		value, err = strconv.ParseUint(words[1], 0, 32)
		if err != nil {
			err = ErrDumpValue
			return
		}

		if pcNames[name] {
			b.SetPC(uint32(value))
			continue
		}

		reg, ok := arch.Lookup(name)
		if !ok {
			continue
		}
		b.Set(reg, uint32(value))
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	lineno = 0

	if fault != nil {
		err = fault
		return
	}

	snap, err = b.Build()
	return
}

// Format writes a snapshot as a state dump that Parse accepts.
func Format(output io.Writer, snap *Snapshot) (err error) {
	w := bufio.NewWriter(output)
	for reg, value := range snap.Fields() {
		_, err = fmt.Fprintf(w, "%v 0x%08x\n", reg, value)
		if err != nil {
			return
		}
	}
	if pc, ok := snap.PC(); ok {
		_, err = fmt.Fprintf(w, "pc 0x%08x\n", pc)
		if err != nil {
			return
		}
	}

	err = w.Flush()
	return
}
