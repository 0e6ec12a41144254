package compare

import (
	"strings"

	"github.com/ezrec/ppcdiff/translate"
)

var f = translate.From

// MismatchError is a failing Verdict as an error value.
type MismatchError struct {
	Mismatches []Mismatch
}

func (err *MismatchError) Error() string {
	parts := make([]string, len(err.Mismatches))
	for n, m := range err.Mismatches {
		parts[n] = m.String()
	}
	return f("%d field(s) differ: %v", len(err.Mismatches), strings.Join(parts, ", "))
}
