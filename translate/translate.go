// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package translate formats the harness diagnostics for the user's locale.
package translate

import (
	"log"
	"sync/atomic"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var printer atomic.Pointer[message.Printer]

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("ppcdiff: locale: %v", err)
	}

	SetLocale(locales...)
}

// SetLocale selects the best matching language from the list of locales.
// An empty list selects en-US.
func SetLocale(locales ...string) {
	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer.Store(message.NewPrinter(message.MatchLanguage(locales...)))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Load().Sprintf(key, args...)
}
