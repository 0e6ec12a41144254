// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/ppcdiff/config"
	"github.com/ezrec/ppcdiff/harness"
	"github.com/ezrec/ppcdiff/translate"
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

// report writes one result, colored if the output is a terminal.
func report(w io.Writer, color bool, result harness.Result) {
	paint := func(code, text string) string {
		if !color {
			return text
		}
		return code + text + colorReset
	}

	kind := result.Kind()
	switch kind {
	case harness.KIND_NONE:
		fmt.Fprintf(w, "%v: %v\n", result.Case.Name, paint(colorGreen, "PASS"))
	case harness.KIND_MISMATCH:
		fmt.Fprintf(w, "%v: %v\n", result.Case.Name, paint(colorRed, "FAIL"))
		for _, m := range result.Verdict.Mismatches {
			fmt.Fprintf(w, "  %v\n", m)
		}
	default:
		fmt.Fprintf(w, "%v: %v %v\n", result.Case.Name, paint(colorYellow, strings.ToUpper(kind.String())), result.Err)
	}
}

func main() {
	var configPath string
	var fields string
	var workdir string
	var keep bool
	var verbose bool
	var jobs int
	var timeout time.Duration
	var reference string
	var dut string
	var lang string
	var params paramList

	flag.StringVar(&configPath, "c", "", "Starlark configuration file")
	flag.StringVar(&fields, "f", "", "Comma separated fields to compare (r0..r31, cr, cr:a-b, so, ov, ca, tbc)")
	flag.StringVar(&workdir, "w", "", "Workspace root directory (default: temporary)")
	flag.BoolVar(&keep, "k", false, "Keep temporary workspaces")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.IntVar(&jobs, "j", 0, "Concurrent cases (default: from configuration)")
	flag.DurationVar(&timeout, "t", 0, "Backend timeout (default: from configuration)")
	flag.StringVar(&reference, "ref", "", "Reference backend command line")
	flag.StringVar(&dut, "dut", "", "DUT backend command line")
	flag.StringVar(&lang, "lang", "", "Message language")
	flag.Var(&params, "p", "Snippet parameter name=value:width[:s], repeatable")

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "usage: %v [options] snippet.s... (- for stdin)\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		fmt.Fprintf(out, "\nexit status: 0 pass, 1 mismatch, 2 assembly, 3 selector, 4 execution,\n")
		fmt.Fprintf(out, "5 timeout, 6 workspace, 7 config, 8 other; the worst case wins\n")
	}

	flag.Parse()

	if len(lang) != 0 {
		translate.SetLocale(lang)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(int(harness.KIND_CONFIG))
	}

	selectors := fieldList(fields)
	if len(selectors) == 0 {
		log.Fatalf("%v: no fields to compare (-f)", os.Args[0])
	}

	cfg := config.DefaultConfig()
	if len(configPath) != 0 {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	if len(reference) != 0 {
		argv := strings.Fields(reference)
		cfg.Reference = config.Backend{Command: argv}
	}
	if len(dut) != 0 {
		argv := strings.Fields(dut)
		cfg.DUT = config.Backend{Command: argv}
	}
	if len(workdir) != 0 {
		cfg.Workdir = workdir
	}
	if keep {
		cfg.Keep = true
	}
	if jobs != 0 {
		cfg.Jobs = jobs
	}
	if timeout != 0 {
		cfg.Timeout = timeout
	}

	h, err := harness.FromConfig(cfg, harness.WithVerbose(verbose))
	if err != nil {
		log.Fatal(err)
	}

	var cases []harness.Case
	for _, path := range flag.Args() {
		var text []byte
		if path == "-" {
			text, err = io.ReadAll(os.Stdin)
		} else {
			text, err = os.ReadFile(path)
		}
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}

		cases = append(cases, harness.Case{
			Name:      path,
			Snippet:   string(text),
			Params:    params,
			Selectors: selectors,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if verbose {
		ref, dut := h.Names()
		log.Printf("%v: %d case(s), %v vs %v, %d job(s)", os.Args[0], len(cases), ref, dut, cfg.Jobs)
	}

	results, err := h.EvaluateAll(ctx, cases, cfg.Jobs)
	if err != nil && len(results) == 0 {
		log.Fatal(err)
	}

	color := term.IsTerminal(int(os.Stdout.Fd()))

	worst := harness.KIND_NONE
	for _, result := range results {
		report(os.Stdout, color, result)
		worst = max(worst, result.Kind())
	}

	stop()
	os.Exit(int(worst))
}
