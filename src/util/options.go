// options.go parses the command line per spec.md section 6:
//
//	compiler [-c] [-o OUTPUT] [-dump-ir PATH] FILE...
//
// The teacher (util/args.go) hand-rolls its flag switch; spec.md section 1
// names the top-level argument parser as an out-of-scope external
// collaborator with a fixed contract, so here that contract is fulfilled by
// github.com/spf13/pflag (grounded in termfx-morfx/cmd/morfx/main.go, which
// builds its own CLI the same way).

package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// Options holds the fully parsed command line for one compilation.
type Options struct {
	Sources []string // Positional source file paths; at least one required.
	Out     string   // Target name; default "out" (linked) or "out.o" (-c).
	Object  bool     // -c: skip linking, emit object only.
	DumpIR  string   // -dump-ir PATH: write textual IR before emission. Empty disables.
	Verbose bool     // Not set by ParseArgs and not read by the pipeline.
}

// ExitUsage is returned by ParseArgs for usage errors; main maps it to
// exit code 2 per spec.md section 6.
const ExitUsage = 2

// ParseArgs parses os.Args[1:] into Options. Exit codes follow spec.md
// section 6: 0 success (handled by caller), 2 usage error.
func ParseArgs(args []string) (Options, error) {
	fs := pflag.NewFlagSet("slc", pflag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	out := fs.StringP("o", "o", "", "set the output target name")
	object := fs.BoolP("c", "c", false, "skip linking; emit an object file only")
	dumpIR := fs.String("dump-ir", "", "write textual LLVM IR to PATH before emission")
	help := fs.BoolP("help", "h", false, "print this help message and exit")

	// pflag reads a single-dash word as a run of shorthand flags, so the
	// single-dash long form -dump-ir is rewritten to --dump-ir first.
	norm := make([]string, len(args))
	for i, a := range args {
		if a == "-dump-ir" || strings.HasPrefix(a, "-dump-ir=") {
			a = "-" + a
		}
		norm[i] = a
	}
	if err := fs.Parse(norm); err != nil {
		return Options{}, fmt.Errorf("%w", err)
	}
	if *help {
		printUsage(fs)
		os.Exit(0)
	}

	if fs.Changed("o") && fs.Lookup("o").Changed && countOccurrences(args, "-o") > 1 {
		return Options{}, fmt.Errorf("-o may only be given once")
	}
	if countOccurrences(norm, "--dump-ir") > 1 {
		return Options{}, fmt.Errorf("-dump-ir may only be given once")
	}

	sources := fs.Args()
	if len(sources) < 1 {
		return Options{}, fmt.Errorf("at least one source file is required")
	}

	opt := Options{
		Sources: sources,
		Out:     *out,
		Object:  *object,
		DumpIR:  *dumpIR,
	}
	if opt.Out == "" {
		if opt.Object {
			opt.Out = "out.o"
		} else {
			opt.Out = "out"
		}
	}
	return opt, nil
}

// countOccurrences counts how many times flag appears (as an exact token or
// "flag=value") in args, used to reject a flag given more than once per
// spec.md section 6's "Multiple -o -> exit 2" rule. pflag itself silently
// takes the last occurrence, so the multiplicity check is layered on top.
func countOccurrences(args []string, flag string) int {
	n := 0
	for _, a := range args {
		if a == flag || len(a) > len(flag) && a[:len(flag)+1] == flag+"=" {
			n++
		}
	}
	return n
}

func printUsage(fs *pflag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: slc [-c] [-o OUTPUT] [-dump-ir PATH] FILE...")
	fs.PrintDefaults()
}
