// Command demes-lint reads a Demes YAML document, parses and validates it,
// and prints the canonical Machine Data Model form.
//
// Usage:
//
//	demes-lint [-o out.yaml] model.yaml
//
// demes-lint is a thin collaborator outside the demes core: it only calls
// demes.Parse and demes.Canonicalize, and never reaches into the core's
// internals. File I/O, YAML decoding and CLI flag parsing are exactly the
// "external collaborator" concerns spec.md §1 excludes from the core.
package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/popsim-go/demes"
	"github.com/popsim-go/demes/demesyaml"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("demes-lint", flag.ContinueOnError)
	outPath := fs.StringP("output", "o", "", "write the canonical MDM form to this path instead of stdout")
	quiet := fs.BoolP("quiet", "q", false, "suppress the MDM dump; exit status alone reports validity")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	positional := fs.Args()
	if len(positional) != 1 {
		fmt.Fprintln(os.Stderr, "usage: demes-lint [-o out.yaml] [-q] model.yaml")
		return 2
	}

	in, err := os.Open(positional[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "demes-lint: %s\n", err)
		return 1
	}
	defer in.Close()

	data, err := demesyaml.Decode(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "demes-lint: %s\n", err)
		return 1
	}

	g, err := demes.Parse(data)
	if err != nil {
		var pe *demes.ParseError
		if errors.As(err, &pe) {
			fmt.Fprintf(os.Stderr, "demes-lint: %s: %s\n", pe.Path, pe.Msg)
		} else {
			fmt.Fprintf(os.Stderr, "demes-lint: %s\n", err)
		}
		return 1
	}

	if *quiet {
		return 0
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "demes-lint: %s\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	if err := demesyaml.Encode(out, demes.Canonicalize(g)); err != nil {
		fmt.Fprintf(os.Stderr, "demes-lint: %s\n", err)
		return 1
	}
	return 0
}
