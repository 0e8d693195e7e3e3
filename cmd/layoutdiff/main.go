package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/wippyai/abi-runtime/check"
	"github.com/wippyai/abi-runtime/layout"
	"github.com/wippyai/abi-runtime/prefix"
)

func main() {
	var (
		nameA       = flag.String("a", "", "Interface-side layout name")
		nameB       = flag.String("b", "", "Implementation-side layout name")
		list        = flag.Bool("list", false, "List known layouts and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *list {
		for _, name := range fixtureNames() {
			fmt.Println(name)
		}
		return
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *nameA == "" || *nameB == "" {
		fmt.Fprintln(os.Stderr, "Usage: layoutdiff -a <layout> -b <layout>")
		fmt.Fprintln(os.Stderr, "       layoutdiff -list")
		fmt.Fprintln(os.Stderr, "       layoutdiff -i  (interactive mode)")
		os.Exit(1)
	}

	compatible, err := diff(os.Stdout, *nameA, *nameB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !compatible {
		os.Exit(1)
	}
}

// diff checks name a as the interface against name b as the
// implementation and writes the full report. It returns whether the
// pair is compatible; a false return is a report, not an error.
func diff(w *os.File, a, b string) (bool, error) {
	la, err := resolve(a)
	if err != nil {
		return false, err
	}
	lb, err := resolve(b)
	if err != nil {
		return false, err
	}

	fmt.Fprintf(w, "Interface:      %s\n", la)
	fmt.Fprintf(w, "Implementation: %s\n\n", lb)

	if err := check.Check(la, lb); err != nil {
		var checkErr *check.Error
		if !errors.As(err, &checkErr) {
			return false, err
		}
		fmt.Fprintln(w, checkErr)
		return false, nil
	}

	fmt.Fprintln(w, "Compatible.")
	if summary := prefixSummary(la, lb); summary != "" {
		fmt.Fprintln(w, summary)
	}
	return true, nil
}

// prefixSummary reports which of the interface's fields the
// implementation actually provides, for extensible records.
func prefixSummary(la, lb *layout.TypeLayout) string {
	pb, ok := lb.Data.(layout.Prefix)
	if !ok || la.Data.Kind() != layout.KindPrefix {
		return ""
	}
	meta := prefix.MetadataOf(la)
	acc := meta.AccessibleIn(len(pb.Fields))
	return fmt.Sprintf("Accessible fields: %d of %d [%s]",
		acc.Count(), len(meta.Fields), acc)
}

func resolve(name string) (*layout.TypeLayout, error) {
	ref, ok := fixtures[name]
	if !ok {
		return nil, fmt.Errorf("unknown layout %q (use -list)", name)
	}
	return ref(), nil
}
