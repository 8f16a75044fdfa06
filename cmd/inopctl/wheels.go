package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/RowanDark/inop/internal/alphabet"
	"github.com/RowanDark/inop/internal/wheels"
)

type suiteWheels struct {
	Suite      string   `json:"suite"`
	Alphabet   string   `json:"alphabet"`
	Rotors     []string `json:"rotors"`
	Reflectors []string `json:"reflectors"`
}

func (c *cli) runWheels(args []string) int {
	fs := flag.NewFlagSet("wheels", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	suiteName := fs.String("suite", "", "only list wheels of this suite")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	suites := alphabet.Suites()
	if *suiteName != "" {
		suite, err := alphabet.LookupSuite(*suiteName)
		if err != nil {
			fmt.Fprintf(c.stderr, "wheels: %v\n", err)
			return 2
		}
		suites = []alphabet.Suite{suite}
	}

	catalog := wheels.Default()
	out := make([]suiteWheels, 0, len(suites))
	for _, s := range suites {
		out = append(out, suiteWheels{
			Suite:      s.Name,
			Alphabet:   s.Alphabet.String(),
			Rotors:     catalog.Rotors(s.Name),
			Reflectors: catalog.Reflectors(s.Name),
		})
	}

	if *asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(c.stderr, "wheels: %v\n", err)
			return 1
		}
		return 0
	}
	for i, w := range out {
		if i > 0 {
			fmt.Fprintln(c.stdout)
		}
		fmt.Fprintf(c.stdout, "%s (%d symbols)\n", w.Suite, len([]rune(w.Alphabet)))
		fmt.Fprintf(c.stdout, "  alphabet:   %s\n", w.Alphabet)
		fmt.Fprintf(c.stdout, "  rotors:     %s\n", strings.Join(w.Rotors, " "))
		fmt.Fprintf(c.stdout, "  reflectors: %s\n", strings.Join(w.Reflectors, " "))
	}
	return 0
}
