package alphabet

import (
	"fmt"
	"sort"
	"strings"
)

const (
	Symbols26 = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Symbols38 = Symbols26 + "0123456789#/"
	Symbols60 = Symbols38 + "+-*=()[]{}<>!?@&^%$£€_"
)

var (
	Alpha26 = MustNew(Symbols26)
	Alpha38 = MustNew(Symbols38)
	Alpha60 = MustNew(Symbols60)
)

// Suite is a named alphabet family together with the limits its machines
// are operated under.
type Suite struct {
	Name       string
	Alphabet   *Alphabet
	Rotors     int
	MaxPairs   int
	MaxNotches int
}

const (
	SuiteLegacy = "Legacy"
	SuiteINOP38 = "INOP-38"
	SuiteINOP60 = "INOP-60"
)

var suites = []Suite{
	{Name: SuiteLegacy, Alphabet: Alpha26, Rotors: 3, MaxPairs: 10, MaxNotches: 0},
	{Name: SuiteINOP38, Alphabet: Alpha38, Rotors: 5, MaxPairs: 15, MaxNotches: 3},
	{Name: SuiteINOP60, Alphabet: Alpha60, Rotors: 10, MaxPairs: 25, MaxNotches: 5},
}

// LookupSuite resolves a suite by name, ignoring case.
func LookupSuite(name string) (Suite, error) {
	for _, s := range suites {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return Suite{}, fmt.Errorf("unknown suite %q (expected one of %s)", name, strings.Join(SuiteNames(), ", "))
}

// SuiteForSize returns the suite whose alphabet has size symbols.
func SuiteForSize(size int) (Suite, bool) {
	for _, s := range suites {
		if s.Alphabet.Size() == size {
			return s, true
		}
	}
	return Suite{}, false
}

// Suites returns every known suite ordered by alphabet size.
func Suites() []Suite {
	out := make([]Suite, len(suites))
	copy(out, suites)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Alphabet.Size() < out[j].Alphabet.Size()
	})
	return out
}

// SuiteNames lists suite names ordered by alphabet size.
func SuiteNames() []string {
	names := make([]string, 0, len(suites))
	for _, s := range Suites() {
		names = append(names, s.Name)
	}
	return names
}
