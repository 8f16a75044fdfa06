// Package wheels holds the named rotor and reflector definitions machines
// are assembled from. Definitions are immutable; every lookup hands out a
// fresh copy so sessions never share stepping state.
package wheels

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/RowanDark/inop/internal/alphabet"
	"github.com/RowanDark/inop/internal/machine"
)

// RotorDef describes a rotor as printed in the wheel tables.
type RotorDef struct {
	Name    string `json:"name" yaml:"name"`
	Wiring  string `json:"wiring" yaml:"wiring"`
	Notches string `json:"notches,omitempty" yaml:"notches,omitempty"`
}

// ReflectorDef describes a reflector.
type ReflectorDef struct {
	Name   string `json:"name" yaml:"name"`
	Wiring string `json:"wiring" yaml:"wiring"`
}

type rotorEntry struct {
	def   RotorDef
	suite string
	proto *machine.Rotor
}

type reflectorEntry struct {
	def   ReflectorDef
	suite string
	proto *machine.Reflector
}

// Catalog is a concurrency-safe set of wheel definitions keyed by
// case-insensitive name.
type Catalog struct {
	mu         sync.RWMutex
	rotors     map[string]rotorEntry
	reflectors map[string]reflectorEntry
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		rotors:     make(map[string]rotorEntry),
		reflectors: make(map[string]reflectorEntry),
	}
}

func key(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func suiteFor(wiring string) (alphabet.Suite, error) {
	s, ok := alphabet.SuiteForSize(len([]rune(wiring)))
	if !ok {
		return alphabet.Suite{}, fmt.Errorf("no suite has %d symbols", len([]rune(wiring)))
	}
	return s, nil
}

// RegisterRotor validates def against its suite alphabet and adds it.
func (c *Catalog) RegisterRotor(def RotorDef) error {
	name := key(def.Name)
	if name == "" {
		return fmt.Errorf("rotor name cannot be empty")
	}
	suite, err := suiteFor(def.Wiring)
	if err != nil {
		return fmt.Errorf("rotor %s: %w", def.Name, err)
	}
	proto, err := machine.NewRotor(def.Wiring, def.Notches, suite.Alphabet)
	if err != nil {
		return fmt.Errorf("rotor %s: %w", def.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.rotors[name]; exists {
		return fmt.Errorf("rotor %s is already registered", def.Name)
	}
	c.rotors[name] = rotorEntry{def: def, suite: suite.Name, proto: proto}
	return nil
}

// RegisterReflector validates def against its suite alphabet and adds it.
func (c *Catalog) RegisterReflector(def ReflectorDef) error {
	name := key(def.Name)
	if name == "" {
		return fmt.Errorf("reflector name cannot be empty")
	}
	suite, err := suiteFor(def.Wiring)
	if err != nil {
		return fmt.Errorf("reflector %s: %w", def.Name, err)
	}
	proto, err := machine.NewReflector(def.Wiring, suite.Alphabet)
	if err != nil {
		return fmt.Errorf("reflector %s: %w", def.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.reflectors[name]; exists {
		return fmt.Errorf("reflector %s is already registered", def.Name)
	}
	c.reflectors[name] = reflectorEntry{def: def, suite: suite.Name, proto: proto}
	return nil
}

// Rotor returns a fresh rotor built from the named definition together with
// the suite it belongs to.
func (c *Catalog) Rotor(name string) (*machine.Rotor, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.rotors[key(name)]
	if !ok {
		return nil, "", fmt.Errorf("unknown rotor %q", name)
	}
	return e.proto.Clone(), e.suite, nil
}

// Reflector returns a fresh reflector built from the named definition
// together with the suite it belongs to.
func (c *Catalog) Reflector(name string) (*machine.Reflector, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.reflectors[key(name)]
	if !ok {
		return nil, "", fmt.Errorf("unknown reflector %q", name)
	}
	return e.proto.Clone(), e.suite, nil
}

// RotorDef returns the named definition.
func (c *Catalog) RotorDef(name string) (RotorDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.rotors[key(name)]
	return e.def, ok
}

// Rotors lists rotor names for a suite in natural order (I, II, …, R1, R2, …, R10).
func (c *Catalog) Rotors(suite string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0)
	for _, e := range c.rotors {
		if strings.EqualFold(e.suite, suite) {
			names = append(names, e.def.Name)
		}
	}
	sortNatural(names)
	return names
}

// Reflectors lists reflector names for a suite in natural order.
func (c *Catalog) Reflectors(suite string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0)
	for _, e := range c.reflectors {
		if strings.EqualFold(e.suite, suite) {
			names = append(names, e.def.Name)
		}
	}
	sortNatural(names)
	return names
}

// Unregister removes a rotor or reflector by name (mainly for testing).
func (c *Catalog) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.rotors, key(name))
	delete(c.reflectors, key(name))
}

// sortNatural orders roman numerals by value and prefix+number names by
// number, so R2 sorts before R10.
func sortNatural(names []string) {
	sort.Slice(names, func(i, j int) bool {
		pi, ni := naturalKey(names[i])
		pj, nj := naturalKey(names[j])
		if pi != pj {
			return pi < pj
		}
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
}

var romans = map[string]int{"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5, "VI": 6, "VII": 7, "VIII": 8}

func naturalKey(name string) (string, int) {
	if n, ok := romans[name]; ok {
		return "", n
	}
	cut := strings.IndexFunc(name, unicode.IsDigit)
	if cut <= 0 {
		return name, 0
	}
	n, err := strconv.Atoi(name[cut:])
	if err != nil {
		return name, 0
	}
	return name[:cut], n
}
