package cipher

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/RowanDark/inop/internal/alphabet"
	"github.com/RowanDark/inop/internal/machine"
	"github.com/RowanDark/inop/internal/wheels"
)

// Settings selects the wheels and key of a session.
type Settings struct {
	Suite     string            `json:"suite" yaml:"suite"`
	Rotors    []string          `json:"rotors" yaml:"rotors"`
	Reflector string            `json:"reflector" yaml:"reflector"`
	RingSet   []int             `json:"ring_set" yaml:"ring_set"`
	NotchMap  map[string]string `json:"notch_map,omitempty" yaml:"notch_map,omitempty"`
	Plugs     []string          `json:"plugs,omitempty" yaml:"plugs,omitempty"`
	MasterKey string            `json:"master_key" yaml:"master_key"`
}

// Validate checks s against catalog without keeping the machine it builds.
func (s Settings) Validate(catalog *wheels.Catalog) error {
	_, err := NewSession(s, catalog)
	return err
}

// Session is a machine assembled from Settings. It owns private copies of
// its wheels and is not safe for concurrent use.
type Session struct {
	settings Settings
	suite    alphabet.Suite
	machine  *machine.Machine
}

// NewSession validates settings and assembles the machine they describe.
// A nil catalog selects the built-in wheel tables.
func NewSession(settings Settings, catalog *wheels.Catalog, opts ...machine.Option) (*Session, error) {
	if catalog == nil {
		catalog = wheels.Default()
	}
	suite, err := alphabet.LookupSuite(settings.Suite)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	a := suite.Alphabet

	if len(settings.Rotors) != suite.Rotors {
		return nil, fmt.Errorf("session: %w: suite %s takes %d rotors, got %d",
			machine.ErrLengthMismatch, suite.Name, suite.Rotors, len(settings.Rotors))
	}
	rotors := make([]*machine.Rotor, len(settings.Rotors))
	for i, name := range settings.Rotors {
		r, family, err := catalog.Rotor(name)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		if family != suite.Name {
			return nil, fmt.Errorf("session: rotor %s belongs to suite %s, not %s", name, family, suite.Name)
		}
		rotors[i] = r
	}

	if err := applyNotches(settings, suite, rotors); err != nil {
		return nil, err
	}

	reflector, family, err := catalog.Reflector(settings.Reflector)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if family != suite.Name {
		return nil, fmt.Errorf("session: reflector %s belongs to suite %s, not %s", settings.Reflector, family, suite.Name)
	}

	if len(settings.RingSet) != len(rotors) {
		return nil, fmt.Errorf("session: %w: %d ring settings for %d rotors",
			machine.ErrLengthMismatch, len(settings.RingSet), len(rotors))
	}
	for i, ring := range settings.RingSet {
		if ring < 1 || ring > a.Size() {
			return nil, fmt.Errorf("session: %w: ring %d of rotor %d not in [1,%d]",
				machine.ErrOutOfRange, ring, i+1, a.Size())
		}
	}

	if len(settings.Plugs) > suite.MaxPairs {
		return nil, fmt.Errorf("session: %w: %d plug pairs, suite %s allows %d",
			machine.ErrPlugboardConflict, len(settings.Plugs), suite.Name, suite.MaxPairs)
	}
	plugboard, err := machine.NewPlugboard(settings.Plugs, a)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	m, err := machine.New(machine.NewKeyboard(a), plugboard, rotors, reflector, settings.RingSet, settings.MasterKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	settings.Suite = suite.Name
	return &Session{settings: settings, suite: suite, machine: m}, nil
}

func applyNotches(settings Settings, suite alphabet.Suite, rotors []*machine.Rotor) error {
	if len(settings.NotchMap) == 0 {
		return nil
	}
	if suite.MaxNotches == 0 {
		return fmt.Errorf("session: %w: suite %s uses fixed notches", machine.ErrInvalidNotch, suite.Name)
	}

	names := make([]string, 0, len(settings.NotchMap))
	for name := range settings.NotchMap {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		notches := settings.NotchMap[name]
		if n := utf8.RuneCountInString(notches); n > suite.MaxNotches {
			return fmt.Errorf("session: %w: rotor %s has %d notches, suite %s allows %d",
				machine.ErrInvalidNotch, name, n, suite.Name, suite.MaxNotches)
		}
		found := false
		for i, selected := range settings.Rotors {
			if !strings.EqualFold(selected, name) {
				continue
			}
			found = true
			if err := rotors[i].SetNotches(notches); err != nil {
				return fmt.Errorf("session: rotor %s: %w", name, err)
			}
		}
		if !found {
			return fmt.Errorf("session: %w: rotor %s is not selected", machine.ErrInvalidNotch, name)
		}
	}
	return nil
}

// Settings returns the settings the session was built from, with the suite
// name in canonical form.
func (s *Session) Settings() Settings { return s.settings }

// Suite returns the suite the session runs under.
func (s *Session) Suite() alphabet.Suite { return s.suite }

// Alphabet returns the session alphabet.
func (s *Session) Alphabet() *alphabet.Alphabet { return s.suite.Alphabet }

// Window shows the current rotor symbols followed by the reflector symbol.
func (s *Session) Window() string { return s.machine.Window() }

// Rewind turns the wheels back to the master key.
func (s *Session) Rewind() error { return s.machine.Rewind() }

// Encipher rewinds the machine and runs it over text.
func (s *Session) Encipher(text string) (string, error) {
	if err := s.machine.Rewind(); err != nil {
		return "", err
	}
	return s.machine.EncipherString(text)
}
