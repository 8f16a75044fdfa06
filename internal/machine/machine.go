// Package machine implements the rotor cipher engine: keyboard, plugboard,
// rotors, reflector, the keypress stepping rules and the signal path.
package machine

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Option configures a Machine.
type Option func(*Machine)

// WithLogger routes stepping traces to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithReflectorStepping makes the reflector advance one position on every
// keypress, after the rotors, like a rotor without notches.
func WithReflectorStepping(enabled bool) Option {
	return func(m *Machine) {
		m.stepReflector = enabled
	}
}

// Machine composes the keyboard, plugboard, rotor stack and reflector.
// Rotors are ordered left to right; the rightmost rotor is the fast one.
// A Machine is not safe for concurrent use.
type Machine struct {
	keyboard      *Keyboard
	plugboard     *Plugboard
	rotors        []*Rotor
	reflector     *Reflector
	masterKey     []rune
	stepReflector bool
	logger        *slog.Logger
}

// New assembles a machine, applies the 1-based ring settings and turns the
// wheels to the master key: one symbol per rotor followed by the reflector
// rotation. The machine takes ownership of rotors and reflector.
func New(kb *Keyboard, pb *Plugboard, rotors []*Rotor, reflector *Reflector, rings []int, masterKey string, opts ...Option) (*Machine, error) {
	key := []rune(masterKey)
	if len(rings) != len(rotors) {
		return nil, newError("machine", ErrLengthMismatch, "%d ring settings for %d rotors", len(rings), len(rotors))
	}
	if len(key) != len(rotors)+1 {
		return nil, newError("machine", ErrLengthMismatch, "master key has %d symbols, want %d", len(key), len(rotors)+1)
	}

	m := &Machine{
		keyboard:  kb,
		plugboard: pb,
		rotors:    rotors,
		reflector: reflector,
		masterKey: key,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}

	for i, rotor := range m.rotors {
		rotor.SetRing(rings[i])
	}
	if err := m.Rewind(); err != nil {
		return nil, err
	}
	return m, nil
}

// Rewind turns every wheel back to the master key.
func (m *Machine) Rewind() error {
	return m.SetKey(string(m.masterKey))
}

// SetKey turns the wheels to key without changing the stored master key.
func (m *Machine) SetKey(key string) error {
	runes := []rune(key)
	if len(runes) != len(m.rotors)+1 {
		return newError("machine", ErrLengthMismatch, "key has %d symbols, want %d", len(runes), len(m.rotors)+1)
	}
	for i, rotor := range m.rotors {
		if err := rotor.SetPosition(runes[i]); err != nil {
			return err
		}
	}
	return m.reflector.RotateTo(runes[len(runes)-1])
}

// Step performs the stepping transition of one keypress.
func (m *Machine) Step() {
	if len(m.rotors) == 3 {
		m.stepHistorical()
	} else {
		m.stepCascade()
	}
	if m.stepReflector {
		m.reflector.Step()
	}
	if m.logger.Enabled(context.Background(), slog.LevelDebug) {
		m.logger.Debug("stepped", slog.Any("positions", m.Positions()), slog.Int("reflector", m.reflector.Position()))
	}
}

// stepHistorical reproduces the three-rotor double step. Every decision is
// taken from the positions before any rotor moves.
func (m *Machine) stepHistorical() {
	left, middle, right := m.rotors[0], m.rotors[1], m.rotors[2]

	stepLeft := middle.AtNotch()
	stepMiddle := stepLeft || right.AtNotch()

	if stepLeft {
		left.Step()
	}
	if stepMiddle {
		middle.Step()
	}
	right.Step()
}

// stepCascade is the odometer rule for any other rotor count: a rotor
// carries into its left neighbour when it steps onto a notch.
func (m *Machine) stepCascade() {
	carry := true
	for i := len(m.rotors) - 1; i >= 0 && carry; i-- {
		carry = m.rotors[i].Step()
	}
}

// Encipher steps the machine and passes one symbol through the signal path.
// A symbol outside the alphabet is rejected before the machine moves.
func (m *Machine) Encipher(symbol rune) (rune, error) {
	signal, err := m.keyboard.Forward(symbol)
	if err != nil {
		return 0, err
	}
	m.Step()

	if signal, err = m.plugboard.Forward(signal); err != nil {
		return 0, err
	}
	for i := len(m.rotors) - 1; i >= 0; i-- {
		signal = m.rotors[i].Forward(signal)
	}
	signal = m.reflector.Reflect(signal)
	for _, rotor := range m.rotors {
		signal = rotor.Backward(signal)
	}
	if signal, err = m.plugboard.Backward(signal); err != nil {
		return 0, err
	}
	return m.keyboard.Backward(signal)
}

// EncipherString runs Encipher over every symbol of text in order,
// continuing from the current machine state.
func (m *Machine) EncipherString(text string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		out, err := m.Encipher(r)
		if err != nil {
			return "", err
		}
		b.WriteRune(out)
	}
	return b.String(), nil
}

// Positions returns the rotor positions, left to right.
func (m *Machine) Positions() []int {
	out := make([]int, len(m.rotors))
	for i, r := range m.rotors {
		out[i] = r.Position()
	}
	return out
}

// Window returns the symbols currently showing for every rotor followed by
// the reflector rotation, in master key layout.
func (m *Machine) Window() string {
	out := make([]rune, 0, len(m.rotors)+1)
	for _, r := range m.rotors {
		out = append(out, r.Window())
	}
	out = append(out, m.reflector.alpha.Symbol(m.reflector.Position()))
	return string(out)
}

// ReflectorPosition returns the reflector rotation offset.
func (m *Machine) ReflectorPosition() int {
	return m.reflector.Position()
}

// RotorCount returns the number of rotors in the stack.
func (m *Machine) RotorCount() int {
	return len(m.rotors)
}
