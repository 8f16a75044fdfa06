package machine

import (
	"fmt"

	"github.com/RowanDark/inop/internal/alphabet"
)

// Rotor is a wired wheel with a dial position, a ring offset and a set of
// turnover notches. A Rotor is mutable and belongs to a single machine; use
// Clone to derive an independent copy.
type Rotor struct {
	alpha    *alphabet.Alphabet
	size     int
	forward  []int
	backward []int
	notches  []bool
	position int
	ring     int
}

// NewRotor builds a rotor from a wiring string, which must be a permutation
// of the alphabet, and its notch symbols.
func NewRotor(wiring, notches string, a *alphabet.Alphabet) (*Rotor, error) {
	if !a.IsPermutation(wiring) {
		return nil, newError("rotor", ErrInvalidWiring, "%q is not a permutation of the alphabet", wiring)
	}
	size := a.Size()
	r := &Rotor{
		alpha:    a,
		size:     size,
		forward:  make([]int, size),
		backward: make([]int, size),
		notches:  make([]bool, size),
	}
	for i, sym := range []rune(wiring) {
		j, _ := a.Index(sym)
		r.forward[i] = j
		r.backward[j] = i
	}
	if err := r.SetNotches(notches); err != nil {
		return nil, err
	}
	return r, nil
}

// Clone returns a deep copy sharing no mutable state with r.
func (r *Rotor) Clone() *Rotor {
	c := *r
	c.forward = append([]int(nil), r.forward...)
	c.backward = append([]int(nil), r.backward...)
	c.notches = append([]bool(nil), r.notches...)
	return &c
}

// SetRing applies a 1-based ring setting.
func (r *Rotor) SetRing(ring int) {
	r.ring = mod(ring-1, r.size)
}

// SetNotches replaces the notch set. Every symbol must be in the alphabet.
func (r *Rotor) SetNotches(notches string) error {
	set := make([]bool, r.size)
	for _, sym := range notches {
		i, ok := r.alpha.Index(sym)
		if !ok {
			return newError("rotor", ErrInvalidNotch, "%q", sym)
		}
		set[i] = true
	}
	r.notches = set
	return nil
}

// SetPosition turns the rotor so symbol shows in the window.
func (r *Rotor) SetPosition(symbol rune) error {
	i, ok := r.alpha.Index(symbol)
	if !ok {
		return newError("rotor", ErrInvalidSymbol, "%q", symbol)
	}
	r.position = i
	return nil
}

// Step advances the rotor by one and reports whether the symbol now in the
// window is a notch.
func (r *Rotor) Step() bool {
	r.position = (r.position + 1) % r.size
	return r.notches[r.position]
}

// AtNotch reports whether the rotor currently rests on one of its notches.
func (r *Rotor) AtNotch() bool {
	return r.notches[r.position]
}

// Forward passes a signal from the entry side towards the reflector.
func (r *Rotor) Forward(signal int) int {
	shift := mod(signal+r.position-r.ring, r.size)
	return mod(r.forward[shift]-r.position+r.ring, r.size)
}

// Backward passes a signal from the reflector side back to the entry.
func (r *Rotor) Backward(signal int) int {
	shift := mod(signal+r.position-r.ring, r.size)
	return mod(r.backward[shift]-r.position+r.ring, r.size)
}

// Position returns the dial position as a signal index.
func (r *Rotor) Position() int { return r.position }

// Window returns the symbol shown at the current position.
func (r *Rotor) Window() rune { return r.alpha.Symbol(r.position) }

// Ring returns the 0-based ring offset.
func (r *Rotor) Ring() int { return r.ring }

// Size returns the alphabet size the rotor is wired for.
func (r *Rotor) Size() int { return r.size }

// Notches returns the notch symbols in alphabet order.
func (r *Rotor) Notches() string {
	var out []rune
	for i, ok := range r.notches {
		if ok {
			out = append(out, r.alpha.Symbol(i))
		}
	}
	return string(out)
}

func (r *Rotor) String() string {
	return fmt.Sprintf("<Rotor pos=%d ring=%d>", r.position, r.ring)
}

func mod(x, n int) int {
	x %= n
	if x < 0 {
		x += n
	}
	return x
}
