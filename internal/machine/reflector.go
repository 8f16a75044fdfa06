package machine

import (
	"fmt"

	"github.com/RowanDark/inop/internal/alphabet"
)

// Reflector turns the signal back through the rotor stack. Its wiring is a
// fixed-point-free involution; the rotation offset is optional.
type Reflector struct {
	alpha    *alphabet.Alphabet
	size     int
	wiring   []int
	position int
}

// NewReflector validates and builds a reflector.
func NewReflector(wiring string, a *alphabet.Alphabet) (*Reflector, error) {
	runes := []rune(wiring)
	if len(runes) != a.Size() {
		return nil, newError("reflector", ErrInvalidWiring, "length %d, want %d", len(runes), a.Size())
	}
	mapping := make([]int, len(runes))
	for i, sym := range runes {
		j, ok := a.Index(sym)
		if !ok {
			return nil, newError("reflector", ErrInvalidWiring, "symbol %q not in alphabet", sym)
		}
		mapping[i] = j
	}
	for i, j := range mapping {
		if i == j {
			return nil, newError("reflector", ErrInvalidWiring, "%q maps to itself", a.Symbol(i))
		}
		if mapping[j] != i {
			return nil, newError("reflector", ErrInvalidWiring, "%q->%q is not symmetric", a.Symbol(i), a.Symbol(j))
		}
	}
	return &Reflector{alpha: a, size: len(mapping), wiring: mapping}, nil
}

// Clone returns an independent copy.
func (r *Reflector) Clone() *Reflector {
	c := *r
	c.wiring = append([]int(nil), r.wiring...)
	return &c
}

// RotateTo sets the rotation so symbol is at the reference position.
func (r *Reflector) RotateTo(symbol rune) error {
	i, ok := r.alpha.Index(symbol)
	if !ok {
		return newError("reflector", ErrInvalidSymbol, "cannot rotate to %q", symbol)
	}
	r.position = i
	return nil
}

// Step advances the rotation by one.
func (r *Reflector) Step() {
	r.position = (r.position + 1) % r.size
}

// Reflect maps a signal through the rotated wiring.
func (r *Reflector) Reflect(signal int) int {
	adjusted := mod(signal+r.position, r.size)
	return mod(r.wiring[adjusted]-r.position, r.size)
}

// Position returns the rotation offset.
func (r *Reflector) Position() int { return r.position }

func (r *Reflector) String() string {
	return fmt.Sprintf("<Reflector pos=%d>", r.position)
}
