package machine

import (
	"strings"

	"github.com/RowanDark/inop/internal/alphabet"
)

// Plugboard swaps pairs of signals on the way into and out of the rotor
// stack. Unplugged signals pass through unchanged.
type Plugboard struct {
	wiring []int
}

// NewPlugboard builds a plugboard from two-symbol pair strings such as "AB".
// A symbol may appear in at most one pair and never with itself.
func NewPlugboard(pairs []string, a *alphabet.Alphabet) (*Plugboard, error) {
	wiring := make([]int, a.Size())
	for i := range wiring {
		wiring[i] = i
	}
	used := make(map[rune]bool, 2*len(pairs))

	for _, raw := range pairs {
		pair := []rune(raw)
		if len(pair) != 2 {
			return nil, newError("plugboard", ErrPlugboardConflict, "pair %q must be exactly 2 symbols", raw)
		}
		x, y := pair[0], pair[1]
		if x == y {
			return nil, newError("plugboard", ErrSelfPair, "%q", raw)
		}
		for _, r := range pair {
			if used[r] {
				return nil, newError("plugboard", ErrDuplicateSymbol, "%q in pair %q", r, raw)
			}
		}
		i, okX := a.Index(x)
		j, okY := a.Index(y)
		if !okX {
			return nil, newError("plugboard", ErrSymbolNotInAlphabet, "%q in pair %q", x, raw)
		}
		if !okY {
			return nil, newError("plugboard", ErrSymbolNotInAlphabet, "%q in pair %q", y, raw)
		}

		wiring[i], wiring[j] = j, i
		used[x], used[y] = true, true
	}
	return &Plugboard{wiring: wiring}, nil
}

// Forward applies the plugboard swap.
func (p *Plugboard) Forward(signal int) (int, error) {
	if signal < 0 || signal >= len(p.wiring) {
		return 0, newError("plugboard", ErrOutOfRange, "%d not in [0,%d)", signal, len(p.wiring))
	}
	return p.wiring[signal], nil
}

// Backward is identical to Forward; the wiring is symmetric.
func (p *Plugboard) Backward(signal int) (int, error) {
	return p.Forward(signal)
}

// Pairs renders the configured swaps in alphabet order, e.g. "AB CD".
func (p *Plugboard) Pairs(a *alphabet.Alphabet) string {
	var out []string
	for i, j := range p.wiring {
		if i < j {
			out = append(out, string([]rune{a.Symbol(i), a.Symbol(j)}))
		}
	}
	return strings.Join(out, " ")
}
