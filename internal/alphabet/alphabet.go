// Package alphabet defines the symbol sets a machine can be wired for and
// the text normalisation applied before encipherment.
package alphabet

import (
	"errors"
	"fmt"
)

// Alphabet is an immutable ordered set of unique symbols. A symbol's
// position in the set is its signal index.
type Alphabet struct {
	symbols []rune
	index   map[rune]int
}

// New builds an alphabet from the provided symbols. Duplicate symbols and
// empty alphabets are rejected.
func New(symbols string) (*Alphabet, error) {
	runes := []rune(symbols)
	if len(runes) == 0 {
		return nil, errors.New("alphabet: no symbols")
	}
	index := make(map[rune]int, len(runes))
	for i, r := range runes {
		if _, dup := index[r]; dup {
			return nil, fmt.Errorf("alphabet: duplicate symbol %q", r)
		}
		index[r] = i
	}
	return &Alphabet{symbols: runes, index: index}, nil
}

// MustNew is New for package-level alphabets known to be valid.
func MustNew(symbols string) *Alphabet {
	a, err := New(symbols)
	if err != nil {
		panic(err)
	}
	return a
}

// Size returns the number of symbols.
func (a *Alphabet) Size() int {
	return len(a.symbols)
}

// Index returns the signal index of r.
func (a *Alphabet) Index(r rune) (int, bool) {
	i, ok := a.index[r]
	return i, ok
}

// Symbol returns the symbol at index i. It panics when i is out of range;
// callers that accept untrusted indexes check Size first.
func (a *Alphabet) Symbol(i int) rune {
	return a.symbols[i]
}

// Contains reports whether r belongs to the alphabet.
func (a *Alphabet) Contains(r rune) bool {
	_, ok := a.index[r]
	return ok
}

// ContainsAll reports whether every symbol of s belongs to the alphabet.
func (a *Alphabet) ContainsAll(s string) bool {
	for _, r := range s {
		if !a.Contains(r) {
			return false
		}
	}
	return true
}

// IsPermutation reports whether s uses every symbol exactly once.
func (a *Alphabet) IsPermutation(s string) bool {
	runes := []rune(s)
	if len(runes) != len(a.symbols) {
		return false
	}
	seen := make([]bool, len(a.symbols))
	for _, r := range runes {
		i, ok := a.index[r]
		if !ok || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}

// Runes returns a copy of the symbols in order.
func (a *Alphabet) Runes() []rune {
	out := make([]rune, len(a.symbols))
	copy(out, a.symbols)
	return out
}

func (a *Alphabet) String() string {
	return string(a.symbols)
}
