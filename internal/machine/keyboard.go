package machine

import "github.com/RowanDark/inop/internal/alphabet"

// Keyboard converts between symbols and signal indexes.
type Keyboard struct {
	alpha *alphabet.Alphabet
}

// NewKeyboard returns a keyboard for the alphabet.
func NewKeyboard(a *alphabet.Alphabet) *Keyboard {
	return &Keyboard{alpha: a}
}

// Forward maps a symbol to its signal index.
func (k *Keyboard) Forward(symbol rune) (int, error) {
	i, ok := k.alpha.Index(symbol)
	if !ok {
		return 0, newError("keyboard", ErrInvalidSymbol, "%q", symbol)
	}
	return i, nil
}

// Backward maps a signal index back to its symbol.
func (k *Keyboard) Backward(signal int) (rune, error) {
	if signal < 0 || signal >= k.alpha.Size() {
		return 0, newError("keyboard", ErrOutOfRange, "%d not in [0,%d)", signal, k.alpha.Size())
	}
	return k.alpha.Symbol(signal), nil
}
