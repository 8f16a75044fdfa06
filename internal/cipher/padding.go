package cipher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RowanDark/inop/internal/alphabet"
)

// ErrMarkerNotFound reports that the padding could not be stripped: the
// ciphertext is corrupted, the key is wrong, or the pipeline options differ
// from the ones used to encrypt.
var ErrMarkerNotFound = errors.New("marker not found")

// PadParams controls how much cover traffic surrounds a message.
type PadParams struct {
	BaseNoise     int
	Block         int
	TargetResidue int
	Scale         float64
}

// MakeMarker draws a random marker of length symbols.
func MakeMarker(src Source, a *alphabet.Alphabet, length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("marker length must be at least 1, got %d", length)
	}
	out := make([]rune, length)
	for i := range out {
		idx, err := src.Intn(a.Size())
		if err != nil {
			return "", err
		}
		out[i] = a.Symbol(idx)
	}
	return string(out), nil
}

// PadLength returns how many cover symbols a framed text of length symbols
// receives: at least BaseNoise, scaled with the text, and rounded up so the
// padded length leaves TargetResidue modulo Block.
func PadLength(length int, p PadParams) int {
	scaled := max(p.BaseNoise, int(float64(length)*p.Scale))
	if p.Block <= 1 {
		return scaled
	}
	residue := (length + scaled) % p.Block
	extra := ((p.TargetResidue-residue)%p.Block + p.Block) % p.Block
	return scaled + extra
}

// Pad surrounds framed with random cover symbols, splitting them randomly
// between prefix and suffix. framed must start and end with marker. Cover
// symbols never complete an extra marker occurrence, so the first marker in
// the result is the leading one and the last is the trailing one.
func Pad(src Source, a *alphabet.Alphabet, framed, marker string, p PadParams) (string, error) {
	body := []rune(framed)
	mark := []rune(marker)
	if len(mark) == 0 {
		return "", errors.New("pad: empty marker")
	}
	if !strings.HasPrefix(framed, marker) || !strings.HasSuffix(framed, marker) {
		return "", errors.New("pad: text is not framed by the marker")
	}

	n := PadLength(len(body), p)
	front, err := src.Intn(n + 1)
	if err != nil {
		return "", err
	}

	// Prefix grows leftwards: only an occurrence starting at the new first
	// symbol can appear.
	head := body
	for i := 0; i < front; i++ {
		var banned rune = -1
		if hasPrefixRunes(head, mark[1:]) {
			banned = mark[0]
		}
		sym, err := drawExcept(src, a, banned)
		if err != nil {
			return "", err
		}
		head = append([]rune{sym}, head...)
	}

	// Suffix grows rightwards: only an occurrence ending at the new last
	// symbol can appear.
	full := head
	for i := 0; i < n-front; i++ {
		var banned rune = -1
		if hasSuffixRunes(full, mark[:len(mark)-1]) {
			banned = mark[len(mark)-1]
		}
		sym, err := drawExcept(src, a, banned)
		if err != nil {
			return "", err
		}
		full = append(full, sym)
	}
	return string(full), nil
}

// ExtractMessage returns the text between the first and the last marker.
func ExtractMessage(full, marker string) (string, error) {
	if marker == "" {
		return "", fmt.Errorf("%w: no marker supplied", ErrMarkerNotFound)
	}
	i := strings.Index(full, marker)
	j := strings.LastIndex(full, marker)
	if i == -1 || j == -1 || j < i+len(marker) {
		return "", fmt.Errorf("%w: padding removal failed", ErrMarkerNotFound)
	}
	return full[i+len(marker) : j], nil
}

func drawExcept(src Source, a *alphabet.Alphabet, banned rune) (rune, error) {
	bannedIdx, isBanned := a.Index(banned)
	if !isBanned {
		idx, err := src.Intn(a.Size())
		if err != nil {
			return 0, err
		}
		return a.Symbol(idx), nil
	}
	idx, err := src.Intn(a.Size() - 1)
	if err != nil {
		return 0, err
	}
	if idx >= bannedIdx {
		idx++
	}
	return a.Symbol(idx), nil
}

func hasPrefixRunes(s, prefix []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, r := range prefix {
		if s[i] != r {
			return false
		}
	}
	return true
}

func hasSuffixRunes(s, suffix []rune) bool {
	if len(suffix) > len(s) {
		return false
	}
	off := len(s) - len(suffix)
	for i, r := range suffix {
		if s[off+i] != r {
			return false
		}
	}
	return true
}
