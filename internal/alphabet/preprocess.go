package alphabet

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SpaceSymbol stands in for a space in alphabets that carry it.
const SpaceSymbol = '#'

// Preprocess upper-cases text, maps spaces to SpaceSymbol when the alphabet
// has it (dropping them otherwise) and removes every symbol the alphabet
// cannot encipher.
func Preprocess(text string, a *Alphabet) string {
	upper := cases.Upper(language.Und).String(norm.NFC.String(text))
	keepSpace := a.Contains(SpaceSymbol)

	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if r == ' ' {
			if keepSpace {
				b.WriteRune(SpaceSymbol)
			}
			continue
		}
		if a.Contains(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Restore turns SpaceSymbol back into spaces for display.
func Restore(text string) string {
	return strings.ReplaceAll(text, string(SpaceSymbol), " ")
}
