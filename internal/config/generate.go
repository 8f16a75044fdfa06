package config

import (
	"fmt"

	"github.com/RowanDark/inop/internal/alphabet"
	"github.com/RowanDark/inop/internal/cipher"
	"github.com/RowanDark/inop/internal/wheels"
)

// Generate draws random session settings for a suite: distinct rotors, a
// reflector, ring settings, the maximum number of disjoint plug pairs,
// random notch overrides where the suite allows them, and a master key.
// A nil catalog selects the built-in wheels; a nil src selects crypto/rand.
func Generate(suiteName string, catalog *wheels.Catalog, src cipher.Source) (cipher.Settings, error) {
	if catalog == nil {
		catalog = wheels.Default()
	}
	if src == nil {
		src = cipher.CryptoSource{}
	}
	suite, err := alphabet.LookupSuite(suiteName)
	if err != nil {
		return cipher.Settings{}, err
	}
	a := suite.Alphabet

	rotorNames := catalog.Rotors(suite.Name)
	if len(rotorNames) < suite.Rotors {
		return cipher.Settings{}, fmt.Errorf("suite %s needs %d rotors, catalog has %d", suite.Name, suite.Rotors, len(rotorNames))
	}
	reflectors := catalog.Reflectors(suite.Name)
	if len(reflectors) == 0 {
		return cipher.Settings{}, fmt.Errorf("catalog has no reflector for suite %s", suite.Name)
	}

	if err := shuffle(src, rotorNames); err != nil {
		return cipher.Settings{}, err
	}
	rotors := rotorNames[:suite.Rotors]

	pick, err := src.Intn(len(reflectors))
	if err != nil {
		return cipher.Settings{}, err
	}

	rings := make([]int, len(rotors))
	for i := range rings {
		v, err := src.Intn(a.Size())
		if err != nil {
			return cipher.Settings{}, err
		}
		rings[i] = v + 1
	}

	symbols := make([]string, a.Size())
	for i, r := range a.Runes() {
		symbols[i] = string(r)
	}
	if err := shuffle(src, symbols); err != nil {
		return cipher.Settings{}, err
	}
	pairs := min(suite.MaxPairs, len(symbols)/2)
	plugs := make([]string, pairs)
	for i := range plugs {
		plugs[i] = symbols[2*i] + symbols[2*i+1]
	}

	var notches map[string]string
	if suite.MaxNotches > 0 {
		notches = make(map[string]string, len(rotors))
		for _, name := range rotors {
			k, err := src.Intn(suite.MaxNotches + 1)
			if err != nil {
				return cipher.Settings{}, err
			}
			if k == 0 {
				continue
			}
			pool := append([]string(nil), symbols...)
			if err := shuffle(src, pool); err != nil {
				return cipher.Settings{}, err
			}
			notch := ""
			for _, s := range pool[:k] {
				notch += s
			}
			notches[name] = notch
		}
		if len(notches) == 0 {
			notches = nil
		}
	}

	key := make([]rune, len(rotors)+1)
	for i := range key {
		v, err := src.Intn(a.Size())
		if err != nil {
			return cipher.Settings{}, err
		}
		key[i] = a.Symbol(v)
	}

	return cipher.Settings{
		Suite:     suite.Name,
		Rotors:    append([]string(nil), rotors...),
		Reflector: reflectors[pick],
		RingSet:   rings,
		NotchMap:  notches,
		Plugs:     plugs,
		MasterKey: string(key),
	}, nil
}

func shuffle(src cipher.Source, items []string) error {
	for i := len(items) - 1; i > 0; i-- {
		j, err := src.Intn(i + 1)
		if err != nil {
			return err
		}
		items[i], items[j] = items[j], items[i]
	}
	return nil
}
